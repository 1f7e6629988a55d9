package inbound

import (
	"net/http"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/router"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/validator"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, direct directClient, v validator.Validator) {
	end := &HTTPEndpoint{uc: uc, direct: direct, validator: v}

	r.POST("/api/v1/verification/session", end.OpenSession)
	r.GET("/api/v1/verification/session", end.GetSession)
	r.DELETE("/api/v1/verification/session", end.CloseSession)
	r.POST("/api/v1/verification/session/verify", end.VerifyCode)
	r.POST("/api/v1/verification/session/resend", end.ResendCode)
	r.POST("/api/v1/verification/session/suppress", end.SuppressModal)

	r.POST("/api/v1/verification/direct/send", end.DirectSend)
	r.POST("/api/v1/verification/direct/verify", end.DirectVerify)

	r.GETRaw("/api/v1/verification/stream", http.HandlerFunc(end.Stream))
}
