package inbound

import (
	"context"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
)

type ucStream interface {
	Subscribe(ctx context.Context) <-chan usecase.Event
}

type uc interface {
	ucStream

	OpenSession(ctx context.Context, in usecase.OpenSessionInput) bool
	VerifyCode(ctx context.Context, code string) bool
	ResendCode(ctx context.Context) bool
	CloseSession(ctx context.Context)
	SuppressModal(ctx context.Context)
	Snapshot() entity.Session
	Policy() entity.Policy
}

// directClient is the send/verify primitive the inline surface calls.
type directClient interface {
	SendCode(ctx context.Context, phone string, channel entity.Channel) error
	VerifyCode(ctx context.Context, phone, code string) error
}
