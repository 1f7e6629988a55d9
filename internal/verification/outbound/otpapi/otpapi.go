// Package otpapi talks to the remote service that issues and checks
// verification codes. The coordinator and the inline surface both use it.
package otpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	maxErrorBody        = 64 << 10
)

var ErrEndpointMissing = errors.New("otpapi: endpoint url is empty")

type Config struct {
	SendURL   string
	VerifyURL string
	Timeout   time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	ins  instrument.Instrumentation
}

// New returns a Client. A nil hc gets a client with cfg.Timeout.
func New(cfg Config, hc *http.Client, ins instrument.Instrumentation) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Client{cfg: cfg, http: hc, ins: ins}
}

type sendRequest struct {
	PhoneNumber string         `json:"phone_number"`
	Channel     entity.Channel `json:"channel"`
}

type verifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type errorResponse struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// SendCode asks the service to deliver a code to phone.
func (c *Client) SendCode(ctx context.Context, phone string, channel entity.Channel) error {
	ctx, span := c.ins.Tracer("verification.outbound.otpapi").Start(ctx, "SendCode")
	defer span.End()

	span.SetAttributes(attribute.String("otp.channel", string(channel)))

	status, body, err := c.post(ctx, c.cfg.SendURL, sendRequest{PhoneNumber: phone, Channel: channel})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return goerror.NewServer(err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if isSuccess(status) {
		return nil
	}

	cause := fmt.Errorf("otpapi: send code: unexpected status %d", status)
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())

	if msg := errorMessage(body); msg != "" {
		return goerror.WrapBusiness(cause, msg, codeFromStatus(status))
	}
	return goerror.NewServer(cause)
}

// VerifyCode checks code for phone. A 404 means the code is wrong.
func (c *Client) VerifyCode(ctx context.Context, phone, code string) error {
	ctx, span := c.ins.Tracer("verification.outbound.otpapi").Start(ctx, "VerifyCode")
	defer span.End()

	status, body, err := c.post(ctx, c.cfg.VerifyURL, verifyRequest{PhoneNumber: phone, Code: code})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return goerror.NewServer(err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if isSuccess(status) {
		return nil
	}

	cause := fmt.Errorf("otpapi: verify code: unexpected status %d", status)
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())

	if status == http.StatusNotFound {
		return goerror.WrapBusiness(cause, entity.MsgInvalidCode, goerror.CodeNotFound)
	}
	if msg := errorMessage(body); msg != "" {
		return goerror.WrapBusiness(cause, msg, codeFromStatus(status))
	}
	return goerror.NewServer(cause)
}

func (c *Client) post(ctx context.Context, url string, in any) (int, []byte, error) {
	if url == "" {
		return 0, nil, ErrEndpointMissing
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		req.Header.Set(headerCorrelationID, cID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close otp api response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil && isSuccess(resp.StatusCode) {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// errorMessage pulls a human message out of an error body. detail may be a
// string or an object carrying message.
func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(er.Message); msg != "" {
		return msg
	}

	var detail string
	if err := json.Unmarshal(er.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}

	var nested errorResponse
	if err := json.Unmarshal(er.Detail, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}

	return ""
}

func codeFromStatus(status int) goerror.Code {
	switch status {
	case http.StatusBadRequest:
		return goerror.CodeInvalidFormat
	case http.StatusUnprocessableEntity:
		return goerror.CodeInvalidInput
	case http.StatusNotFound:
		return goerror.CodeNotFound
	case http.StatusConflict:
		return goerror.CodeConflict
	case http.StatusTooManyRequests:
		return goerror.CodeTooManyRequest
	case http.StatusUnauthorized:
		return goerror.CodeUnauthorized
	case http.StatusForbidden:
		return goerror.CodeForbidden
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return goerror.CodeTimeout
	default:
		return goerror.CodeInternal
	}
}
