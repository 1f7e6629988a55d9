package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendRequest struct {
	PhoneNumber string `validate:"required,phone"`
	Channel     string `validate:"otpchannel"`
}

type verifyRequest struct {
	PhoneNumber string `validate:"required,phone"`
	Code        string `validate:"required,digits,len=6"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		data   any
		fields map[string]string
	}{
		{
			name: "valid send",
			data: sendRequest{PhoneNumber: "+966500000000", Channel: "whatsapp"},
		},
		{
			name: "valid send default channel",
			data: sendRequest{PhoneNumber: "966500000000"},
		},
		{
			name: "bad phone and channel",
			data: sendRequest{PhoneNumber: "+96650", Channel: "email"},
			fields: map[string]string{
				"phone_number": "PhoneNumber must be a valid phone number",
				"channel":      "Channel must be sms or whatsapp",
			},
		},
		{
			name: "missing phone",
			data: sendRequest{},
			fields: map[string]string{
				"phone_number": "PhoneNumber is a required field",
			},
		},
		{
			name: "non digit code",
			data: verifyRequest{PhoneNumber: "+966500000000", Code: "12a456"},
			fields: map[string]string{
				"code": "Code must contain digits only",
			},
		},
		{
			name: "valid verify",
			data: verifyRequest{PhoneNumber: "+966500000000", Code: "123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.fields, verr.Values())
		})
	}
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
	assert.JSONEq(t, `{"code":"bad"}`, V10ValidationError{"code": "bad"}.Error())
}
