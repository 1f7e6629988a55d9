package event

import "time"

const PhoneVerificationVerifiedDestination string = "phone_verification_verified"
const PhoneVerificationCancelledDestination string = "phone_verification_cancelled"

// PhoneVerificationMessage is the body of both outcome destinations.
type PhoneVerificationMessage struct {
	SessionID   string    `json:"session_id"`
	Purpose     string    `json:"purpose"`
	PhoneNumber string    `json:"phone_number"`
	MaskedPhone string    `json:"masked_phone"`
	RetryCount  int       `json:"retry_count"`
	OccurredAt  time.Time `json:"occurred_at"`
}
