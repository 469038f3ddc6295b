package x402stacks

import "fmt"

// PaymentError is the structured error surfaced for any terminal protocol
// failure. Code is stable and machine-readable; Message carries diagnostics.
type PaymentError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes. The hyphenated reasons are externally observable in
// orchestrator results and log trails.
const (
	// ErrCodeConfiguration marks a missing credential or recipient.
	// Fatal, never retried.
	ErrCodeConfiguration = "configuration-error"

	// ErrCodeUnsupportedRequirement marks a challenge whose scheme or
	// network no registered mechanism can satisfy. Fatal for the attempt.
	ErrCodeUnsupportedRequirement = "unsupported-requirement"

	// ErrCodePaymentRejected marks a settlement the facilitator declined.
	ErrCodePaymentRejected = "payment-rejected"

	// ErrCodeProofRejected marks a retried request that the resource server
	// refused despite a successful settlement.
	ErrCodeProofRejected = "proof-rejected"

	// ErrCodeTimeout marks a cycle that exceeded the caller's bound.
	ErrCodeTimeout = "timeout"

	// ErrCodeTransport marks a network failure at any HTTP hop.
	ErrCodeTransport = "transport-error"

	// ErrCodeMalformed marks a structurally invalid payment payload.
	ErrCodeMalformed = "malformed"
)

// NewPaymentError creates a new payment error.
func NewPaymentError(code, message string, details map[string]interface{}) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrorCode extracts the payment error code from err, or "" when err is not
// a PaymentError.
func ErrorCode(err error) string {
	if pe, ok := err.(*PaymentError); ok {
		return pe.Code
	}
	return ""
}
