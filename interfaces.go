package x402stacks

import "context"

// SchemeClient is implemented by client-side payment mechanisms.
// CreatePaymentPayload must encode exactly the amount and recipient from the
// requirements; a client never invents or alters the server's terms.
type SchemeClient interface {
	Scheme() string
	CreatePaymentPayload(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error)
}

// SchemeFacilitator is implemented by facilitator-side payment mechanisms.
// Verify must be free of side effects and safe to repeat; Settle is the only
// state-changing operation and must never retry a broadcast on its own.
type SchemeFacilitator interface {
	Scheme() string
	Verify(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (*VerifyResponse, error)
	Settle(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (*SettleResponse, error)
}

// FacilitatorClient is the resource server's and payment client's view of a
// facilitator, local or remote. Both the in-process Facilitator and the HTTP
// client in the http package implement it.
type FacilitatorClient interface {
	Verify(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (*VerifyResponse, error)
	Settle(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (*SettleResponse, error)
	Supported(ctx context.Context) ([]SupportedKind, error)
}
