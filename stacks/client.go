package stacks

import (
	"context"
	"fmt"
	"strconv"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// ExactClient implements the client side of the exact Stacks scheme.
type ExactClient struct {
	signer Signer
}

// NewExactClient creates the client mechanism. The signer may not be nil at
// payment time; a missing signing credential is a configuration error, not
// a retryable condition.
func NewExactClient(signer Signer) *ExactClient {
	return &ExactClient{signer: signer}
}

// Scheme returns the scheme identifier.
func (c *ExactClient) Scheme() string {
	return SchemeExact
}

// CreatePaymentPayload signs a STX transfer for exactly the requirement's
// amount and recipient. The client never alters the server's terms.
func (c *ExactClient) CreatePaymentPayload(ctx context.Context, requirements x402stacks.PaymentRequirements) (x402stacks.PaymentPayload, error) {
	if c.signer == nil {
		return x402stacks.PaymentPayload{}, x402stacks.NewPaymentError(
			x402stacks.ErrCodeConfiguration,
			"no signing credential configured",
			nil,
		)
	}
	if err := validateRequirements(requirements); err != nil {
		return x402stacks.PaymentPayload{}, x402stacks.NewPaymentError(
			x402stacks.ErrCodeUnsupportedRequirement, err.Error(), nil)
	}

	amount, err := strconv.ParseUint(requirements.Amount, 10, 64)
	if err != nil {
		return x402stacks.PaymentPayload{}, fmt.Errorf("invalid amount %q: %w", requirements.Amount, err)
	}

	txHex, err := c.signer.SignTokenTransfer(ctx, TokenTransfer{
		Recipient:      requirements.PayTo,
		AmountMicroSTX: amount,
		Memo:           requirements.Description,
		Network:        requirements.Network,
	})
	if err != nil {
		return x402stacks.PaymentPayload{}, fmt.Errorf("sign token transfer: %w", err)
	}

	normalized, err := NormalizeTransactionHex(txHex)
	if err != nil {
		return x402stacks.PaymentPayload{}, fmt.Errorf("signer returned invalid transaction: %w", err)
	}

	return x402stacks.PaymentPayload{
		Scheme:  SchemeExact,
		Network: requirements.Network,
		Payload: x402stacks.TransactionPayload{Transaction: normalized},
	}, nil
}

// PayerAddress derives the paying identity for the target network.
func (c *ExactClient) PayerAddress(network x402stacks.Network) (string, error) {
	if c.signer == nil {
		return "", x402stacks.NewPaymentError(
			x402stacks.ErrCodeConfiguration,
			"no signing credential configured",
			nil,
		)
	}
	return c.signer.Address(network)
}
