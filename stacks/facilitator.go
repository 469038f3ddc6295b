package stacks

import (
	"context"
	"fmt"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// ExactFacilitator implements the facilitator side of the exact Stacks
// scheme. Verify is structural only; Settle decodes the embedded signed
// transaction and submits it for broadcast exactly once, mapping the
// outcome to a SettleResponse. Broadcast failures become failed results,
// never errors, and are never retried here.
type ExactFacilitator struct {
	broadcaster Broadcaster
}

// NewExactFacilitator creates the facilitator mechanism.
func NewExactFacilitator(broadcaster Broadcaster) *ExactFacilitator {
	return &ExactFacilitator{broadcaster: broadcaster}
}

// Scheme returns the scheme identifier.
func (f *ExactFacilitator) Scheme() string {
	return SchemeExact
}

// Verify checks that the payload is structurally satisfiable: right scheme,
// canonical network, decodable transaction hex. No broadcast state is
// consulted, so the check is repeatable and side-effect free.
func (f *ExactFacilitator) Verify(ctx context.Context, payload x402stacks.PaymentPayload, requirements x402stacks.PaymentRequirements) (*x402stacks.VerifyResponse, error) {
	if payload.Scheme != SchemeExact {
		return &x402stacks.VerifyResponse{
			Valid:         false,
			InvalidReason: fmt.Sprintf("unsupported scheme: %s", payload.Scheme),
		}, nil
	}
	if !IsValidNetwork(payload.Network) {
		return &x402stacks.VerifyResponse{
			Valid:         false,
			InvalidReason: fmt.Sprintf("unsupported network: %s", payload.Network),
		}, nil
	}
	if _, err := DecodeTransactionHex(payload.Payload.Transaction); err != nil {
		return &x402stacks.VerifyResponse{
			Valid:         false,
			InvalidReason: x402stacks.ErrCodeMalformed,
		}, nil
	}

	return &x402stacks.VerifyResponse{Valid: true, Status: "confirmed"}, nil
}

// Settle broadcasts the signed transaction to the payload's network.
func (f *ExactFacilitator) Settle(ctx context.Context, payload x402stacks.PaymentPayload, requirements x402stacks.PaymentRequirements) (*x402stacks.SettleResponse, error) {
	if payload.Scheme != SchemeExact || !IsValidNetwork(payload.Network) {
		return &x402stacks.SettleResponse{
			Success:     false,
			Network:     payload.Network,
			ErrorReason: x402stacks.ErrCodeMalformed,
		}, nil
	}

	raw, err := DecodeTransactionHex(payload.Payload.Transaction)
	if err != nil {
		return &x402stacks.SettleResponse{
			Success:     false,
			Network:     payload.Network,
			ErrorReason: x402stacks.ErrCodeMalformed,
		}, nil
	}

	normalized, _ := NormalizeTransactionHex(payload.Payload.Transaction)

	txid, err := f.broadcaster.Broadcast(ctx, payload.Network, raw)
	if err != nil {
		return &x402stacks.SettleResponse{
			Success:     false,
			Transaction: "0x" + normalized,
			Network:     payload.Network,
			ErrorReason: err.Error(),
		}, nil
	}
	if txid == "" {
		return &x402stacks.SettleResponse{
			Success:     false,
			Transaction: "0x" + normalized,
			Network:     payload.Network,
			ErrorReason: "broadcast returned no transaction id",
		}, nil
	}

	return &x402stacks.SettleResponse{
		Success:     true,
		TxID:        txid,
		Transaction: "0x" + normalized,
		Network:     payload.Network,
	}, nil
}
