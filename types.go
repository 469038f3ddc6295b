// Package x402stacks implements the x402 payment-gated access protocol for
// the Stacks blockchain: a resource server answers unpaid requests with
// HTTP 402 and a payment requirement, a paying client settles the payment
// through a facilitator, and the retried request carries proof of payment.
package x402stacks

import (
	"fmt"
	"strings"
)

// Network is a chain identifier in "<chain>:<chain-id>" form,
// e.g. "stacks:1" for Stacks mainnet and "stacks:2147483648" for testnet.
type Network string

// Parse splits the network into chain namespace and chain-id reference.
func (n Network) Parse() (namespace, reference string, err error) {
	parts := strings.Split(string(n), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid network format: %s", n)
	}
	return parts[0], parts[1], nil
}

// Match checks whether this network matches a pattern. A pattern ending in
// ":*" matches every network in that chain namespace.
func (n Network) Match(pattern Network) bool {
	if n == pattern {
		return true
	}
	if strings.HasSuffix(string(pattern), ":*") {
		return strings.HasPrefix(string(n), strings.TrimSuffix(string(pattern), "*"))
	}
	if strings.HasSuffix(string(n), ":*") {
		return strings.HasPrefix(string(pattern), strings.TrimSuffix(string(n), "*"))
	}
	return false
}

// PaymentRequirements states the server's terms for a guarded resource:
// which scheme/network settles the payment, the asset and amount in minor
// units, and the recipient. Immutable, owned by the route configuration.
type PaymentRequirements struct {
	Scheme      string  `json:"scheme"`
	Network     Network `json:"network"`
	Asset       string  `json:"asset"`
	Amount      string  `json:"amount"`
	PayTo       string  `json:"payTo"`
	Description string  `json:"description,omitempty"`
}

// PaymentRequired is the body of a 402 response: the challenge.
// It is stateless on the server side and reproducible per route; every
// challenge is satisfiable by a single payment against one accepted entry.
type PaymentRequired struct {
	Scheme   string                `json:"scheme"`
	Network  Network               `json:"network"`
	Error    string                `json:"error,omitempty"`
	Accepted []PaymentRequirements `json:"accepted"`
}

// TransactionPayload carries the signed transaction as hex
// (an optional "0x" prefix is tolerated on the wire).
type TransactionPayload struct {
	Transaction string `json:"transaction"`
}

// PaymentPayload is the client-constructed response to a challenge.
// It is consumed exactly once by the facilitator's settle operation.
type PaymentPayload struct {
	Scheme  string             `json:"scheme"`
	Network Network            `json:"network"`
	Payload TransactionPayload `json:"payload"`
}

// PaymentProof is what a client attaches to the retried request: the payload
// it settled plus the settlement's transaction id.
type PaymentProof struct {
	PaymentPayload
	TxID string `json:"txid"`
}

// VerifyResponse is the facilitator's side-effect-free acceptance check.
type VerifyResponse struct {
	Valid         bool   `json:"valid"`
	Status        string `json:"status,omitempty"`
	InvalidReason string `json:"invalidReason,omitempty"`
	Payer         string `json:"payer,omitempty"`
}

// SettleResponse is the sole source of truth for whether a payment is
// effective. Success implies a non-empty TxID.
type SettleResponse struct {
	Success     bool    `json:"success"`
	TxID        string  `json:"txid,omitempty"`
	Payer       string  `json:"payer,omitempty"`
	Transaction string  `json:"transaction,omitempty"`
	Network     Network `json:"network,omitempty"`
	ErrorReason string  `json:"errorReason,omitempty"`
}

// SupportedKind is one payment configuration a facilitator accepts.
type SupportedKind struct {
	Scheme  string  `json:"scheme"`
	Network Network `json:"network"`
	Asset   string  `json:"asset"`
}
