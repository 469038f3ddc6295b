package stacks

import (
	"context"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// TokenTransfer is the payment the client asks its signer to authorize.
// Recipient and AmountMicroSTX come verbatim from the server's requirements.
type TokenTransfer struct {
	Recipient      string
	AmountMicroSTX uint64
	Memo           string
	Network        x402stacks.Network
}

// Signer is the client-side signing boundary. Key derivation and
// transaction encoding live behind it; the mechanism only decides when it
// is invoked and with what transfer.
type Signer interface {
	// Address derives the paying identity for the target network.
	Address(network x402stacks.Network) (string, error)

	// SignTokenTransfer builds and signs a STX transfer, returning the
	// serialized transaction as hex without a "0x" prefix.
	SignTokenTransfer(ctx context.Context, transfer TokenTransfer) (string, error)
}

// Broadcaster is the facilitator-side broadcast boundary: it submits a raw
// signed transaction to the target network and returns the transaction id,
// or an error describing why the network rejected it. Implementations must
// not retry on their own.
type Broadcaster interface {
	Broadcast(ctx context.Context, network x402stacks.Network, rawTx []byte) (string, error)
}
