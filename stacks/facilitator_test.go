package stacks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

type fakeBroadcaster struct {
	txid      string
	err       error
	lastRaw   []byte
	lastChain x402stacks.Network
	calls     int
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, network x402stacks.Network, rawTx []byte) (string, error) {
	b.calls++
	b.lastRaw = rawTx
	b.lastChain = network
	if b.err != nil {
		return "", b.err
	}
	return b.txid, nil
}

func exactPayload(tx string) x402stacks.PaymentPayload {
	return x402stacks.PaymentPayload{
		Scheme:  SchemeExact,
		Network: NetworkTestnet,
		Payload: x402stacks.TransactionPayload{Transaction: tx},
	}
}

func TestExactFacilitatorVerify(t *testing.T) {
	f := NewExactFacilitator(&fakeBroadcaster{})

	result, err := f.Verify(context.Background(), exactPayload("0xDEADBEEF"), x402stacks.PaymentRequirements{})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "confirmed", result.Status)
}

func TestExactFacilitatorVerifyMalformed(t *testing.T) {
	f := NewExactFacilitator(&fakeBroadcaster{})

	result, err := f.Verify(context.Background(), exactPayload("not-hex"), x402stacks.PaymentRequirements{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, x402stacks.ErrCodeMalformed, result.InvalidReason)

	wrongScheme := exactPayload("deadbeef")
	wrongScheme.Scheme = "upto"
	result, err = f.Verify(context.Background(), wrongScheme, x402stacks.PaymentRequirements{})
	require.NoError(t, err)
	assert.False(t, result.Valid)

	wrongNetwork := exactPayload("deadbeef")
	wrongNetwork.Network = "eip155:1"
	result, err = f.Verify(context.Background(), wrongNetwork, x402stacks.PaymentRequirements{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestExactFacilitatorSettle(t *testing.T) {
	broadcaster := &fakeBroadcaster{txid: "abc123"}
	f := NewExactFacilitator(broadcaster)

	result, err := f.Settle(context.Background(), exactPayload("0xDEADBEEF"), x402stacks.PaymentRequirements{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "abc123", result.TxID)
	assert.Equal(t, "0xdeadbeef", result.Transaction)
	assert.Equal(t, NetworkTestnet, result.Network)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, broadcaster.lastRaw)
	assert.Equal(t, NetworkTestnet, broadcaster.lastChain)
}

func TestExactFacilitatorSettleMalformedHex(t *testing.T) {
	broadcaster := &fakeBroadcaster{txid: "abc123"}
	f := NewExactFacilitator(broadcaster)

	result, err := f.Settle(context.Background(), exactPayload("zzzz"), x402stacks.PaymentRequirements{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.TxID)
	assert.Equal(t, x402stacks.ErrCodeMalformed, result.ErrorReason)
	assert.Zero(t, broadcaster.calls, "malformed hex must never reach the broadcaster")
}

func TestExactFacilitatorSettleBroadcastFailure(t *testing.T) {
	broadcaster := &fakeBroadcaster{err: errors.New("transaction rejected: ConflictingNonceInMempool")}
	f := NewExactFacilitator(broadcaster)

	result, err := f.Settle(context.Background(), exactPayload("deadbeef"), x402stacks.PaymentRequirements{})
	require.NoError(t, err, "broadcast failures stay inside the result")

	assert.False(t, result.Success)
	assert.Empty(t, result.TxID)
	assert.Contains(t, result.ErrorReason, "ConflictingNonceInMempool")
}

func TestExactFacilitatorSettleEmptyTxID(t *testing.T) {
	f := NewExactFacilitator(&fakeBroadcaster{txid: ""})

	result, err := f.Settle(context.Background(), exactPayload("deadbeef"), x402stacks.PaymentRequirements{})
	require.NoError(t, err)
	assert.False(t, result.Success)
}
