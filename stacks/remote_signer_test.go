package stacks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteSignerSignTokenTransfer(t *testing.T) {
	var got signTransferRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sign-token-transfer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(signTransferResponse{Transaction: "0xDEADBEEF"})
	}))
	defer server.Close()

	signer, err := NewRemoteSigner(&RemoteSignerConfig{URL: server.URL})
	require.NoError(t, err)

	tx, err := signer.SignTokenTransfer(context.Background(), TokenTransfer{
		Recipient:      "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG",
		AmountMicroSTX: 1000,
		Memo:           "x402 payment",
		Network:        NetworkTestnet,
	})
	require.NoError(t, err)
	assert.Equal(t, "0xDEADBEEF", tx)

	assert.Equal(t, "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG", got.Recipient)
	assert.Equal(t, "1000", got.Amount)
	assert.Equal(t, "x402 payment", got.Memo)
	assert.Equal(t, string(NetworkTestnet), got.Network)
}

func TestRemoteSignerSignFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(signTransferResponse{Error: "insufficient balance"})
	}))
	defer server.Close()

	signer, err := NewRemoteSigner(&RemoteSignerConfig{URL: server.URL})
	require.NoError(t, err)

	_, err = signer.SignTokenTransfer(context.Background(), TokenTransfer{Network: NetworkTestnet})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestRemoteSignerRejectsMalformedTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(signTransferResponse{Transaction: "not hex"})
	}))
	defer server.Close()

	signer, err := NewRemoteSigner(&RemoteSignerConfig{URL: server.URL})
	require.NoError(t, err)

	_, err = signer.SignTokenTransfer(context.Background(), TokenTransfer{Network: NetworkTestnet})
	assert.Error(t, err)
}

func TestRemoteSignerAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/address", r.URL.Path)
		assert.Equal(t, "testnet", r.URL.Query().Get("network"))
		_ = json.NewEncoder(w).Encode(addressResponse{Address: "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG"})
	}))
	defer server.Close()

	signer, err := NewRemoteSigner(&RemoteSignerConfig{URL: server.URL})
	require.NoError(t, err)

	address, err := signer.Address(NetworkTestnet)
	require.NoError(t, err)
	assert.Equal(t, "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG", address)
}

func TestRemoteSignerRequiresURL(t *testing.T) {
	_, err := NewRemoteSigner(nil)
	assert.Error(t, err)

	_, err = NewRemoteSigner(&RemoteSignerConfig{})
	assert.Error(t, err)
}
