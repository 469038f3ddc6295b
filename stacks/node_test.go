package stacks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeClientBroadcast(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"f6a5c7e8"`))
	}))
	defer server.Close()

	client := NewNodeClient(&NodeConfig{TestnetURL: server.URL})

	txid, err := client.Broadcast(context.Background(), NetworkTestnet, []byte{0xde, 0xad})
	require.NoError(t, err)
	assert.Equal(t, "f6a5c7e8", txid)
	assert.Equal(t, []byte{0xde, 0xad}, gotBody)
}

func TestNodeClientBroadcastRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"transaction rejected","reason":"ConflictingNonceInMempool","txid":"aa"}`))
	}))
	defer server.Close()

	client := NewNodeClient(&NodeConfig{TestnetURL: server.URL})

	_, err := client.Broadcast(context.Background(), NetworkTestnet, []byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ConflictingNonceInMempool")
}

func TestNodeClientBroadcastOpaqueFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("node is syncing"))
	}))
	defer server.Close()

	client := NewNodeClient(&NodeConfig{TestnetURL: server.URL})

	_, err := client.Broadcast(context.Background(), NetworkTestnet, []byte{0x01})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node is syncing")
}

func TestNodeClientUnsupportedNetwork(t *testing.T) {
	client := NewNodeClient(nil)

	_, err := client.Broadcast(context.Background(), "eip155:1", []byte{0x01})
	assert.Error(t, err)
}
