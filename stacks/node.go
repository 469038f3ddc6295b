package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// Default Stacks node API endpoints per network.
const (
	MainnetNodeURL = "https://api.mainnet.hiro.so"
	TestnetNodeURL = "https://api.testnet.hiro.so"
)

// NodeClient broadcasts raw signed transactions through a Stacks node's
// /v2/transactions endpoint. It implements Broadcaster and submits each
// transaction exactly once per call; retry policy belongs to the caller.
type NodeClient struct {
	httpClient *http.Client
	urls       map[x402stacks.Network]string
}

// NodeConfig configures a NodeClient.
type NodeConfig struct {
	// MainnetURL and TestnetURL override the default node endpoints.
	MainnetURL string
	TestnetURL string

	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
}

// NewNodeClient creates a node client with per-network endpoints.
func NewNodeClient(config *NodeConfig) *NodeClient {
	if config == nil {
		config = &NodeConfig{}
	}

	mainnetURL := config.MainnetURL
	if mainnetURL == "" {
		mainnetURL = MainnetNodeURL
	}
	testnetURL := config.TestnetURL
	if testnetURL == "" {
		testnetURL = TestnetNodeURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &NodeClient{
		httpClient: httpClient,
		urls: map[x402stacks.Network]string{
			NetworkMainnet: strings.TrimSuffix(mainnetURL, "/"),
			NetworkTestnet: strings.TrimSuffix(testnetURL, "/"),
		},
	}
}

// nodeRejection is the error body a Stacks node returns for a rejected
// transaction.
type nodeRejection struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	TxID   string `json:"txid"`
}

// Broadcast submits rawTx to the node serving the given network and returns
// the transaction id the node assigned.
func (c *NodeClient) Broadcast(ctx context.Context, network x402stacks.Network, rawTx []byte) (string, error) {
	base, ok := c.urls[network]
	if !ok {
		return "", fmt.Errorf("unsupported network: %s", network)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v2/transactions", bytes.NewReader(rawTx))
	if err != nil {
		return "", fmt.Errorf("create broadcast request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("broadcast request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read broadcast response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		// The node answers with the txid as a JSON-encoded string.
		var txid string
		if err := json.Unmarshal(body, &txid); err != nil {
			txid = strings.Trim(strings.TrimSpace(string(body)), `"`)
		}
		if txid == "" {
			return "", fmt.Errorf("node returned empty transaction id")
		}
		return txid, nil
	}

	var rejection nodeRejection
	if err := json.Unmarshal(body, &rejection); err == nil && rejection.Reason != "" {
		return "", fmt.Errorf("transaction rejected: %s", rejection.Reason)
	}
	return "", fmt.Errorf("broadcast failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
