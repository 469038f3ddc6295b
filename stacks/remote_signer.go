package stacks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// RemoteSigner implements Signer against a signing service that holds
// the credential. The service exposes two routes: GET /address and
// POST /sign-token-transfer.
type RemoteSigner struct {
	baseURL string
	client  *http.Client
}

type RemoteSignerConfig struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewRemoteSigner(config *RemoteSignerConfig) (*RemoteSigner, error) {
	if config == nil || config.URL == "" {
		return nil, x402stacks.NewPaymentError(x402stacks.ErrCodeConfiguration,
			"remote signer requires a service URL", nil)
	}

	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &RemoteSigner{
		baseURL: strings.TrimSuffix(config.URL, "/"),
		client:  client,
	}, nil
}

type signTransferRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Memo      string `json:"memo,omitempty"`
	Network   string `json:"network"`
}

type signTransferResponse struct {
	Transaction string `json:"transaction"`
	Error       string `json:"error,omitempty"`
}

type addressResponse struct {
	Address string `json:"address"`
	Error   string `json:"error,omitempty"`
}

func (s *RemoteSigner) Address(network x402stacks.Network) (string, error) {
	query := url.Values{"network": []string{NetworkName(network)}}
	resp, err := s.client.Get(s.baseURL + "/address?" + query.Encode())
	if err != nil {
		return "", fmt.Errorf("signer service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded addressResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("signer service: decode address: %w", err)
	}
	if resp.StatusCode != http.StatusOK || decoded.Address == "" {
		return "", signerError(resp.StatusCode, decoded.Error)
	}
	return decoded.Address, nil
}

func (s *RemoteSigner) SignTokenTransfer(ctx context.Context, transfer TokenTransfer) (string, error) {
	body, err := json.Marshal(signTransferRequest{
		Recipient: transfer.Recipient,
		Amount:    strconv.FormatUint(transfer.AmountMicroSTX, 10),
		Memo:      transfer.Memo,
		Network:   string(transfer.Network),
	})
	if err != nil {
		return "", fmt.Errorf("signer service: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sign-token-transfer", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("signer service: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("signer service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("signer service: read response: %w", err)
	}

	var decoded signTransferResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("signer service: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || decoded.Transaction == "" {
		return "", signerError(resp.StatusCode, decoded.Error)
	}
	if !IsTransactionHex(decoded.Transaction) {
		return "", fmt.Errorf("signer service: returned malformed transaction hex")
	}
	return decoded.Transaction, nil
}

func signerError(status int, message string) error {
	if message == "" {
		message = "signing failed"
	}
	return fmt.Errorf("signer service: %s (status %d)", message, status)
}
