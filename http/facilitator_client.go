package http

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

// FacilitatorHTTPClient talks to a remote facilitator service over its REST
// routes. It implements x402stacks.FacilitatorClient.
type FacilitatorHTTPClient struct {
	url        string
	httpClient *http.Client
}

// FacilitatorConfig configures the HTTP facilitator client.
type FacilitatorConfig struct {
	// URL is the facilitator base URL, e.g. "http://localhost:4000/facilitator".
	URL string

	// HTTPClient overrides the default client (optional).
	HTTPClient *http.Client

	// Timeout for requests when no HTTPClient is supplied (default 30s).
	Timeout time.Duration
}

// DefaultFacilitatorURL is used when no URL is configured.
const DefaultFacilitatorURL = "http://localhost:4000/facilitator"

// NewFacilitatorHTTPClient creates a facilitator HTTP client.
func NewFacilitatorHTTPClient(config *FacilitatorConfig) *FacilitatorHTTPClient {
	if config == nil {
		config = &FacilitatorConfig{}
	}

	url := config.URL
	if url == "" {
		url = DefaultFacilitatorURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &FacilitatorHTTPClient{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: httpClient,
	}
}

// supportedEnvelope mirrors GET /supported.
type supportedEnvelope struct {
	Success   bool                       `json:"success"`
	Supported []x402stacks.SupportedKind `json:"supported"`
}

// verifyEnvelope mirrors POST /verify.
type verifyEnvelope struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// settleEnvelope mirrors POST /settle. TxID is null whenever no valid
// transaction was supplied or the broadcast failed; the service never turns
// broadcast failures into HTTP errors.
type settleEnvelope struct {
	Success     bool               `json:"success"`
	Payer       *string            `json:"payer"`
	Transaction *string            `json:"transaction"`
	TxID        *string            `json:"txid"`
	Network     x402stacks.Network `json:"network"`
	Error       string             `json:"error,omitempty"`
}

// settleBody is the settle request wire shape.
type settleBody struct {
	Payer               string                          `json:"payer,omitempty"`
	PaymentPayload      x402stacks.PaymentPayload       `json:"paymentPayload"`
	PaymentRequirements *x402stacks.PaymentRequirements `json:"paymentRequirements,omitempty"`
}

// Supported returns the facilitator's accepted payment kinds.
func (c *FacilitatorHTTPClient) Supported(ctx context.Context) ([]x402stacks.SupportedKind, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/supported", nil)
	if err != nil {
		return nil, fmt.Errorf("create supported request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, x402stacks.NewPaymentError(x402stacks.ErrCodeTransport, err.Error(), nil)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read supported response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facilitator supported failed (%d): %s", resp.StatusCode, string(body))
	}

	var envelope supportedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode supported response: %w", err)
	}
	return envelope.Supported, nil
}

// Verify asks the facilitator for its side-effect-free acceptance check.
func (c *FacilitatorHTTPClient) Verify(ctx context.Context, payload x402stacks.PaymentPayload, requirements x402stacks.PaymentRequirements) (*x402stacks.VerifyResponse, error) {
	body, err := json.Marshal(map[string]interface{}{
		"paymentPayload":      payload,
		"paymentRequirements": requirements,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, x402stacks.NewPaymentError(x402stacks.ErrCodeTransport, err.Error(), nil)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facilitator verify failed (%d): %s", resp.StatusCode, string(responseBody))
	}

	var envelope verifyEnvelope
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	if !envelope.Success {
		return &x402stacks.VerifyResponse{Valid: false, InvalidReason: envelope.Error}, nil
	}
	return &x402stacks.VerifyResponse{Valid: true, Status: envelope.Status}, nil
}

// Settle submits the payload for settlement. A null txid in the envelope is
// a failed settlement; callers must treat it as such.
func (c *FacilitatorHTTPClient) Settle(ctx context.Context, payload x402stacks.PaymentPayload, requirements x402stacks.PaymentRequirements) (*x402stacks.SettleResponse, error) {
	body, err := json.Marshal(settleBody{
		PaymentPayload:      payload,
		PaymentRequirements: &requirements,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal settle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/settle", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create settle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, x402stacks.NewPaymentError(x402stacks.ErrCodeTransport, err.Error(), nil)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read settle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facilitator settle failed (%d): %s", resp.StatusCode, string(responseBody))
	}

	var envelope settleEnvelope
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode settle response: %w", err)
	}

	result := &x402stacks.SettleResponse{Network: envelope.Network}
	if envelope.Payer != nil {
		result.Payer = *envelope.Payer
	}
	if envelope.Transaction != nil {
		result.Transaction = *envelope.Transaction
	}
	if envelope.TxID == nil || *envelope.TxID == "" {
		result.Success = false
		result.ErrorReason = envelope.Error
		if result.ErrorReason == "" {
			result.ErrorReason = "settlement produced no transaction id"
		}
		return result, nil
	}

	result.Success = true
	result.TxID = *envelope.TxID
	return result, nil
}
