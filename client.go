package x402stacks

import (
	"context"
	"fmt"
	"sync"
)

// PaymentClient converts a challenge into a payment payload using registered
// scheme mechanisms. It holds no credentials itself; signing lives behind
// each mechanism's boundary.
type PaymentClient struct {
	mu      sync.RWMutex
	schemes map[Network]map[string]SchemeClient
}

// ClientOption configures a PaymentClient.
type ClientOption func(*PaymentClient)

// WithScheme registers a payment mechanism at creation time.
func WithScheme(network Network, client SchemeClient) ClientOption {
	return func(c *PaymentClient) {
		c.RegisterScheme(network, client)
	}
}

// NewPaymentClient creates a new payment client.
func NewPaymentClient(opts ...ClientOption) *PaymentClient {
	c := &PaymentClient{
		schemes: make(map[Network]map[string]SchemeClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterScheme registers a payment mechanism for a network.
func (c *PaymentClient) RegisterScheme(network Network, client SchemeClient) *PaymentClient {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schemes[network] == nil {
		c.schemes[network] = make(map[string]SchemeClient)
	}
	c.schemes[network][client.Scheme()] = client
	return c
}

// SelectRequirements filters a challenge's accepted terms to those this
// client can fulfill and returns the first. A challenge with no fulfillable
// entry fails with an unsupported-requirement error before any construction
// is attempted.
func (c *PaymentClient) SelectRequirements(accepted []PaymentRequirements) (PaymentRequirements, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, req := range accepted {
		schemeMap := findSchemesByNetwork(c.schemes, req.Network)
		if schemeMap == nil {
			continue
		}
		if _, ok := schemeMap[req.Scheme]; ok {
			return req, nil
		}
	}

	return PaymentRequirements{}, NewPaymentError(
		ErrCodeUnsupportedRequirement,
		"no registered mechanism can satisfy the challenge",
		map[string]interface{}{"accepted": accepted},
	)
}

// CreatePaymentPayload builds a payload satisfying the given requirements.
// The returned payload carries exactly the scheme and network the server
// specified; the mechanism encodes exactly the server's amount and
// recipient.
func (c *PaymentClient) CreatePaymentPayload(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error) {
	if err := ValidatePaymentRequirements(requirements); err != nil {
		return PaymentPayload{}, fmt.Errorf("invalid payment requirements: %w", err)
	}

	c.mu.RLock()
	mechanism := findByNetworkAndScheme(c.schemes, requirements.Scheme, requirements.Network)
	c.mu.RUnlock()

	if mechanism == nil {
		return PaymentPayload{}, NewPaymentError(
			ErrCodeUnsupportedRequirement,
			fmt.Sprintf("no client mechanism for scheme %s on network %s", requirements.Scheme, requirements.Network),
			nil,
		)
	}

	payload, err := mechanism.CreatePaymentPayload(ctx, requirements)
	if err != nil {
		return PaymentPayload{}, err
	}
	if payload.Scheme != requirements.Scheme || payload.Network != requirements.Network {
		return PaymentPayload{}, fmt.Errorf(
			"mechanism produced payload for %s/%s, requirements demand %s/%s",
			payload.Scheme, payload.Network, requirements.Scheme, requirements.Network)
	}
	if err := ValidatePaymentPayload(payload); err != nil {
		return PaymentPayload{}, fmt.Errorf("invalid payment payload created: %w", err)
	}
	return payload, nil
}

// CreatePaymentForRequired selects from and satisfies a 402 challenge.
func (c *PaymentClient) CreatePaymentForRequired(ctx context.Context, required PaymentRequired) (PaymentPayload, error) {
	selected, err := c.SelectRequirements(required.Accepted)
	if err != nil {
		return PaymentPayload{}, err
	}
	return c.CreatePaymentPayload(ctx, selected)
}

// CanPay reports whether any of the accepted terms are fulfillable.
func (c *PaymentClient) CanPay(accepted []PaymentRequirements) bool {
	_, err := c.SelectRequirements(accepted)
	return err == nil
}
