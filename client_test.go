package x402stacks

import (
	"context"
	"errors"
	"testing"
)

type mockSchemeClient struct {
	scheme        string
	createPayload func(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error)
}

func (m *mockSchemeClient) Scheme() string {
	if m.scheme == "" {
		return "exact"
	}
	return m.scheme
}

func (m *mockSchemeClient) CreatePaymentPayload(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error) {
	if m.createPayload != nil {
		return m.createPayload(ctx, requirements)
	}
	return PaymentPayload{
		Scheme:  requirements.Scheme,
		Network: requirements.Network,
		Payload: TransactionPayload{Transaction: "deadbeef"},
	}, nil
}

func TestNewPaymentClient(t *testing.T) {
	client := NewPaymentClient()
	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.schemes == nil {
		t.Fatal("Expected schemes map to be initialized")
	}
}

func TestClientRegisterScheme(t *testing.T) {
	mock := &mockSchemeClient{}
	client := NewPaymentClient(WithScheme("stacks:2147483648", mock))

	if client.schemes["stacks:2147483648"]["exact"] != mock {
		t.Fatal("Expected mock client to be registered")
	}
}

func TestClientSelectRequirements(t *testing.T) {
	client := NewPaymentClient(WithScheme("stacks:2147483648", &mockSchemeClient{}))

	accepted := []PaymentRequirements{
		{Scheme: "exact", Network: "eip155:1", Asset: "USDC", Amount: "1", PayTo: "0xabc"},
		validRequirements(),
	}

	selected, err := client.SelectRequirements(accepted)
	if err != nil {
		t.Fatal(err)
	}
	if selected.Network != "stacks:2147483648" {
		t.Errorf("Expected the fulfillable entry, got %+v", selected)
	}
}

func TestClientSelectRequirementsUnsupported(t *testing.T) {
	client := NewPaymentClient(WithScheme("stacks:2147483648", &mockSchemeClient{}))

	_, err := client.SelectRequirements([]PaymentRequirements{
		{Scheme: "exact", Network: "eip155:1", Asset: "USDC", Amount: "1", PayTo: "0xabc"},
	})
	if err == nil {
		t.Fatal("Expected error for unfulfillable challenge")
	}
	if ErrorCode(err) != ErrCodeUnsupportedRequirement {
		t.Errorf("Expected unsupported-requirement code, got %q", ErrorCode(err))
	}

	if client.CanPay(nil) {
		t.Error("Expected CanPay false for empty challenge")
	}
}

func TestClientNeverAltersServerTerms(t *testing.T) {
	var seen PaymentRequirements
	mock := &mockSchemeClient{
		createPayload: func(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error) {
			seen = requirements
			return PaymentPayload{
				Scheme:  requirements.Scheme,
				Network: requirements.Network,
				Payload: TransactionPayload{Transaction: "deadbeef"},
			}, nil
		},
	}
	client := NewPaymentClient(WithScheme("stacks:2147483648", mock))

	terms := validRequirements()
	terms.Amount = "1000"
	terms.PayTo = "ADDR"

	payload, err := client.CreatePaymentPayload(context.Background(), terms)
	if err != nil {
		t.Fatal(err)
	}
	// The mechanism receives the server's terms verbatim.
	if seen.Amount != "1000" || seen.PayTo != "ADDR" {
		t.Errorf("Expected server terms to pass through unchanged, got %+v", seen)
	}
	if payload.Scheme != terms.Scheme || payload.Network != terms.Network {
		t.Errorf("Expected payload to target the challenged scheme/network, got %+v", payload)
	}
}

func TestClientRejectsMismatchedMechanismOutput(t *testing.T) {
	mock := &mockSchemeClient{
		createPayload: func(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error) {
			return PaymentPayload{
				Scheme:  requirements.Scheme,
				Network: "stacks:1",
				Payload: TransactionPayload{Transaction: "deadbeef"},
			}, nil
		},
	}
	client := NewPaymentClient(WithScheme("stacks:2147483648", mock))

	if _, err := client.CreatePaymentPayload(context.Background(), validRequirements()); err == nil {
		t.Error("Expected error when mechanism targets the wrong network")
	}
}

func TestClientCreatePaymentForRequired(t *testing.T) {
	client := NewPaymentClient(WithScheme("stacks:2147483648", &mockSchemeClient{}))

	required := PaymentRequired{
		Scheme:   "exact",
		Network:  "stacks:2147483648",
		Accepted: []PaymentRequirements{validRequirements()},
	}

	payload, err := client.CreatePaymentForRequired(context.Background(), required)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Payload.Transaction == "" {
		t.Error("Expected payload with signed transaction")
	}
}

func TestClientMechanismErrorPropagates(t *testing.T) {
	wantErr := errors.New("signer unavailable")
	mock := &mockSchemeClient{
		createPayload: func(ctx context.Context, requirements PaymentRequirements) (PaymentPayload, error) {
			return PaymentPayload{}, wantErr
		},
	}
	client := NewPaymentClient(WithScheme("stacks:2147483648", mock))

	if _, err := client.CreatePaymentPayload(context.Background(), validRequirements()); !errors.Is(err, wantErr) {
		t.Errorf("Expected mechanism error to propagate, got %v", err)
	}
}
