package x402stacks

import "testing"

func validRequirements() PaymentRequirements {
	return PaymentRequirements{
		Scheme:  "exact",
		Network: "stacks:2147483648",
		Asset:   "STX",
		Amount:  "1000",
		PayTo:   "ST000000000000000000002AMW42H",
	}
}

func TestValidatePaymentRequirements(t *testing.T) {
	if err := ValidatePaymentRequirements(validRequirements()); err != nil {
		t.Fatalf("Expected valid requirements, got %v", err)
	}

	cases := map[string]func(*PaymentRequirements){
		"missing scheme":      func(r *PaymentRequirements) { r.Scheme = "" },
		"bad network":         func(r *PaymentRequirements) { r.Network = "stacks" },
		"missing asset":       func(r *PaymentRequirements) { r.Asset = "" },
		"non-integer amount":  func(r *PaymentRequirements) { r.Amount = "1.5" },
		"negative amount":     func(r *PaymentRequirements) { r.Amount = "-1" },
		"empty amount":        func(r *PaymentRequirements) { r.Amount = "" },
		"missing recipient":   func(r *PaymentRequirements) { r.PayTo = "" },
		"amount not a number": func(r *PaymentRequirements) { r.Amount = "lots" },
	}
	for name, mutate := range cases {
		r := validRequirements()
		mutate(&r)
		if err := ValidatePaymentRequirements(r); err == nil {
			t.Errorf("Expected error for %s", name)
		}
	}
}

func TestValidatePaymentPayload(t *testing.T) {
	payload := PaymentPayload{
		Scheme:  "exact",
		Network: "stacks:2147483648",
		Payload: TransactionPayload{Transaction: "deadbeef"},
	}
	if err := ValidatePaymentPayload(payload); err != nil {
		t.Fatalf("Expected valid payload, got %v", err)
	}

	payload.Payload.Transaction = "   "
	if err := ValidatePaymentPayload(payload); err == nil {
		t.Error("Expected error for blank transaction")
	}

	payload.Payload.Transaction = "deadbeef"
	payload.Network = "nope"
	if err := ValidatePaymentPayload(payload); err == nil {
		t.Error("Expected error for malformed network")
	}
}

func TestFindByNetworkAndScheme(t *testing.T) {
	networkMap := map[Network]map[string]string{
		"stacks:1": {"exact": "mainnet-impl"},
		"stacks:*": {"exact": "wildcard-impl"},
	}

	if got := findByNetworkAndScheme(networkMap, "exact", "stacks:1"); got != "mainnet-impl" {
		t.Errorf("Expected exact network to win, got %q", got)
	}
	if got := findByNetworkAndScheme(networkMap, "exact", "stacks:2147483648"); got != "wildcard-impl" {
		t.Errorf("Expected wildcard fallback, got %q", got)
	}
	if got := findByNetworkAndScheme(networkMap, "exact", "eip155:1"); got != "" {
		t.Errorf("Expected no match for foreign namespace, got %q", got)
	}
	if got := findByNetworkAndScheme(networkMap, "other", "stacks:1"); got != "" {
		t.Errorf("Expected no match for unknown scheme, got %q", got)
	}
}
