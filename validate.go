package x402stacks

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidatePaymentRequirements performs basic validation on payment requirements.
func ValidatePaymentRequirements(r PaymentRequirements) error {
	if r.Scheme == "" {
		return fmt.Errorf("payment scheme is required")
	}
	if _, _, err := r.Network.Parse(); err != nil {
		return err
	}
	if r.Asset == "" {
		return fmt.Errorf("payment asset is required")
	}
	if _, err := strconv.ParseUint(r.Amount, 10, 64); err != nil {
		return fmt.Errorf("payment amount must be an integer in minor units: %q", r.Amount)
	}
	if r.PayTo == "" {
		return fmt.Errorf("payment recipient is required")
	}
	return nil
}

// ValidatePaymentPayload performs basic validation on a payment payload.
func ValidatePaymentPayload(p PaymentPayload) error {
	if p.Scheme == "" {
		return fmt.Errorf("payment scheme is required")
	}
	if _, _, err := p.Network.Parse(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Payload.Transaction) == "" {
		return fmt.Errorf("payment transaction is required")
	}
	return nil
}

// findByNetworkAndScheme finds a scheme implementation for a network/scheme
// combination, honoring ":*" network patterns on either side.
func findByNetworkAndScheme[T any](networkMap map[Network]map[string]T, scheme string, network Network) T {
	var zero T

	if schemeMap, exists := networkMap[network]; exists {
		if impl, exists := schemeMap[scheme]; exists {
			return impl
		}
	}

	for registered, schemeMap := range networkMap {
		if network.Match(registered) || registered.Match(network) {
			if impl, exists := schemeMap[scheme]; exists {
				return impl
			}
		}
	}

	return zero
}

// findSchemesByNetwork finds all scheme implementations for a network.
func findSchemesByNetwork[T any](networkMap map[Network]map[string]T, network Network) map[string]T {
	if schemeMap, exists := networkMap[network]; exists {
		return schemeMap
	}
	for registered, schemeMap := range networkMap {
		if network.Match(registered) || registered.Match(network) {
			return schemeMap
		}
	}
	return nil
}
