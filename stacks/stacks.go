// Package stacks implements the "exact" payment scheme on the Stacks
// blockchain: the client signs a STX token transfer for exactly the
// server's terms, and the facilitator broadcasts the signed transaction
// through a Stacks node.
package stacks

import (
	"fmt"
	"strings"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// SchemeExact is the only scheme this mechanism implements: a transfer of
// exactly the required amount to the required recipient.
const SchemeExact = "exact"

// AssetSTX is the native Stacks token, denominated in micro-STX minor units.
const AssetSTX = "STX"

// Canonical network identifiers. Exactly one canonical form maps to each
// supported logical network.
const (
	NetworkMainnet x402stacks.Network = "stacks:1"
	NetworkTestnet x402stacks.Network = "stacks:2147483648"
)

// IsValidNetwork reports whether n is a canonical Stacks network id.
func IsValidNetwork(n x402stacks.Network) bool {
	return n == NetworkMainnet || n == NetworkTestnet
}

// ResolveNetwork canonicalizes a network label. It accepts the canonical
// ids themselves plus the "mainnet"/"testnet" deployment names; anything
// unrecognized resolves to testnet, matching the protocol's safe default.
func ResolveNetwork(label string) x402stacks.Network {
	value := strings.ToLower(strings.TrimSpace(label))
	if value == string(NetworkMainnet) || strings.Contains(value, "mainnet") {
		return NetworkMainnet
	}
	return NetworkTestnet
}

// NetworkName returns the deployment name for a canonical network id.
func NetworkName(n x402stacks.Network) string {
	if n == NetworkMainnet {
		return "mainnet"
	}
	return "testnet"
}

// validateRequirements checks that the requirements target this mechanism.
func validateRequirements(r x402stacks.PaymentRequirements) error {
	if r.Scheme != SchemeExact {
		return fmt.Errorf("unsupported scheme: %s", r.Scheme)
	}
	if !IsValidNetwork(r.Network) {
		return fmt.Errorf("unsupported network: %s", r.Network)
	}
	return nil
}
