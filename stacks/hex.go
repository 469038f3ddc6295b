package stacks

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var txHexPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]+$`)

// IsTransactionHex reports whether value looks like transaction hex,
// with or without a "0x" prefix.
func IsTransactionHex(value string) bool {
	return txHexPattern.MatchString(value)
}

// NormalizeTransactionHex strips an optional "0x" prefix and lowercases the
// hex so equal transactions compare equal on the wire and in the
// settlement cache.
func NormalizeTransactionHex(value string) (string, error) {
	value = strings.TrimSpace(value)
	if !IsTransactionHex(value) {
		return "", fmt.Errorf("not valid transaction hex: %q", value)
	}
	value = strings.TrimPrefix(value, "0x")
	if len(value)%2 != 0 {
		return "", fmt.Errorf("transaction hex has odd length %d", len(value))
	}
	return strings.ToLower(value), nil
}

// DecodeTransactionHex normalizes and decodes transaction hex into the raw
// signed transaction bytes handed to the broadcaster.
func DecodeTransactionHex(value string) ([]byte, error) {
	normalized, err := NormalizeTransactionHex(value)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("decode transaction hex: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("transaction hex is empty")
	}
	return raw, nil
}
