// Package http provides the HTTP wire surface of the protocol: the payment
// proof header codec and a facilitator client speaking the facilitator's
// REST routes.
package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// Header names. The payment header travels on retried requests; the payment
// response header travels back on granted responses.
const (
	PaymentHeader         = "X-Payment"
	PaymentResponseHeader = "X-Payment-Response"
)

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// EncodePaymentHeader encodes a payment proof for the X-Payment header as
// base64 JSON.
func EncodePaymentHeader(proof x402stacks.PaymentProof) (string, error) {
	data, err := json.Marshal(proof)
	if err != nil {
		return "", fmt.Errorf("marshal payment proof: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodePaymentHeader validates and decodes an X-Payment header value.
func DecodePaymentHeader(header string) (*x402stacks.PaymentProof, error) {
	if header == "" {
		return nil, fmt.Errorf("payment header is empty")
	}
	if !base64Pattern.MatchString(header) {
		return nil, fmt.Errorf("payment header is not valid base64")
	}
	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("payment header base64 decoding failed: %w", err)
	}

	var proof x402stacks.PaymentProof
	if err := json.Unmarshal(decoded, &proof); err != nil {
		return nil, fmt.Errorf("payment header is not valid JSON: %w", err)
	}
	if err := x402stacks.ValidatePaymentPayload(proof.PaymentPayload); err != nil {
		return nil, fmt.Errorf("invalid payment proof: %w", err)
	}
	return &proof, nil
}

// EncodePaymentResponseHeader encodes a settlement outcome for the
// X-Payment-Response header.
func EncodePaymentResponseHeader(response x402stacks.SettleResponse) (string, error) {
	data, err := json.Marshal(response)
	if err != nil {
		return "", fmt.Errorf("marshal settle response: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodePaymentResponseHeader decodes an X-Payment-Response header value.
func DecodePaymentResponseHeader(header string) (*x402stacks.SettleResponse, error) {
	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("payment response header base64 decoding failed: %w", err)
	}
	var response x402stacks.SettleResponse
	if err := json.Unmarshal(decoded, &response); err != nil {
		return nil, fmt.Errorf("payment response header is not valid JSON: %w", err)
	}
	return &response, nil
}
