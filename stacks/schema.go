package stacks

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
)

// SettleRequest is the strict, versioned shape of a facilitator settle
// request. There is exactly one place a transaction may appear; payloads
// with probe-me-maybe shapes are rejected by schema validation instead of
// being chased through optional lookups.
type SettleRequest struct {
	Payer               string                          `json:"payer,omitempty"`
	PaymentPayload      x402stacks.PaymentPayload       `json:"paymentPayload"`
	PaymentRequirements *x402stacks.PaymentRequirements `json:"paymentRequirements,omitempty"`
}

// settleRequestSchema is the JSON Schema every settle request must satisfy.
const settleRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["paymentPayload"],
  "properties": {
    "payer": {"type": "string"},
    "paymentPayload": {
      "type": "object",
      "required": ["scheme", "network", "payload"],
      "properties": {
        "scheme": {"type": "string", "minLength": 1},
        "network": {"type": "string", "pattern": "^[a-z0-9-]+:[a-zA-Z0-9]+$"},
        "payload": {
          "type": "object",
          "required": ["transaction"],
          "properties": {
            "transaction": {"type": "string", "pattern": "^(0x)?[0-9a-fA-F]+$"}
          }
        }
      }
    },
    "paymentRequirements": {
      "type": "object",
      "properties": {
        "scheme": {"type": "string"},
        "network": {"type": "string"},
        "asset": {"type": "string"},
        "amount": {"type": "string", "pattern": "^[0-9]+$"},
        "payTo": {"type": "string"},
        "description": {"type": "string"}
      }
    }
  }
}`

var settleSchemaLoader = gojsonschema.NewStringLoader(settleRequestSchema)

// ValidateSettleRequest validates raw request bytes against the settle
// request schema and unmarshals them on success. Mismatches yield a typed
// malformed error listing every violation.
func ValidateSettleRequest(data []byte) (*SettleRequest, error) {
	result, err := gojsonschema.Validate(settleSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, x402stacks.NewPaymentError(
			x402stacks.ErrCodeMalformed,
			fmt.Sprintf("settle request is not valid JSON: %v", err),
			nil,
		)
	}

	if !result.Valid() {
		violations := make([]interface{}, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, x402stacks.NewPaymentError(
			x402stacks.ErrCodeMalformed,
			"settle request does not match schema",
			map[string]interface{}{"violations": violations},
		)
	}

	var request SettleRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, x402stacks.NewPaymentError(
			x402stacks.ErrCodeMalformed,
			fmt.Sprintf("decode settle request: %v", err),
			nil,
		)
	}
	return &request, nil
}
