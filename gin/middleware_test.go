package gin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	xhttp "github.com/x402-stacks/x402-stacks-go/http"
)

type stubFacilitator struct {
	valid  bool
	reason string
}

func (s *stubFacilitator) Verify(ctx context.Context, payload x402stacks.PaymentPayload, requirements x402stacks.PaymentRequirements) (*x402stacks.VerifyResponse, error) {
	if !s.valid {
		return &x402stacks.VerifyResponse{Valid: false, InvalidReason: s.reason}, nil
	}
	return &x402stacks.VerifyResponse{Valid: true, Status: "confirmed"}, nil
}

func (s *stubFacilitator) Settle(ctx context.Context, payload x402stacks.PaymentPayload, requirements x402stacks.PaymentRequirements) (*x402stacks.SettleResponse, error) {
	return &x402stacks.SettleResponse{Success: true, TxID: "tx123"}, nil
}

func (s *stubFacilitator) Supported(ctx context.Context) ([]x402stacks.SupportedKind, error) {
	return nil, nil
}

func guardedRequirements() x402stacks.PaymentRequirements {
	return x402stacks.PaymentRequirements{
		Scheme:  "exact",
		Network: "stacks:2147483648",
		Asset:   "STX",
		Amount:  "1000",
		PayTo:   "ST2CY5V39NHDPWSXMW9QDT3HC3GD6Q6XX4CFRK9AG",
	}
}

func guardedRouter(facilitator x402stacks.FacilitatorClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/premium/search",
		Payment(guardedRequirements(), facilitator, nil),
		func(c *gin.Context) {
			proof := GetPayment(c)
			if proof == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "no payment in context"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"paid": true, "txid": proof.TxID})
		})
	return router
}

func encodedProof(t *testing.T, txid string) string {
	t.Helper()
	header, err := xhttp.EncodePaymentHeader(x402stacks.PaymentProof{
		PaymentPayload: x402stacks.PaymentPayload{
			Scheme:  "exact",
			Network: "stacks:2147483648",
			Payload: x402stacks.TransactionPayload{Transaction: "deadbeef"},
		},
		TxID: txid,
	})
	require.NoError(t, err)
	return header
}

func TestPaymentMiddlewareChallenge(t *testing.T) {
	router := guardedRouter(&stubFacilitator{valid: true})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/premium/search?q=weather", nil))
	require.Equal(t, http.StatusPaymentRequired, first.Code)

	var challenge x402stacks.PaymentRequired
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &challenge))
	assert.Equal(t, "exact", challenge.Scheme)
	assert.Equal(t, x402stacks.Network("stacks:2147483648"), challenge.Network)
	require.Len(t, challenge.Accepted, 1)
	assert.Equal(t, "1000", challenge.Accepted[0].Amount)

	// The challenge is idempotent: repeated unpaid requests get the same body.
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/premium/search?q=weather", nil))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestPaymentMiddlewareInvalidProofIs402(t *testing.T) {
	router := guardedRouter(&stubFacilitator{valid: true})

	cases := map[string]string{
		"not base64":    "!!!",
		"not json":      base64.StdEncoding.EncodeToString([]byte("junk")),
		"missing txid":  encodedProof(t, ""),
		"empty payload": base64.StdEncoding.EncodeToString([]byte("{}")),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/premium/search", nil)
			req.Header.Set(xhttp.PaymentHeader, header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Invalid proof re-challenges; it is never a 403.
			assert.Equal(t, http.StatusPaymentRequired, w.Code)
			var challenge x402stacks.PaymentRequired
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
			assert.NotEmpty(t, challenge.Accepted)
		})
	}
}

func TestPaymentMiddlewareUnverifiedProofIs402(t *testing.T) {
	router := guardedRouter(&stubFacilitator{valid: false, reason: "unknown transaction"})

	req := httptest.NewRequest(http.MethodGet, "/premium/search", nil)
	req.Header.Set(xhttp.PaymentHeader, encodedProof(t, "tx123"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestPaymentMiddlewareValidProof(t *testing.T) {
	router := guardedRouter(&stubFacilitator{valid: true})

	req := httptest.NewRequest(http.MethodGet, "/premium/search", nil)
	req.Header.Set(xhttp.PaymentHeader, encodedProof(t, "tx123"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tx123", body["txid"])

	responseHeader := w.Header().Get(xhttp.PaymentResponseHeader)
	require.NotEmpty(t, responseHeader)
	settle, err := xhttp.DecodePaymentResponseHeader(responseHeader)
	require.NoError(t, err)
	assert.Equal(t, "tx123", settle.TxID)
}
