// Package gin provides the payment middleware guarding resource routes for
// the Gin framework.
package gin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	xhttp "github.com/x402-stacks/x402-stacks-go/http"
)

// paymentContextKey is where verified payment info is exposed to handlers.
const paymentContextKey = "x402stacks/payment"

// Options configures the middleware.
type Options struct {
	// Logger for challenge and verification events (default slog.Default).
	Logger *slog.Logger
}

// Payment guards a route with the challenge protocol. A request without a
// valid proof of payment receives 402 with the route's requirement; the
// same challenge is reproducible for every unpaid request to the route.
// Invalid proof is treated identically to no proof, keeping the client's
// retry loop uniform. Verified payment info is exposed read-only through
// GetPayment.
func Payment(requirements x402stacks.PaymentRequirements, facilitator x402stacks.FacilitatorClient, opts *Options) gin.HandlerFunc {
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	challenge := x402stacks.PaymentRequired{
		Scheme:   requirements.Scheme,
		Network:  requirements.Network,
		Accepted: []x402stacks.PaymentRequirements{requirements},
	}

	return func(c *gin.Context) {
		header := c.GetHeader(xhttp.PaymentHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, challenge)
			return
		}

		proof, err := xhttp.DecodePaymentHeader(header)
		if err != nil {
			logger.Warn("rejecting unreadable payment proof", "error", err)
			c.AbortWithStatusJSON(http.StatusPaymentRequired, challenge)
			return
		}
		if proof.TxID == "" {
			logger.Warn("rejecting payment proof without transaction id")
			c.AbortWithStatusJSON(http.StatusPaymentRequired, challenge)
			return
		}

		result, err := facilitator.Verify(c.Request.Context(), proof.PaymentPayload, requirements)
		if err != nil || result == nil || !result.Valid {
			reason := "verification failed"
			if err != nil {
				reason = err.Error()
			} else if result != nil {
				reason = result.InvalidReason
			}
			logger.Warn("rejecting payment proof", "reason", reason)
			c.AbortWithStatusJSON(http.StatusPaymentRequired, challenge)
			return
		}

		c.Set(paymentContextKey, proof)

		responseHeader, err := xhttp.EncodePaymentResponseHeader(x402stacks.SettleResponse{
			Success: true,
			TxID:    proof.TxID,
			Network: proof.Network,
		})
		if err == nil {
			c.Header(xhttp.PaymentResponseHeader, responseHeader)
		}

		c.Next()
	}
}

// GetPayment returns the verified payment proof for the current request,
// or nil when the route was reached without payment.
func GetPayment(c *gin.Context) *x402stacks.PaymentProof {
	value, exists := c.Get(paymentContextKey)
	if !exists {
		return nil
	}
	proof, ok := value.(*x402stacks.PaymentProof)
	if !ok {
		return nil
	}
	return proof
}
