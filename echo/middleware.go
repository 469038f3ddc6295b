// Package echo provides the payment middleware guarding resource routes for
// the Echo framework, mirroring the gin variant.
package echo

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	xhttp "github.com/x402-stacks/x402-stacks-go/http"
)

const paymentContextKey = "x402stacks/payment"

// Options configures the middleware.
type Options struct {
	Logger *slog.Logger
}

// Payment guards a route with the challenge protocol. Semantics match the
// gin middleware: no proof and invalid proof both receive the same
// reproducible 402 challenge, and verified payment info is exposed through
// GetPayment.
func Payment(requirements x402stacks.PaymentRequirements, facilitator x402stacks.FacilitatorClient, opts *Options) echo.MiddlewareFunc {
	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	challenge := x402stacks.PaymentRequired{
		Scheme:   requirements.Scheme,
		Network:  requirements.Network,
		Accepted: []x402stacks.PaymentRequirements{requirements},
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(xhttp.PaymentHeader)
			if header == "" {
				return c.JSON(http.StatusPaymentRequired, challenge)
			}

			proof, err := xhttp.DecodePaymentHeader(header)
			if err != nil {
				logger.Warn("rejecting unreadable payment proof", "error", err)
				return c.JSON(http.StatusPaymentRequired, challenge)
			}
			if proof.TxID == "" {
				logger.Warn("rejecting payment proof without transaction id")
				return c.JSON(http.StatusPaymentRequired, challenge)
			}

			result, err := facilitator.Verify(c.Request().Context(), proof.PaymentPayload, requirements)
			if err != nil || result == nil || !result.Valid {
				reason := "verification failed"
				if err != nil {
					reason = err.Error()
				} else if result != nil {
					reason = result.InvalidReason
				}
				logger.Warn("rejecting payment proof", "reason", reason)
				return c.JSON(http.StatusPaymentRequired, challenge)
			}

			c.Set(paymentContextKey, proof)

			responseHeader, err := xhttp.EncodePaymentResponseHeader(x402stacks.SettleResponse{
				Success: true,
				TxID:    proof.TxID,
				Network: proof.Network,
			})
			if err == nil {
				c.Response().Header().Set(xhttp.PaymentResponseHeader, responseHeader)
			}

			return next(c)
		}
	}
}

// GetPayment returns the verified payment proof for the current request,
// or nil when the route was reached without payment.
func GetPayment(c echo.Context) *x402stacks.PaymentProof {
	proof, ok := c.Get(paymentContextKey).(*x402stacks.PaymentProof)
	if !ok {
		return nil
	}
	return proof
}
