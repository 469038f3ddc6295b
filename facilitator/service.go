// Package facilitator exposes a facilitator over HTTP: the supported,
// verify and settle routes a resource server and paying client depend on.
package facilitator

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	"github.com/x402-stacks/x402-stacks-go/stacks"
)

// Service adapts a facilitator to gin routes. Broadcast failures are
// swallowed into txid:null envelopes; the HTTP layer never surfaces them as
// 5xx responses.
type Service struct {
	facilitator x402stacks.FacilitatorClient
	logger      *slog.Logger
}

// NewService creates the HTTP service. A nil logger selects slog.Default.
func NewService(facilitator x402stacks.FacilitatorClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{facilitator: facilitator, logger: logger}
}

// RegisterRoutes mounts the facilitator routes on the given group.
func (s *Service) RegisterRoutes(rg gin.IRouter) {
	rg.GET("/supported", s.handleSupported)
	rg.POST("/verify", s.handleVerify)
	rg.POST("/settle", s.handleSettle)
}

func (s *Service) handleSupported(c *gin.Context) {
	kinds, err := s.facilitator.Supported(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"supported": kinds,
	})
}

type verifyRequest struct {
	PaymentPayload      x402stacks.PaymentPayload       `json:"paymentPayload"`
	PaymentRequirements *x402stacks.PaymentRequirements `json:"paymentRequirements"`
}

func (s *Service) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": x402stacks.ErrCodeMalformed})
		return
	}

	var requirements x402stacks.PaymentRequirements
	if req.PaymentRequirements != nil {
		requirements = *req.PaymentRequirements
	}

	result, err := s.facilitator.Verify(c.Request.Context(), req.PaymentPayload, requirements)
	if err != nil || result == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "verification unavailable"})
		return
	}
	if !result.Valid {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": result.InvalidReason})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "confirmed",
	})
}

// settleEnvelope is the settle response wire shape; TxID stays null on any
// failure so callers have a single signal to check.
type settleEnvelope struct {
	Success     bool               `json:"success"`
	Payer       *string            `json:"payer"`
	Transaction *string            `json:"transaction"`
	TxID        *string            `json:"txid"`
	Network     x402stacks.Network `json:"network"`
	Error       string             `json:"error,omitempty"`
}

func (s *Service) handleSettle(c *gin.Context) {
	network := stacks.NetworkTestnet
	envelope := settleEnvelope{Success: true, Network: network}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		envelope.Error = x402stacks.ErrCodeMalformed
		c.JSON(http.StatusOK, envelope)
		return
	}

	request, err := stacks.ValidateSettleRequest(body)
	if err != nil {
		s.logger.Warn("settle request rejected", "error", err)
		envelope.Error = x402stacks.ErrCodeMalformed
		c.JSON(http.StatusOK, envelope)
		return
	}

	network = stacks.ResolveNetwork(string(request.PaymentPayload.Network))
	envelope.Network = network
	if request.Payer != "" {
		envelope.Payer = &request.Payer
	}

	var requirements x402stacks.PaymentRequirements
	if request.PaymentRequirements != nil {
		requirements = *request.PaymentRequirements
	}

	s.logger.Info("broadcasting settlement",
		"network", stacks.NetworkName(network),
		"scheme", request.PaymentPayload.Scheme)

	result, err := s.facilitator.Settle(c.Request.Context(), request.PaymentPayload, requirements)
	if err != nil || result == nil {
		// Broadcast errors are reported as txid:null, never as HTTP errors.
		s.logger.Error("settlement failed", "error", err)
		c.JSON(http.StatusOK, envelope)
		return
	}

	if result.Transaction != "" {
		envelope.Transaction = &result.Transaction
	}
	if result.Payer != "" {
		envelope.Payer = &result.Payer
	}
	if !result.Success || result.TxID == "" {
		s.logger.Warn("settlement rejected", "reason", result.ErrorReason)
		envelope.Error = result.ErrorReason
		c.JSON(http.StatusOK, envelope)
		return
	}

	s.logger.Info("settlement confirmed", "txid", result.TxID)
	envelope.TxID = &result.TxID
	c.JSON(http.StatusOK, envelope)
}
