// The server binary hosts both halves of the protocol in one process: the
// facilitator routes under /facilitator and the paid premium dataset under
// /premium.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	"github.com/x402-stacks/x402-stacks-go/config"
	facilitatorhttp "github.com/x402-stacks/x402-stacks-go/facilitator"
	x402gin "github.com/x402-stacks/x402-stacks-go/gin"
	"github.com/x402-stacks/x402-stacks-go/premium"
	"github.com/x402-stacks/x402-stacks-go/stacks"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.FromEnv()
	if cfg.Recipient == "" {
		return fmt.Errorf("STACKS_RECIPIENT_ADDRESS is required")
	}

	broadcaster := stacks.NewNodeClient(nil)
	mechanism := stacks.NewExactFacilitator(broadcaster)

	fac := x402stacks.NewFacilitator().
		Register(stacks.NetworkMainnet, mechanism, stacks.AssetSTX).
		Register(stacks.NetworkTestnet, mechanism, stacks.AssetSTX)

	requirements := x402stacks.PaymentRequirements{
		Scheme:      stacks.SchemeExact,
		Network:     cfg.Network,
		Asset:       stacks.AssetSTX,
		Amount:      strconv.FormatUint(cfg.PriceMicroSTX, 10),
		PayTo:       cfg.Recipient,
		Description: cfg.PaymentMemo,
	}

	store := premium.NewMemoryStore(premium.LoadCatalog(cfg.DatasetDir, cfg.DatasetLocale, logger))

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	facilitatorhttp.NewService(fac, logger).
		RegisterRoutes(router.Group("/facilitator"))

	paywall := x402gin.Payment(requirements, fac, &x402gin.Options{Logger: logger})
	premium.NewService(store).
		RegisterRoutes(router.Group("/premium"), paywall)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("listening",
		"addr", addr,
		"network", stacks.NetworkName(cfg.Network),
		"price_ustx", cfg.PriceMicroSTX)
	return router.Run(addr)
}
