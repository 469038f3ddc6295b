// Package config reads the deployment's environment into one struct so
// the binaries share a single source of settings.
package config

import (
	"os"
	"strconv"
	"time"

	x402stacks "github.com/x402-stacks/x402-stacks-go"
	"github.com/x402-stacks/x402-stacks-go/stacks"
)

const (
	DefaultPort           = 4000
	DefaultPriceMicroSTX  = 1000
	DefaultPaymentMemo    = "x402 payment"
	DefaultFacilitatorURL = "http://localhost:4000/facilitator"
	DefaultAgentBaseURL   = "http://localhost:4000"
	DefaultAgentTimeout   = 120 * time.Second
	DefaultDatasetLocale  = "id"
)

// Config carries every recognized environment option. Zero values mean
// "not set"; defaults are already applied by FromEnv.
type Config struct {
	// Server
	Port          int
	Network       x402stacks.Network
	Recipient     string
	PriceMicroSTX uint64
	PaymentMemo   string
	DatasetDir    string
	DatasetLocale string

	// Facilitator / client
	FacilitatorURL string
	SignerURL      string

	// Agent
	AgentBaseURL string
	AgentTimeout time.Duration

	// Summarizer
	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// FromEnv builds a Config from the process environment, applying
// defaults for everything optional. It never fails; components validate
// the settings they actually need.
func FromEnv() Config {
	return Config{
		Port:          envInt("PORT", envInt("SERVER_PORT", DefaultPort)),
		Network:       stacks.ResolveNetwork(os.Getenv("STACKS_NETWORK")),
		Recipient:     os.Getenv("STACKS_RECIPIENT_ADDRESS"),
		PriceMicroSTX: envUint("PRICE_USTX", DefaultPriceMicroSTX),
		PaymentMemo:   envString("PAYMENT_MEMO", DefaultPaymentMemo),
		DatasetDir:    os.Getenv("DATASET_DIR"),
		DatasetLocale: envString("DATASET_LOCALE", DefaultDatasetLocale),

		FacilitatorURL: envString("FACILITATOR_URL", DefaultFacilitatorURL),
		SignerURL:      os.Getenv("SIGNER_URL"),

		AgentBaseURL: envString("AGENT_BASE_URL", DefaultAgentBaseURL),
		AgentTimeout: envDurationMS("AGENT_TIMEOUT_MS", DefaultAgentTimeout),

		LLMProvider:   envString("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envUint(key string, fallback uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDurationMS(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
