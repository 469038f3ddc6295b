package x402stacks

import (
	"context"
	"time"
)

// FacilitatorVerifyContext is passed to verify hooks.
type FacilitatorVerifyContext struct {
	Ctx          context.Context
	Payload      PaymentPayload
	Requirements PaymentRequirements
	Timestamp    time.Time
}

// FacilitatorVerifyResultContext carries a verify result back to after hooks.
type FacilitatorVerifyResultContext struct {
	FacilitatorVerifyContext
	Result VerifyResponse
}

// FacilitatorSettleContext is passed to settle hooks.
type FacilitatorSettleContext struct {
	Ctx          context.Context
	Payload      PaymentPayload
	Requirements PaymentRequirements
	Timestamp    time.Time
}

// FacilitatorSettleResultContext carries a settle result back to after hooks.
type FacilitatorSettleResultContext struct {
	FacilitatorSettleContext
	Result SettleResponse
}

// FacilitatorBeforeHookResult aborts the operation when Abort is set.
type FacilitatorBeforeHookResult struct {
	Abort  bool
	Reason string
}

// FacilitatorBeforeVerifyHook runs before verification; an Abort result
// short-circuits with an invalid VerifyResponse.
type FacilitatorBeforeVerifyHook func(FacilitatorVerifyContext) (*FacilitatorBeforeHookResult, error)

// FacilitatorAfterVerifyHook runs after verification. Errors are ignored;
// hooks never change the verify result.
type FacilitatorAfterVerifyHook func(FacilitatorVerifyResultContext) error

// FacilitatorBeforeSettleHook runs before settlement; an Abort result
// short-circuits with a failed SettleResponse and no broadcast.
type FacilitatorBeforeSettleHook func(FacilitatorSettleContext) (*FacilitatorBeforeHookResult, error)

// FacilitatorAfterSettleHook runs after settlement, accepted or not.
// Errors are ignored; hooks never change the settle result.
type FacilitatorAfterSettleHook func(FacilitatorSettleResultContext) error
