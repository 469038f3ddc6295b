package x402stacks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Facilitator routes verify and settle calls to registered scheme/network
// mechanisms. Verify is stateless and repeatable; Settle is wrapped by a
// SettlementCache so a distinct payload is broadcast at most once.
// Failures never escape as errors: every outcome is a VerifyResponse or
// SettleResponse value.
type Facilitator struct {
	mu      sync.RWMutex
	schemes map[Network]map[string]SchemeFacilitator
	assets  map[Network]map[string]string
	cache   *SettlementCache

	beforeVerifyHooks []FacilitatorBeforeVerifyHook
	afterVerifyHooks  []FacilitatorAfterVerifyHook
	beforeSettleHooks []FacilitatorBeforeSettleHook
	afterSettleHooks  []FacilitatorAfterSettleHook
}

// FacilitatorOption configures a Facilitator.
type FacilitatorOption func(*Facilitator)

// WithSettlementTTL sets how long accepted settlements are remembered for
// duplicate detection.
func WithSettlementTTL(ttl time.Duration) FacilitatorOption {
	return func(f *Facilitator) {
		f.cache = NewSettlementCache(ttl)
	}
}

// NewFacilitator creates an empty facilitator.
func NewFacilitator(opts ...FacilitatorOption) *Facilitator {
	f := &Facilitator{
		schemes: make(map[Network]map[string]SchemeFacilitator),
		assets:  make(map[Network]map[string]string),
		cache:   NewSettlementCache(0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register adds a scheme mechanism for a network, advertising the given
// asset on the supported list.
func (f *Facilitator) Register(network Network, mechanism SchemeFacilitator, asset string) *Facilitator {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.schemes[network] == nil {
		f.schemes[network] = make(map[string]SchemeFacilitator)
		f.assets[network] = make(map[string]string)
	}
	f.schemes[network][mechanism.Scheme()] = mechanism
	f.assets[network][mechanism.Scheme()] = asset
	return f
}

// OnBeforeVerify registers a hook that runs before each verification.
func (f *Facilitator) OnBeforeVerify(hook FacilitatorBeforeVerifyHook) *Facilitator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeVerifyHooks = append(f.beforeVerifyHooks, hook)
	return f
}

// OnAfterVerify registers a hook that runs after each verification.
func (f *Facilitator) OnAfterVerify(hook FacilitatorAfterVerifyHook) *Facilitator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterVerifyHooks = append(f.afterVerifyHooks, hook)
	return f
}

// OnBeforeSettle registers a hook that runs before each settlement.
func (f *Facilitator) OnBeforeSettle(hook FacilitatorBeforeSettleHook) *Facilitator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeSettleHooks = append(f.beforeSettleHooks, hook)
	return f
}

// OnAfterSettle registers a hook that runs after each settlement.
func (f *Facilitator) OnAfterSettle(hook FacilitatorAfterSettleHook) *Facilitator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterSettleHooks = append(f.afterSettleHooks, hook)
	return f
}

// Supported returns the accepted payment kinds. Pure and constant for a
// given registration set.
func (f *Facilitator) Supported(ctx context.Context) ([]SupportedKind, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var kinds []SupportedKind
	for network, schemeMap := range f.schemes {
		for scheme := range schemeMap {
			kinds = append(kinds, SupportedKind{
				Scheme:  scheme,
				Network: network,
				Asset:   f.assets[network][scheme],
			})
		}
	}
	return kinds, nil
}

// Verify performs the lightweight acceptance check for a payload. It has no
// side effects and is always safe to call repeatedly.
func (f *Facilitator) Verify(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (*VerifyResponse, error) {
	if err := ValidatePaymentPayload(payload); err != nil {
		return &VerifyResponse{Valid: false, InvalidReason: err.Error()}, nil
	}

	hookCtx := FacilitatorVerifyContext{
		Ctx:          ctx,
		Payload:      payload,
		Requirements: requirements,
		Timestamp:    time.Now(),
	}
	for _, hook := range f.verifyBefore() {
		result, err := hook(hookCtx)
		if err != nil {
			return &VerifyResponse{Valid: false, InvalidReason: err.Error()}, nil
		}
		if result != nil && result.Abort {
			return &VerifyResponse{Valid: false, InvalidReason: result.Reason}, nil
		}
	}

	mechanism := f.mechanismFor(payload.Scheme, payload.Network)
	if mechanism == nil {
		return &VerifyResponse{
			Valid:         false,
			InvalidReason: fmt.Sprintf("no facilitator for %s on %s", payload.Scheme, payload.Network),
		}, nil
	}

	result, err := mechanism.Verify(ctx, payload, requirements)
	if err != nil {
		// Mechanism failures stay inside the boundary as invalid results.
		return &VerifyResponse{Valid: false, InvalidReason: err.Error()}, nil
	}

	resultCtx := FacilitatorVerifyResultContext{FacilitatorVerifyContext: hookCtx, Result: *result}
	for _, hook := range f.verifyAfter() {
		_ = hook(resultCtx)
	}

	return result, nil
}

// Settle decodes the payload's signed transaction, resolves the target
// network and submits it for broadcast, at most once per distinct payload.
// A duplicate submission of an already accepted payload returns the cached
// settlement; a duplicate racing an in-flight broadcast waits for it.
// All failures become {Success:false, ErrorReason} values.
func (f *Facilitator) Settle(ctx context.Context, payload PaymentPayload, requirements PaymentRequirements) (*SettleResponse, error) {
	if err := ValidatePaymentPayload(payload); err != nil {
		return &SettleResponse{Success: false, ErrorReason: ErrCodeMalformed}, nil
	}

	hookCtx := FacilitatorSettleContext{
		Ctx:          ctx,
		Payload:      payload,
		Requirements: requirements,
		Timestamp:    time.Now(),
	}
	for _, hook := range f.settleBefore() {
		result, err := hook(hookCtx)
		if err != nil {
			return &SettleResponse{Success: false, ErrorReason: err.Error()}, nil
		}
		if result != nil && result.Abort {
			return &SettleResponse{Success: false, ErrorReason: result.Reason}, nil
		}
	}

	mechanism := f.mechanismFor(payload.Scheme, payload.Network)
	if mechanism == nil {
		return &SettleResponse{
			Success:     false,
			ErrorReason: fmt.Sprintf("no facilitator for %s on %s", payload.Scheme, payload.Network),
		}, nil
	}

	key := SettlementKey(payload)
	for {
		status, cached, ch := f.cache.CheckAndMark(key)
		switch status {
		case StatusSettled:
			return cached, nil

		case StatusInFlight:
			result, err := f.cache.WaitForResult(ctx, key, ch)
			if err != nil {
				return &SettleResponse{Success: false, ErrorReason: ErrCodeTimeout}, nil
			}
			if result != nil {
				return result, nil
			}
			// The racing broadcast failed; take the in-flight slot ourselves.
			continue

		case StatusNotFound:
			result := f.settleOnce(ctx, mechanism, payload, requirements, key, ch)

			resultCtx := FacilitatorSettleResultContext{FacilitatorSettleContext: hookCtx, Result: *result}
			for _, hook := range f.settleAfter() {
				_ = hook(resultCtx)
			}
			return result, nil
		}
	}
}

// settleOnce performs the single broadcast attempt and resolves the
// in-flight marker. Never returns nil.
func (f *Facilitator) settleOnce(ctx context.Context, mechanism SchemeFacilitator, payload PaymentPayload, requirements PaymentRequirements, key string, done chan struct{}) *SettleResponse {
	result, err := mechanism.Settle(ctx, payload, requirements)
	if err != nil {
		f.cache.Fail(key, done)
		return &SettleResponse{Success: false, ErrorReason: err.Error()}
	}
	if result == nil {
		f.cache.Fail(key, done)
		return &SettleResponse{Success: false, ErrorReason: "empty settlement result"}
	}
	if result.Success && result.TxID == "" {
		// Uphold the invariant rather than report a proofless success.
		f.cache.Fail(key, done)
		return &SettleResponse{Success: false, ErrorReason: "settlement accepted without transaction id"}
	}

	if result.Success {
		f.cache.Complete(key, result, done)
	} else {
		f.cache.Fail(key, done)
	}
	return result
}

func (f *Facilitator) mechanismFor(scheme string, network Network) SchemeFacilitator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return findByNetworkAndScheme(f.schemes, scheme, network)
}

func (f *Facilitator) verifyBefore() []FacilitatorBeforeVerifyHook {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.beforeVerifyHooks
}

func (f *Facilitator) verifyAfter() []FacilitatorAfterVerifyHook {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.afterVerifyHooks
}

func (f *Facilitator) settleBefore() []FacilitatorBeforeSettleHook {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.beforeSettleHooks
}

func (f *Facilitator) settleAfter() []FacilitatorAfterSettleHook {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.afterSettleHooks
}
