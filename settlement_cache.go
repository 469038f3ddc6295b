package x402stacks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// SettlementCache delivers the at-most-one-broadcast guarantee for settle:
// accepted settlements are cached by payload key, and concurrent submissions
// of the same payload coalesce onto a single in-flight broadcast.
type SettlementCache struct {
	mu       sync.Mutex
	settled  map[string]settledEntry
	inFlight map[string]chan struct{}
	ttl      time.Duration
}

type settledEntry struct {
	response *SettleResponse
	expires  time.Time
}

// DefaultSettlementTTL bounds how long an accepted settlement is remembered
// for duplicate detection.
const DefaultSettlementTTL = 10 * time.Minute

// NewSettlementCache creates a settlement cache. A zero ttl selects
// DefaultSettlementTTL.
func NewSettlementCache(ttl time.Duration) *SettlementCache {
	if ttl <= 0 {
		ttl = DefaultSettlementTTL
	}
	return &SettlementCache{
		settled:  make(map[string]settledEntry),
		inFlight: make(map[string]chan struct{}),
		ttl:      ttl,
	}
}

// SettlementKey derives the idempotency key for a payment payload: the
// SHA-256 of scheme, network and the normalized (lowercased, unprefixed)
// transaction hex. Two submissions of the same signed transaction map to the
// same key regardless of hex casing or "0x" prefix.
func SettlementKey(p PaymentPayload) string {
	tx := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(p.Payload.Transaction), "0x"))
	h := sha256.New()
	h.Write([]byte(p.Scheme))
	h.Write([]byte{0})
	h.Write([]byte(p.Network))
	h.Write([]byte{0})
	h.Write([]byte(tx))
	return hex.EncodeToString(h.Sum(nil))
}

// SettlementStatus is the outcome of checking the cache.
type SettlementStatus int

const (
	// StatusNotFound means no cached result and no in-flight broadcast;
	// the caller now holds the in-flight marker and must Complete or Fail.
	StatusNotFound SettlementStatus = iota
	// StatusSettled means an accepted settlement is cached for this key.
	StatusSettled
	// StatusInFlight means another submission is broadcasting this payload.
	StatusInFlight
)

// CheckAndMark atomically checks the cache and, when the key is unknown,
// marks it in-flight. The returned channel is the wait channel for
// StatusInFlight, or the done channel the caller must close via Complete or
// Fail for StatusNotFound.
func (c *SettlementCache) CheckAndMark(key string) (SettlementStatus, *SettleResponse, chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.settled[key]; ok {
		if time.Now().Before(entry.expires) {
			return StatusSettled, entry.response, nil
		}
		delete(c.settled, key)
	}

	if done, ok := c.inFlight[key]; ok {
		return StatusInFlight, nil, done
	}

	done := make(chan struct{})
	c.inFlight[key] = done
	return StatusNotFound, nil, done
}

// WaitForResult blocks until the in-flight broadcast for key completes or
// ctx expires. A nil response with nil error means the broadcast failed and
// the key is free again.
func (c *SettlementCache) WaitForResult(ctx context.Context, key string, done chan struct{}) (*SettleResponse, error) {
	select {
	case <-done:
		return c.Get(key), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get returns the cached accepted settlement for key, or nil.
func (c *SettlementCache) Get(key string) *SettleResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.settled[key]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expires) {
		delete(c.settled, key)
		return nil
	}
	return entry.response
}

// Complete records an accepted settlement, releases the in-flight marker and
// wakes any waiters.
func (c *SettlementCache) Complete(key string, response *SettleResponse, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settled[key] = settledEntry{response: response, expires: time.Now().Add(c.ttl)}
	delete(c.inFlight, key)
	close(done)

	c.evictExpiredLocked()
}

// Fail releases the in-flight marker without caching, leaving the payload
// eligible for a client-driven resubmission.
func (c *SettlementCache) Fail(key string, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, key)
	close(done)
}

func (c *SettlementCache) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range c.settled {
		if now.After(entry.expires) {
			delete(c.settled, key)
		}
	}
}
