// Package idempotency provides a short-lived per-customer lock so a client
// retrying the same checkout HTTP call cannot race itself into the gateway
// twice. The customer-row status CAS in the store remains the authoritative
// guard; this lock just fails the obvious duplicates fast.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"commerce-server/internal/clients/redis"
	"commerce-server/internal/observability"

	"github.com/google/uuid"
)

// lockTTL bounds how long an abandoned in-flight marker can block a
// customer if a process dies between Acquire and Release.
const lockTTL = 90 * time.Second

// CheckoutLock marks a customer's checkout as in flight for the duration of
// one attempt.
type CheckoutLock struct {
	redis  *redis.Client
	logger *observability.Logger
}

// NewCheckoutLock creates a checkout lock service. A nil redis client is
// allowed; the lock then degrades to a no-op.
func NewCheckoutLock(redisClient *redis.Client, logger *observability.Logger) *CheckoutLock {
	return &CheckoutLock{redis: redisClient, logger: logger}
}

func lockKey(customerID uuid.UUID) string {
	return fmt.Sprintf("checkout:inflight:%s", customerID.String())
}

// Acquire attempts to mark the customer's checkout as in flight. Returns
// false only when another attempt already holds the marker. Redis being
// down or disabled never blocks a checkout.
func (l *CheckoutLock) Acquire(ctx context.Context, customerID uuid.UUID) bool {
	if !l.redis.IsEnabled() {
		return true
	}

	acquired, err := l.redis.SetNX(ctx, lockKey(customerID), time.Now().UnixMilli(), lockTTL)
	if err != nil {
		l.logger.WarnWithError(ctx, "checkout lock unavailable, relying on status guard", err)
		return true
	}
	return acquired
}

// Release clears the in-flight marker once the attempt has a final outcome.
func (l *CheckoutLock) Release(ctx context.Context, customerID uuid.UUID) {
	if !l.redis.IsEnabled() {
		return
	}

	if err := l.redis.Del(ctx, lockKey(customerID)); err != nil {
		l.logger.WarnWithError(ctx, "failed to release checkout lock", err)
	}
}
