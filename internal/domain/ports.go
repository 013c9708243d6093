package domain

import (
	"context"
	"time"
)

// PaymentEvent is published to the surrounding storefront whenever a
// payment reaches a terminal state or an order changes hands.
type PaymentEvent struct {
	OrderID    string `json:"order_id"`
	PaymentID  string `json:"payment_id"`
	OwnerID    string `json:"owner_id"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	Amount     string `json:"amount"`
	OccurredAt int64  `json:"occurred_at"`
}

type EventPublisher interface {
	PublishPaymentEvent(event PaymentEvent) error
}

// TupleLocker serializes the ledger's check-then-act sequence for one
// (order, owner, method) tuple across processes. The DB unique index
// remains the tie-breaker if two holders slip through.
type TupleLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
