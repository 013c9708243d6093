package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	outTradeNoRandLen    = 18
	defaultOutTradeNoLen = 64
	lockTTL              = 5 * time.Second
	lockRetryDelay       = 50 * time.Millisecond
	lockRetries          = 40
)

// EnsurePaymentRecord returns the live payment for the
// (order, owner, method) tuple, creating one if needed. Safe to call
// repeatedly for retried checkout clicks: a usable record is reused
// verbatim, an oversized out-trade-no is regenerated in place, and the
// unique index resolves any race the lock did not catch.
func (uc *DefaultPaymentUsecase) EnsurePaymentRecord(ctx context.Context, order *domain.Order, method domain.PaymentMethod) (*domain.Payment, error) {
	// balance payments never reach a provider; the longer ceiling is fine
	maxLen := defaultOutTradeNoLen
	if method.Trackable() {
		gateway, err := uc.gatewayFor(method)
		if err != nil {
			return nil, err
		}
		maxLen = gateway.MaxOutTradeNoLen()
	}

	lockKey := fmt.Sprintf("%s:%s:%s", order.ID, order.OwnerID, method)
	if err := uc.acquireTupleLock(ctx, lockKey); err != nil {
		return nil, err
	}
	defer uc.Locker.Release(ctx, lockKey)

	existing, err := uc.PaymentRepo.GetLatestPayment(order.ID, order.OwnerID, method)
	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		return uc.createPaymentRecord(order, method, maxLen)
	case err != nil:
		return nil, err
	}

	// a terminal previous attempt does not block a fresh one
	if existing.Status.IsTerminal() {
		return uc.createPaymentRecord(order, method, maxLen)
	}

	if len(existing.OutTradeNo) > maxLen {
		regenerated, err := generateOutTradeNo(order.ID, maxLen)
		if err != nil {
			return nil, err
		}
		if err := uc.PaymentRepo.UpdateOutTradeNo(existing.ID, regenerated); err != nil {
			return nil, err
		}
		existing.OutTradeNo = regenerated
	}

	return existing, nil
}

func (uc *DefaultPaymentUsecase) createPaymentRecord(order *domain.Order, method domain.PaymentMethod, maxLen int) (*domain.Payment, error) {
	outTradeNo, err := generateOutTradeNo(order.ID, maxLen)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &domain.Payment{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		OwnerID:    order.OwnerID,
		Method:     method,
		Amount:     order.TotalAmount,
		Status:     domain.PaymentStatusProcessing,
		OutTradeNo: outTradeNo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.PaymentRepo.CreatePayment(record); err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			// lost the tie-break, the winner's row is the record
			return uc.PaymentRepo.GetLatestPayment(order.ID, order.OwnerID, method)
		}
		return nil, err
	}
	return record, nil
}

func (uc *DefaultPaymentUsecase) acquireTupleLock(ctx context.Context, key string) error {
	for i := 0; i < lockRetries; i++ {
		ok, err := uc.Locker.Acquire(ctx, key, lockTTL)
		if err != nil {
			return fmt.Errorf("acquiring payment lock: %w", err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return fmt.Errorf("acquiring payment lock: contention on %s", key)
}

// generateOutTradeNo builds a provider-visible identifier: a random
// alphanumeric component plus a separator-free fragment of the order
// id, truncated to the provider's ceiling. Never reused across
// providers.
func generateOutTradeNo(orderID string, maxLen int) (string, error) {
	gen, err := nanoid.CustomASCII("0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ", outTradeNoRandLen)
	if err != nil {
		return "", err
	}

	fragment := strings.ReplaceAll(orderID, "-", "")
	if room := maxLen - outTradeNoRandLen; len(fragment) > room {
		fragment = fragment[:room]
	}
	return gen() + fragment, nil
}
