package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

type SweepResult struct {
	ClosedOrders     int
	AffectedPayments int
}

// SweepOverdueOrders force-closes unpaid orders older than olderThan.
// For each order, every provider-trackable payment still in processing
// or failed gets a best-effort CloseTransaction; payments in failed are
// closed too, since the provider side may still hold an open trade. A
// close failure is logged and skipped, never aborts the pass. The order
// goes cancelled once all close attempts have been issued.
//
// Only one sweep runs at a time; an overlapping tick is rejected.
func (uc *DefaultPaymentUsecase) SweepOverdueOrders(ctx context.Context, olderThan time.Duration, limit int) (*SweepResult, error) {
	if !uc.sweeping.CompareAndSwap(false, true) {
		return nil, domain.ErrSweepInProgress
	}
	defer uc.sweeping.Store(false)

	cutoff := time.Now().Add(-olderThan)
	orders, err := uc.OrderRepo.FindOverdueOrders(cutoff, limit)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, order := range orders {
		// honor shutdown between orders, never mid-order
		select {
		case <-ctx.Done():
			uc.Metrics.RecordSweep(result.ClosedOrders)
			return result, ctx.Err()
		default:
		}

		result.AffectedPayments += uc.closeOrderPayments(ctx, order.ID)

		closed, err := uc.OrderRepo.TransitionOrderStatus(order.ID, unpaidOrderStatuses, domain.OrderStatusCancelled)
		if err != nil {
			slog.Error("sweep: failed to cancel order", "order_id", order.ID, "error", err.Error())
			continue
		}
		if closed {
			result.ClosedOrders++
		}
	}

	uc.Metrics.RecordSweep(result.ClosedOrders)
	return result, nil
}

func (uc *DefaultPaymentUsecase) closeOrderPayments(ctx context.Context, orderID string) int {
	payments, err := uc.PaymentRepo.FindClosablePayments(orderID)
	if err != nil {
		slog.Error("sweep: failed to list payments", "order_id", orderID, "error", err.Error())
		return 0
	}

	affected := 0
	for _, record := range payments {
		gateway, err := uc.gatewayFor(record.Method)
		if err != nil {
			slog.Error("sweep: no gateway", "payment_id", record.ID, "method", record.Method)
			continue
		}

		callCtx, cancel := uc.callCtx(ctx)
		started := time.Now()
		err = gateway.CloseTransaction(callCtx, record.OutTradeNo)
		cancel()
		uc.Metrics.RecordGatewayCall(string(record.Method), "close", time.Since(started).Seconds(), err != nil)
		if err != nil {
			// best effort: the provider may have closed it already
			slog.Warn("sweep: close attempt failed", "payment_id", record.ID, "error", err.Error())
		}
		affected++

		if _, err := uc.PaymentRepo.TransitionPaymentStatus(record.ID, livePaymentStatuses, domain.PaymentStatusCancelled, ""); err != nil {
			slog.Error("sweep: failed to cancel payment", "payment_id", record.ID, "error", err.Error())
		}
	}

	return affected
}
