package payment

import (
	"log/slog"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

var (
	livePaymentStatuses = []domain.PaymentStatus{
		domain.PaymentStatusPending,
		domain.PaymentStatusProcessing,
	}
	unpaidOrderStatuses = []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusProcessing,
	}
)

// applyTradeStatus is the single transition function both the callback
// path and the polling path funnel through. Every mutation is a
// status-guarded conditional update: a replayed or racing notification
// touches zero rows and is a no-op, and a failure report can never
// downgrade an order that already went paid.
func (uc *DefaultPaymentUsecase) applyTradeStatus(payment *domain.Payment, status domain.TradeStatus, transactionID string) error {
	switch status {
	case domain.TradePending:
		// still awaiting payer action
		return nil

	case domain.TradeSuccess:
		changed, err := uc.PaymentRepo.TransitionPaymentStatus(payment.ID, livePaymentStatuses, domain.PaymentStatusSuccess, transactionID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		uc.Metrics.RecordTransition(string(payment.Status), string(domain.PaymentStatusSuccess))

		if _, err := uc.OrderRepo.TransitionOrderStatus(payment.OrderID, unpaidOrderStatuses, domain.OrderStatusPaid); err != nil {
			return err
		}
		uc.publishEvent(payment, string(domain.PaymentStatusSuccess))
		return nil

	default:
		changed, err := uc.PaymentRepo.TransitionPaymentStatus(payment.ID, livePaymentStatuses, domain.PaymentStatusFailed, transactionID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		uc.Metrics.RecordTransition(string(payment.Status), string(domain.PaymentStatusFailed))

		// cancel the order unless it is already paid: the guarded
		// from-set excludes paid, so a late failure is a no-op there
		if _, err := uc.OrderRepo.TransitionOrderStatus(payment.OrderID, unpaidOrderStatuses, domain.OrderStatusCancelled); err != nil {
			return err
		}
		uc.publishEvent(payment, string(domain.PaymentStatusFailed))
		return nil
	}
}

func (uc *DefaultPaymentUsecase) publishEvent(payment *domain.Payment, status string) {
	event := domain.PaymentEvent{
		OrderID:    payment.OrderID,
		PaymentID:  payment.ID,
		OwnerID:    payment.OwnerID,
		Method:     string(payment.Method),
		Status:     status,
		Amount:     payment.Amount.StringFixed(2),
		OccurredAt: time.Now().Unix(),
	}
	if err := uc.Publisher.PublishPaymentEvent(event); err != nil {
		slog.Error("failed to publish payment event", "order_id", payment.OrderID, "error", err.Error())
	}
}
