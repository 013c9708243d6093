package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

type RefundInput struct {
	UserID  string
	OrderID string
	// Amount is the refund amount; zero means the full payment.
	Amount decimal.Decimal
}

// RefundPayment refunds the order's settled payment. The refund request
// id is derived from the out-trade-no, so retrying the call hits the
// provider's own idempotency and never double-refunds.
func (uc *DefaultPaymentUsecase) RefundPayment(ctx context.Context, input *RefundInput) error {
	order, err := uc.getOwnedOrder(input.OrderID, input.UserID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPaid && order.Status != domain.OrderStatusCompleted {
		return fmt.Errorf("%w: order %s is not refundable", domain.ErrValidation, order.ID)
	}

	record, err := uc.findSettledPayment(order)
	if err != nil {
		return err
	}

	amount := input.Amount
	if amount.IsZero() {
		amount = record.Amount
	}
	if amount.GreaterThan(record.Amount) || !amount.IsPositive() {
		return fmt.Errorf("%w: refund amount out of range", domain.ErrValidation)
	}

	gateway, err := uc.gatewayFor(record.Method)
	if err != nil {
		return err
	}

	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	started := time.Now()
	err = gateway.RefundTransaction(callCtx, &domain.RefundTransactionRequest{
		OutTradeNo:  record.OutTradeNo,
		OutRefundNo: "R" + record.OutTradeNo,
		AmountMinor: amount.Shift(2).Round(0).IntPart(),
		TotalMinor:  record.AmountMinorUnits(),
		Reason:      "storefront refund",
	})
	uc.Metrics.RecordGatewayCall(string(record.Method), "refund", time.Since(started).Seconds(), err != nil)
	if err != nil {
		return err
	}

	if _, err := uc.OrderRepo.TransitionOrderStatus(order.ID, []domain.OrderStatus{domain.OrderStatusPaid, domain.OrderStatusCompleted}, domain.OrderStatusRefunded); err != nil {
		return err
	}
	uc.publishEvent(record, string(domain.OrderStatusRefunded))

	return nil
}

func (uc *DefaultPaymentUsecase) findSettledPayment(order *domain.Order) (*domain.Payment, error) {
	for _, method := range []domain.PaymentMethod{domain.MethodWechat, domain.MethodAlipay} {
		record, err := uc.PaymentRepo.GetLatestPayment(order.ID, order.OwnerID, method)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if record.Status == domain.PaymentStatusSuccess {
			return record, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}
