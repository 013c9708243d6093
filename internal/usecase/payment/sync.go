package payment

import (
	"context"
	"errors"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

type SyncedPayment struct {
	PaymentID string
	Method    domain.PaymentMethod
	Status    domain.PaymentStatus
}

type SyncOutput struct {
	OrderStatus domain.OrderStatus
	Payments    []SyncedPayment
}

// SyncPayment actively re-queries the providers for the order's live
// payments and pushes the answers through the same transition function
// the callback path uses. Useful when a webhook is delayed or lost.
func (uc *DefaultPaymentUsecase) SyncPayment(ctx context.Context, userID, orderID string) (*SyncOutput, error) {
	order, err := uc.getOwnedOrder(orderID, userID)
	if err != nil {
		return nil, err
	}

	output := &SyncOutput{}
	for _, method := range []domain.PaymentMethod{domain.MethodWechat, domain.MethodAlipay} {
		record, err := uc.PaymentRepo.GetLatestPayment(order.ID, order.OwnerID, method)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if !record.Status.IsTerminal() {
			if err := uc.queryAndApply(ctx, method, record); err != nil {
				return nil, err
			}
			// re-read: the query may have settled it
			record, err = uc.PaymentRepo.GetPaymentByID(record.ID)
			if err != nil {
				return nil, err
			}
		}

		output.Payments = append(output.Payments, SyncedPayment{
			PaymentID: record.ID,
			Method:    record.Method,
			Status:    record.Status,
		})
	}

	refreshed, err := uc.OrderRepo.GetOrderByID(order.ID)
	if err != nil {
		return nil, err
	}
	output.OrderStatus = refreshed.Status

	return output, nil
}

func (uc *DefaultPaymentUsecase) queryAndApply(ctx context.Context, method domain.PaymentMethod, record *domain.Payment) error {
	gateway, err := uc.gatewayFor(method)
	if err != nil {
		return err
	}

	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	started := time.Now()
	info, err := gateway.QueryTransaction(callCtx, record.OutTradeNo)
	uc.Metrics.RecordGatewayCall(string(method), "query", time.Since(started).Seconds(), err != nil)
	if err != nil {
		return err
	}

	return uc.applyTradeStatus(record, info.Status, info.TransactionID)
}
