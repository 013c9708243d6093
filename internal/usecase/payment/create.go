package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

type CreatePaymentInput struct {
	UserID  string
	OrderID string
	Method  domain.PaymentMethod
	Scene   domain.Scene
}

type CreatePaymentOutput struct {
	PaymentID  string
	OutTradeNo string
	Scene      domain.Scene
	Credential string
}

// CreatePayment obtains the tracked payment record for the order and
// asks the provider for a payer-facing credential. A gateway failure
// leaves the payment in processing: the provider side may have
// partially succeeded, so reconciliation decides, not this call.
func (uc *DefaultPaymentUsecase) CreatePayment(ctx context.Context, input *CreatePaymentInput) (*CreatePaymentOutput, error) {
	if !input.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown method %q", domain.ErrValidation, input.Method)
	}
	if input.Method.Trackable() && !input.Scene.Valid() {
		return nil, fmt.Errorf("%w: unknown scene %q", domain.ErrValidation, input.Scene)
	}

	order, err := uc.getOwnedOrder(input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	if !order.Status.Unpaid() {
		return nil, domain.ErrOrderNotPayable
	}

	if input.Method == domain.MethodBalance {
		return uc.settleWithBalance(ctx, order)
	}

	record, err := uc.EnsurePaymentRecord(ctx, order, input.Method)
	if err != nil {
		return nil, err
	}
	uc.OrderRepo.TransitionOrderStatus(order.ID, []domain.OrderStatus{domain.OrderStatusPending}, domain.OrderStatusProcessing)

	gateway, err := uc.gatewayFor(input.Method)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := uc.callCtx(ctx)
	defer cancel()

	started := time.Now()
	result, err := gateway.CreateTransaction(callCtx, &domain.CreateTransactionRequest{
		Scene:       input.Scene,
		OutTradeNo:  record.OutTradeNo,
		AmountMinor: record.AmountMinorUnits(),
		Description: fmt.Sprintf("order %s", order.ID),
		Attach:      record.ID, // correlation token carried back in callbacks
	})
	uc.Metrics.RecordGatewayCall(string(input.Method), "create", time.Since(started).Seconds(), err != nil)
	if err != nil {
		return nil, err
	}

	uc.Metrics.RecordPaymentCreated(string(input.Method), string(input.Scene))

	return &CreatePaymentOutput{
		PaymentID:  record.ID,
		OutTradeNo: record.OutTradeNo,
		Scene:      result.Scene,
		Credential: result.Credential,
	}, nil
}

// settleWithBalance settles the internal-balance method locally: there
// is no provider trade to track, the payment succeeds immediately.
func (uc *DefaultPaymentUsecase) settleWithBalance(ctx context.Context, order *domain.Order) (*CreatePaymentOutput, error) {
	record, err := uc.EnsurePaymentRecord(ctx, order, domain.MethodBalance)
	if err != nil {
		return nil, err
	}
	if err := uc.applyTradeStatus(record, domain.TradeSuccess, ""); err != nil {
		return nil, err
	}
	uc.Metrics.RecordPaymentCreated(string(domain.MethodBalance), "")

	return &CreatePaymentOutput{PaymentID: record.ID, OutTradeNo: record.OutTradeNo}, nil
}
