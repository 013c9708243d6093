package payment

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/metrics"
)

type PaymentUsecase interface {
	CreatePayment(ctx context.Context, input *CreatePaymentInput) (*CreatePaymentOutput, error)
	ProcessNotification(ctx context.Context, provider domain.PaymentMethod, result *domain.NotifyResult) error
	SyncPayment(ctx context.Context, userID, orderID string) (*SyncOutput, error)
	SweepOverdueOrders(ctx context.Context, olderThan time.Duration, limit int) (*SweepResult, error)
	RefundPayment(ctx context.Context, input *RefundInput) error
}

type DefaultPaymentUsecase struct {
	OrderRepo   domain.OrderRepository
	PaymentRepo domain.PaymentRepository
	Gateways    map[domain.PaymentMethod]domain.PaymentGateway
	Locker      domain.TupleLocker
	Publisher   domain.EventPublisher
	Metrics     *metrics.PaymentMetrics
	CallTimeout time.Duration

	sweeping atomic.Bool
}

func NewDefaultPaymentUsecase(
	orderRepo domain.OrderRepository,
	paymentRepo domain.PaymentRepository,
	gateways map[domain.PaymentMethod]domain.PaymentGateway,
	locker domain.TupleLocker,
	publisher domain.EventPublisher,
	paymentMetrics *metrics.PaymentMetrics,
	callTimeout time.Duration) *DefaultPaymentUsecase {

	return &DefaultPaymentUsecase{
		OrderRepo:   orderRepo,
		PaymentRepo: paymentRepo,
		Gateways:    gateways,
		Locker:      locker,
		Publisher:   publisher,
		Metrics:     paymentMetrics,
		CallTimeout: callTimeout,
	}
}

func (uc *DefaultPaymentUsecase) gatewayFor(method domain.PaymentMethod) (domain.PaymentGateway, error) {
	gateway, ok := uc.Gateways[method]
	if !ok {
		return nil, fmt.Errorf("%w: no gateway for method %q", domain.ErrValidation, method)
	}
	return gateway, nil
}

// callCtx derives the per-call deadline applied to every provider
// round-trip; past it the call counts as gateway-unavailable, not a hang.
func (uc *DefaultPaymentUsecase) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.CallTimeout)
}
