package background

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/config"
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	payment "github.com/FENGsir1992/mall-payment-service/internal/usecase/payment"
)

type BackgroundTasks struct {
	PaymentUsecase payment.PaymentUsecase
	Sweeper        config.Sweeper
}

func NewBackgroundTasks(paymentUC payment.PaymentUsecase, sweeperCfg config.Sweeper) *BackgroundTasks {
	return &BackgroundTasks{
		PaymentUsecase: paymentUC,
		Sweeper:        sweeperCfg,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startOverdueSweep(ctx)
}

// startOverdueSweep runs the reconciliation sweeper on a fixed
// interval. The usecase rejects overlapping passes, so a slow sweep
// simply skips the next tick.
func (bt *BackgroundTasks) startOverdueSweep(ctx context.Context) {
	ticker := time.NewTicker(bt.Sweeper.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := bt.PaymentUsecase.SweepOverdueOrders(ctx, bt.Sweeper.MaxAge, bt.Sweeper.BatchLimit)
			if err != nil {
				if errors.Is(err, domain.ErrSweepInProgress) {
					continue
				}
				log.Printf("Overdue sweep error: %v\n", err)
				continue
			}
			if result.ClosedOrders > 0 {
				log.Printf("Overdue sweep closed %d orders (%d payments)\n", result.ClosedOrders, result.AffectedPayments)
			}
		}
	}
}
