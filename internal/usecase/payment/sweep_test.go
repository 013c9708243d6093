package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
)

func addAgedOrder(f *fixture, age time.Duration, status domain.OrderStatus) *domain.Order {
	order := newTestOrder("user-1", status)
	order.CreatedAt = time.Now().Add(-age)
	f.orderRepo.AddOrder(order)
	return order
}

func TestSweepClosesOverdueOrders(t *testing.T) {
	t.Parallel()

	f := newFixture()
	overdue := addAgedOrder(f, 40*time.Minute, domain.OrderStatusProcessing)
	fresh := addAgedOrder(f, 5*time.Minute, domain.OrderStatusPending)

	stuck, err := f.uc.EnsurePaymentRecord(context.Background(), overdue, domain.MethodWechat)
	if err != nil {
		t.Fatalf("seeding payment: %v", err)
	}

	result, err := f.uc.SweepOverdueOrders(context.Background(), 30*time.Minute, 100)
	if err != nil {
		t.Fatalf("SweepOverdueOrders: %v", err)
	}

	if result.ClosedOrders != 1 {
		t.Errorf("closed orders = %d, want 1", result.ClosedOrders)
	}
	if result.AffectedPayments != 1 {
		t.Errorf("affected payments = %d, want 1", result.AffectedPayments)
	}
	if len(f.wechatGW.CloseCalls) != 1 || f.wechatGW.CloseCalls[0] != stuck.OutTradeNo {
		t.Errorf("expected one close call for %s, got %v", stuck.OutTradeNo, f.wechatGW.CloseCalls)
	}

	cancelled, _ := f.paymentRepo.GetPaymentByID(stuck.ID)
	if cancelled.Status != domain.PaymentStatusCancelled {
		t.Errorf("stuck payment status = %s, want cancelled", cancelled.Status)
	}

	closedOrder, _ := f.orderRepo.GetOrderByID(overdue.ID)
	if closedOrder.Status != domain.OrderStatusCancelled {
		t.Errorf("overdue order status = %s, want cancelled", closedOrder.Status)
	}
	untouched, _ := f.orderRepo.GetOrderByID(fresh.ID)
	if untouched.Status != domain.OrderStatusPending {
		t.Errorf("fresh order was swept: %s", untouched.Status)
	}
}

func TestSweepCloseFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.wechatGW.CloseErr = errors.New("provider timeout")

	first := addAgedOrder(f, 45*time.Minute, domain.OrderStatusProcessing)
	second := addAgedOrder(f, 50*time.Minute, domain.OrderStatusProcessing)
	if _, err := f.uc.EnsurePaymentRecord(context.Background(), first, domain.MethodWechat); err != nil {
		t.Fatalf("seeding payment: %v", err)
	}
	if _, err := f.uc.EnsurePaymentRecord(context.Background(), second, domain.MethodAlipay); err != nil {
		t.Fatalf("seeding payment: %v", err)
	}

	result, err := f.uc.SweepOverdueOrders(context.Background(), 30*time.Minute, 100)
	if err != nil {
		t.Fatalf("SweepOverdueOrders: %v", err)
	}
	if result.ClosedOrders != 2 {
		t.Errorf("closed orders = %d, want 2 despite the close failure", result.ClosedOrders)
	}
	if len(f.alipayGW.CloseCalls) != 1 {
		t.Errorf("second order's close was skipped after the first failure")
	}
}

func TestSweepClosesFailedPayments(t *testing.T) {
	t.Parallel()

	f := newFixture()
	overdue := addAgedOrder(f, 40*time.Minute, domain.OrderStatusProcessing)

	// a failed attempt may still hold an open trade on the provider side
	failed := &domain.Payment{
		ID:         "pay-failed",
		OrderID:    overdue.ID,
		OwnerID:    overdue.OwnerID,
		Method:     domain.MethodAlipay,
		Amount:     overdue.TotalAmount,
		Status:     domain.PaymentStatusFailed,
		OutTradeNo: "failed-trade-no",
		CreatedAt:  overdue.CreatedAt,
	}
	f.paymentRepo.AddPayment(failed)

	if _, err := f.uc.SweepOverdueOrders(context.Background(), 30*time.Minute, 100); err != nil {
		t.Fatalf("SweepOverdueOrders: %v", err)
	}

	if len(f.alipayGW.CloseCalls) != 1 || f.alipayGW.CloseCalls[0] != "failed-trade-no" {
		t.Errorf("failed payment did not get a close attempt: %v", f.alipayGW.CloseCalls)
	}
}

func TestSweepIsNotReentrant(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.uc.sweeping.Store(true)

	_, err := f.uc.SweepOverdueOrders(context.Background(), 30*time.Minute, 100)
	if !errors.Is(err, domain.ErrSweepInProgress) {
		t.Fatalf("overlapping sweep error = %v, want ErrSweepInProgress", err)
	}

	f.uc.sweeping.Store(false)
	if _, err := f.uc.SweepOverdueOrders(context.Background(), 30*time.Minute, 100); err != nil {
		t.Fatalf("sweep after release: %v", err)
	}
}

func TestSweepHonorsContextBetweenOrders(t *testing.T) {
	t.Parallel()

	f := newFixture()
	addAgedOrder(f, 40*time.Minute, domain.OrderStatusPending)
	addAgedOrder(f, 45*time.Minute, domain.OrderStatusPending)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.uc.SweepOverdueOrders(ctx, 30*time.Minute, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("sweep error = %v, want context.Canceled", err)
	}
	if result.ClosedOrders != 0 {
		t.Errorf("cancelled sweep still closed %d orders", result.ClosedOrders)
	}
}
