package payment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/metrics"
)

var (
	sharedMetrics     *metrics.PaymentMetrics
	sharedMetricsOnce sync.Once
)

// testMetrics returns a process-wide metrics instance: promauto
// registers into the default registry, so it must be built once.
func testMetrics() *metrics.PaymentMetrics {
	sharedMetricsOnce.Do(func() {
		sharedMetrics = metrics.NewPaymentMetrics()
	})
	return sharedMetrics
}

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *MockOrderRepository) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
}

func (m *MockOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepository) TransitionOrderStatus(orderID string, from []domain.OrderStatus, newStatus domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if order.Status == status {
			order.Status = newStatus
			return true, nil
		}
	}
	return false, nil
}

func (m *MockOrderRepository) FindOverdueOrders(cutoff time.Time, limit int) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Order
	for _, order := range m.orders {
		if order.Status.Unpaid() && order.CreatedAt.Before(cutoff) {
			copied := *order
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *payment
	m.payments[payment.ID] = &copied
}

func (m *MockPaymentRepository) All() []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, payment := range m.payments {
		copied := *payment
		result = append(result, &copied)
	}
	return result
}

// CreatePayment enforces the live-tuple unique index the real schema
// carries: a second pending/processing row for the tuple is rejected.
func (m *MockPaymentRepository) CreatePayment(payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.payments {
		if existing.OrderID == payment.OrderID &&
			existing.OwnerID == payment.OwnerID &&
			existing.Method == payment.Method &&
			!existing.Status.IsTerminal() {
			return domain.ErrDuplicatePayment
		}
	}
	copied := *payment
	m.payments[payment.ID] = &copied
	return nil
}

func (m *MockPaymentRepository) GetPaymentByID(paymentID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *payment
	return &copied, nil
}

func (m *MockPaymentRepository) GetPaymentByOutTradeNo(outTradeNo string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, payment := range m.payments {
		if payment.OutTradeNo == outTradeNo {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetLatestPayment(orderID, ownerID string, method domain.PaymentMethod) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Payment
	for _, payment := range m.payments {
		if payment.OrderID != orderID || payment.OwnerID != ownerID || payment.Method != method {
			continue
		}
		if latest == nil || payment.CreatedAt.After(latest.CreatedAt) {
			latest = payment
		}
	}
	if latest == nil {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MockPaymentRepository) UpdateOutTradeNo(paymentID, outTradeNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[paymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	payment.OutTradeNo = outTradeNo
	return nil
}

func (m *MockPaymentRepository) TransitionPaymentStatus(paymentID string, from []domain.PaymentStatus, newStatus domain.PaymentStatus, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[paymentID]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if payment.Status == status {
			payment.Status = newStatus
			if transactionID != "" {
				payment.TransactionID = transactionID
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPaymentRepository) FindClosablePayments(orderID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, payment := range m.payments {
		if payment.OrderID != orderID || !payment.Method.Trackable() {
			continue
		}
		if payment.Status == domain.PaymentStatusProcessing || payment.Status == domain.PaymentStatusFailed {
			copied := *payment
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

type MockGateway struct {
	mu sync.Mutex

	MaxLen      int
	CreateErr   error
	QueryErr    error
	CloseErr    error
	RefundErr   error
	QueryResult *domain.TradeInfo
	Credential  string

	CreateCalls []string
	QueryCalls  []string
	CloseCalls  []string
	RefundCalls []domain.RefundTransactionRequest
}

func NewMockGateway(maxLen int) *MockGateway {
	return &MockGateway{MaxLen: maxLen, Credential: "weixin://wxpay/test"}
}

func (g *MockGateway) MaxOutTradeNoLen() int { return g.MaxLen }

func (g *MockGateway) CreateTransaction(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.CreateTransactionResult, error) {
	g.mu.Lock()
	g.CreateCalls = append(g.CreateCalls, req.OutTradeNo)
	g.mu.Unlock()
	if g.CreateErr != nil {
		return nil, g.CreateErr
	}
	return &domain.CreateTransactionResult{Scene: req.Scene, Credential: g.Credential}, nil
}

func (g *MockGateway) QueryTransaction(ctx context.Context, outTradeNo string) (*domain.TradeInfo, error) {
	g.mu.Lock()
	g.QueryCalls = append(g.QueryCalls, outTradeNo)
	g.mu.Unlock()
	if g.QueryErr != nil {
		return nil, g.QueryErr
	}
	if g.QueryResult != nil {
		return g.QueryResult, nil
	}
	return &domain.TradeInfo{OutTradeNo: outTradeNo, Status: domain.TradePending}, nil
}

func (g *MockGateway) CloseTransaction(ctx context.Context, outTradeNo string) error {
	g.mu.Lock()
	g.CloseCalls = append(g.CloseCalls, outTradeNo)
	g.mu.Unlock()
	return g.CloseErr
}

func (g *MockGateway) RefundTransaction(ctx context.Context, req *domain.RefundTransactionRequest) error {
	g.mu.Lock()
	g.RefundCalls = append(g.RefundCalls, *req)
	g.mu.Unlock()
	return g.RefundErr
}

// ──────────────────────────────────────────────
// MOCK LOCKER / PUBLISHER
// ──────────────────────────────────────────────

type MockLocker struct {
	mu    sync.Mutex
	locks map[string]bool
}

func NewMockLocker() *MockLocker {
	return &MockLocker{locks: make(map[string]bool)}
}

func (l *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[key] {
		return false, nil
	}
	l.locks[key] = true
	return true, nil
}

func (l *MockLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}

type MockPublisher struct {
	mu     sync.Mutex
	Events []domain.PaymentEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) PublishPaymentEvent(event domain.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *MockPublisher) EventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}

// ──────────────────────────────────────────────
// FIXTURE WIRING
// ──────────────────────────────────────────────

type fixture struct {
	uc          *DefaultPaymentUsecase
	orderRepo   *MockOrderRepository
	paymentRepo *MockPaymentRepository
	wechatGW    *MockGateway
	alipayGW    *MockGateway
	publisher   *MockPublisher
}

func newFixture() *fixture {
	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	wechatGW := NewMockGateway(32)
	alipayGW := NewMockGateway(64)
	publisher := NewMockPublisher()

	uc := NewDefaultPaymentUsecase(
		orderRepo,
		paymentRepo,
		map[domain.PaymentMethod]domain.PaymentGateway{
			domain.MethodWechat: wechatGW,
			domain.MethodAlipay: alipayGW,
		},
		NewMockLocker(),
		publisher,
		testMetrics(),
		5*time.Second,
	)

	return &fixture{
		uc:          uc,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		wechatGW:    wechatGW,
		alipayGW:    alipayGW,
		publisher:   publisher,
	}
}
