package domain

import "context"

// Scene is the payer-facing presentation mode of a transaction.
type Scene string

const (
	SceneWeb Scene = "web" // desktop redirect page
	SceneWap Scene = "wap" // mobile browser
	SceneQR  Scene = "qr"  // QR code payload
	SceneApp Scene = "app" // in-app prepay token
)

func (s Scene) Valid() bool {
	return s == SceneWeb || s == SceneWap || s == SceneQR || s == SceneApp
}

// TradeStatus is the canonical provider-reported state. Raw provider
// status codes are mapped into it at the gateway boundary and never
// leak past it.
type TradeStatus string

const (
	TradeSuccess TradeStatus = "success"
	TradePending TradeStatus = "pending"
	TradeFailed  TradeStatus = "failed"
)

type CreateTransactionRequest struct {
	Scene       Scene
	OutTradeNo  string
	AmountMinor int64
	Description string
	Attach      string
}

// CreateTransactionResult carries the scene-specific payer credential:
// a redirect URL (web/wap), a QR payload (qr) or a prepay token (app).
type CreateTransactionResult struct {
	Scene      Scene
	Credential string
}

type RefundTransactionRequest struct {
	OutTradeNo  string
	OutRefundNo string // idempotency key for the refund
	AmountMinor int64
	TotalMinor  int64
	Reason      string
}

type TradeInfo struct {
	OutTradeNo    string
	TransactionID string
	Status        TradeStatus
}

// NotifyResult is a provider callback decoded and authenticated at the
// gateway boundary.
type NotifyResult struct {
	OutTradeNo    string
	TransactionID string
	Status        TradeStatus
}

// PaymentGateway is the common capability set both providers implement.
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResult, error)
	QueryTransaction(ctx context.Context, outTradeNo string) (*TradeInfo, error)
	CloseTransaction(ctx context.Context, outTradeNo string) error
	RefundTransaction(ctx context.Context, req *RefundTransactionRequest) error

	// MaxOutTradeNoLen is the provider's ceiling on out-trade-no length.
	MaxOutTradeNoLen() int
}
