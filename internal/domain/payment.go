package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

type PaymentMethod string

const (
	MethodWechat  PaymentMethod = "wechat"
	MethodAlipay  PaymentMethod = "alipay"
	MethodBalance PaymentMethod = "balance"
)

// Trackable reports whether the method has a provider-side trade record
// that can be queried or closed. Balance payments settle locally.
func (m PaymentMethod) Trackable() bool {
	return m == MethodWechat || m == MethodAlipay
}

func (m PaymentMethod) Valid() bool {
	return m == MethodWechat || m == MethodAlipay || m == MethodBalance
}

type Payment struct {
	ID            string
	OrderID       string
	OwnerID       string
	Method        PaymentMethod
	Amount        decimal.Decimal
	Status        PaymentStatus
	OutTradeNo    string // identifier shared with the provider
	TransactionID string // assigned by the provider after settlement
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AmountMinorUnits converts the decimal amount to integer minor units
// (fen for CNY). Rounding is half away from zero; only integers ever
// cross the provider boundary.
func (p *Payment) AmountMinorUnits() int64 {
	return p.Amount.Shift(2).Round(0).IntPart()
}
