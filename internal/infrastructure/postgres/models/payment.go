package models

import (
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentModel rows additionally carry a partial unique index
// (order_id, owner_id, method) WHERE status IN ('pending','processing'),
// applied by SQL migration: at most one live payment per tuple.
// AutoMigrate cannot express the partial predicate.
type PaymentModel struct {
	ID            string               `gorm:"primaryKey;type:uuid"`
	OrderID       string               `gorm:"type:uuid;index:idx_payment_order;not null"`
	OwnerID       string               `gorm:"not null"`
	Method        domain.PaymentMethod `gorm:"not null"`
	Amount        decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Status        domain.PaymentStatus `gorm:"index:idx_payment_status;not null"`
	OutTradeNo    string               `gorm:"uniqueIndex:idx_out_trade_no;not null"`
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
