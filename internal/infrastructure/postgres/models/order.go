package models

import (
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderModel struct {
	ID          string             `gorm:"primaryKey;type:uuid"`
	OwnerID     string             `gorm:"index:idx_owner;not null"`
	TotalAmount decimal.Decimal    `gorm:"type:numeric(12,2);not null"`
	Status      domain.OrderStatus `gorm:"index:idx_status_created;not null"`
	CreatedAt   time.Time          `gorm:"index:idx_status_created"`
	UpdatedAt   time.Time
}
