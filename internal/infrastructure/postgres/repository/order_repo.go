package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.Create(orderModel).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return mappers.ToDomainOrder(&order), nil
}

// TransitionOrderStatus is a single-row conditional update: whichever
// writer commits first wins, the loser's update touches zero rows.
func (r *DefaultOrderRepository) TransitionOrderStatus(orderID string, from []domain.OrderStatus, newStatus domain.OrderStatus) (bool, error) {
	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ? AND status IN ?", orderID, from).
		Update("status", newStatus)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition order status: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *DefaultOrderRepository) FindOverdueOrders(cutoff time.Time, limit int) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	err := r.DB.
		Where("status IN ?", []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusProcessing}).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue orders: %w", err)
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}
