package mappers

import (
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:          order.ID,
		OwnerID:     order.OwnerID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:          model.ID,
		OwnerID:     model.OwnerID,
		TotalAmount: model.TotalAmount,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
