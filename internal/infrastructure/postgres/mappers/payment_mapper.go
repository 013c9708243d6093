package mappers

import (
	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/models"
)

func ToGORMPayment(payment *domain.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		OwnerID:       payment.OwnerID,
		Method:        payment.Method,
		Amount:        payment.Amount,
		Status:        payment.Status,
		OutTradeNo:    payment.OutTradeNo,
		TransactionID: payment.TransactionID,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
}

func ToDomainPayment(model *models.PaymentModel) *domain.Payment {
	return &domain.Payment{
		ID:            model.ID,
		OrderID:       model.OrderID,
		OwnerID:       model.OwnerID,
		Method:        model.Method,
		Amount:        model.Amount,
		Status:        model.Status,
		OutTradeNo:    model.OutTradeNo,
		TransactionID: model.TransactionID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
