package repository

import (
	"errors"
	"fmt"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/mappers"
	"github.com/FENGsir1992/mall-payment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db}
}

func (r *DefaultPaymentRepository) CreatePayment(payment *domain.Payment) error {
	paymentModel := mappers.ToGORMPayment(payment)
	if err := r.DB.Create(paymentModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *DefaultPaymentRepository) GetPaymentByID(paymentID string) (*domain.Payment, error) {
	var payment models.PaymentModel
	if err := r.DB.First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return mappers.ToDomainPayment(&payment), nil
}

func (r *DefaultPaymentRepository) GetPaymentByOutTradeNo(outTradeNo string) (*domain.Payment, error) {
	var payment models.PaymentModel
	if err := r.DB.First(&payment, "out_trade_no = ?", outTradeNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return mappers.ToDomainPayment(&payment), nil
}

func (r *DefaultPaymentRepository) GetLatestPayment(orderID, ownerID string, method domain.PaymentMethod) (*domain.Payment, error) {
	var payment models.PaymentModel
	err := r.DB.
		Where("order_id = ? AND owner_id = ? AND method = ?", orderID, ownerID, method).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return mappers.ToDomainPayment(&payment), nil
}

func (r *DefaultPaymentRepository) UpdateOutTradeNo(paymentID, outTradeNo string) error {
	res := r.DB.Model(&models.PaymentModel{}).
		Where("id = ?", paymentID).
		Update("out_trade_no", outTradeNo)
	if res.Error != nil {
		return fmt.Errorf("failed to update out_trade_no: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// TransitionPaymentStatus is the status-guarded conditional update all
// payment mutation funnels through.
func (r *DefaultPaymentRepository) TransitionPaymentStatus(paymentID string, from []domain.PaymentStatus, newStatus domain.PaymentStatus, transactionID string) (bool, error) {
	updates := map[string]any{"status": newStatus}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}

	res := r.DB.Model(&models.PaymentModel{}).
		Where("id = ? AND status IN ?", paymentID, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition payment status: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *DefaultPaymentRepository) FindClosablePayments(orderID string) ([]*domain.Payment, error) {
	var paymentModels []models.PaymentModel
	err := r.DB.
		Where("order_id = ?", orderID).
		Where("method IN ?", []domain.PaymentMethod{domain.MethodWechat, domain.MethodAlipay}).
		Where("status IN ?", []domain.PaymentStatus{domain.PaymentStatusProcessing, domain.PaymentStatusFailed}).
		Find(&paymentModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find closable payments: %w", err)
	}

	payments := make([]*domain.Payment, len(paymentModels))
	for i, paymentModel := range paymentModels {
		payments[i] = mappers.ToDomainPayment(&paymentModel)
	}

	return payments, nil
}
