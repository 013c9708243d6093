package payment

import "github.com/FENGsir1992/mall-payment-service/internal/domain"

// getOwnedOrder loads an order on behalf of a caller. An ownership
// mismatch is reported exactly like a missing order so callers cannot
// probe for other users' orders.
func (uc *DefaultPaymentUsecase) getOwnedOrder(orderID, userID string) (*domain.Order, error) {
	order, err := uc.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
