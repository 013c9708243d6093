package domain

import "errors"

// ErrDuplicatePayment signals the unique (order, owner, method) index
// rejected a second live row. The caller re-fetches the winner.
var ErrDuplicatePayment = errors.New("duplicate payment for order/owner/method")

type PaymentRepository interface {
	CreatePayment(payment *Payment) error
	GetPaymentByID(paymentID string) (*Payment, error)
	GetPaymentByOutTradeNo(outTradeNo string) (*Payment, error)

	// GetLatestPayment returns the most recent payment for the
	// (order, owner, method) tuple.
	GetLatestPayment(orderID, ownerID string, method PaymentMethod) (*Payment, error)

	UpdateOutTradeNo(paymentID, outTradeNo string) error

	// TransitionPaymentStatus applies a compare-and-swap update guarded
	// by the current status; transactionID is recorded when non-empty.
	// Reports whether the row was changed.
	TransitionPaymentStatus(paymentID string, from []PaymentStatus, newStatus PaymentStatus, transactionID string) (bool, error)

	// FindClosablePayments returns the order's provider-trackable
	// payments still worth a close attempt (processing or failed).
	FindClosablePayments(orderID string) ([]*Payment, error)
}
