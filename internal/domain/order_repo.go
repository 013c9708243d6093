package domain

import "time"

type OrderRepository interface {
	GetOrderByID(orderID string) (*Order, error)

	// TransitionOrderStatus applies a compare-and-swap update: the status
	// becomes newStatus only if the current status is one of from. It
	// reports whether the row was changed; a lost race is not an error.
	TransitionOrderStatus(orderID string, from []OrderStatus, newStatus OrderStatus) (bool, error)

	// FindOverdueOrders returns unpaid orders created before cutoff,
	// oldest first, at most limit.
	FindOverdueOrders(cutoff time.Time, limit int) ([]*Order, error)
}
