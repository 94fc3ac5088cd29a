package enums

import "fmt"

// OrderStatus mirrors the backend's pedido status values.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pendente"
	OrderStatusInProgress OrderStatus = "em-andamento"
	OrderStatusDelivered  OrderStatus = "entregue"
	OrderStatusCanceled   OrderStatus = "cancelado"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// CanTransitionTo reports whether the linear status flow allows moving
// from o to next. Orders only move forward: pendente to em-andamento to
// entregue, or pendente to cancelado.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch o {
	case OrderStatusPending:
		return next == OrderStatusInProgress || next == OrderStatusCanceled
	case OrderStatusInProgress:
		return next == OrderStatusDelivered
	default:
		return false
	}
}
