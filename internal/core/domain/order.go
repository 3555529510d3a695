package domain

import "github.com/google/uuid"

// OrderStatus mirrors the order-management subsystem's states that matter to
// settlement. The full order lifecycle lives outside this service.
type OrderStatus string

const (
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is a read-only snapshot supplied by the order subsystem when it
// triggers settlement. This service never mutates orders.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	CustomerID  uuid.UUID   `json:"customer_id"`
	VendorID    uuid.UUID   `json:"vendor_id"`
	DriverID    uuid.UUID   `json:"driver_id"`
	Status      OrderStatus `json:"status"`
	TotalAmount int64       `json:"total_amount"` // centavos
}

// IsDelivered reports whether the order is eligible for settlement.
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}
