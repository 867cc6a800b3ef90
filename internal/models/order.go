package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var orderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// ParseOrderStatus matches name against the known statuses ignoring case.
func ParseOrderStatus(name string) (OrderStatus, bool) {
	for _, s := range orderStatuses {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Order struct {
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	OrderDate     time.Time       `json:"order_date"`
}

// OrderItem freezes the book title and unit price at the time the order was
// placed. BookID is nil once the book has been removed from the catalog.
type OrderItem struct {
	OrderItemID int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	BookID      *int64          `json:"book_id"`
	BookTitle   string          `json:"book_title"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Price       decimal.Decimal `json:"price"`
}
