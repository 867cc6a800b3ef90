package handlers

import (
	"time"

	"bookstore-service/internal/models"
)

// orderDateLayout is ISO-8601 local date-time without a zone offset.
const orderDateLayout = "2006-01-02T15:04:05"

type BookResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	ISBN          string  `json:"isbn"`
	Price         float64 `json:"price"`
	Description   string  `json:"description"`
	StockQuantity int     `json:"stockQuantity"`
	ImageURL      string  `json:"imageUrl"`
}

type BookSummaryResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	Genre    string  `json:"genre"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

type MovementResponse struct {
	ID             int64     `json:"id"`
	BookID         int64     `json:"bookId"`
	OrderID        *int64    `json:"orderId,omitempty"`
	MovementType   string    `json:"movementType"`
	ChangeQuantity int       `json:"changeQuantity"`
	CreatedAt      time.Time `json:"createdAt"`
}

type OrderItemResponse struct {
	BookTitle string  `json:"bookTitle"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderResponse struct {
	ID            int64               `json:"id"`
	CustomerName  string              `json:"customerName"`
	CustomerEmail string              `json:"customerEmail"`
	Items         []OrderItemResponse `json:"items"`
	TotalAmount   float64             `json:"totalAmount"`
	OrderStatus   string              `json:"orderStatus"`
	PaymentStatus string              `json:"paymentStatus"`
	OrderDate     string              `json:"orderDate"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toBookResponse(b *models.Book) BookResponse {
	return BookResponse{
		ID:            b.BookID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		ISBN:          b.ISBN,
		Price:         b.Price.InexactFloat64(),
		Description:   b.Description,
		StockQuantity: b.StockQuantity,
		ImageURL:      b.ImageURL,
	}
}

func toBookSummary(b models.Book) BookSummaryResponse {
	return BookSummaryResponse{
		ID:       b.BookID,
		Title:    b.Title,
		Author:   b.Author,
		Genre:    b.Genre,
		Price:    b.Price.InexactFloat64(),
		ImageURL: b.ImageURL,
	}
}

func toMovementResponse(m models.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.MovementID,
		BookID:         m.BookID,
		OrderID:        m.OrderID,
		MovementType:   string(m.MovementType),
		ChangeQuantity: m.ChangeQuant,
		CreatedAt:      m.CreatedAt,
	}
}

func toOrderResponse(o models.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			BookTitle: it.BookTitle,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice.InexactFloat64(),
			Subtotal:  it.Price.InexactFloat64(),
		}
	}

	return OrderResponse{
		ID:            o.OrderID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         items,
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		OrderStatus:   string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		OrderDate:     o.OrderDate.In(time.Local).Format(orderDateLayout),
	}
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:    u.UserID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
