package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	BookID        int64           `json:"book_id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Genre         string          `json:"genre"`
	ISBN          string          `json:"isbn"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BookFilter selects books for a catalog listing. Genre wins over Search
// when both are set.
type BookFilter struct {
	Search string
	Genre  string
}

type MovementType string

const (
	MovementOutgoing   MovementType = "outgoing"
	MovementAdjustment MovementType = "adjustment"
)

// StockMovement is one entry of the append-only stock ledger.
type StockMovement struct {
	MovementID   int64        `json:"movement_id"`
	BookID       int64        `json:"book_id"`
	OrderID      *int64       `json:"order_id,omitempty"`
	MovementType MovementType `json:"movement_type"`
	ChangeQuant  int          `json:"change_quant"`
	CreatedAt    time.Time    `json:"created_at"`
}
