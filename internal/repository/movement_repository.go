package repository

import (
	"context"
	"fmt"
	"time"

	"bookstore-service/internal/models"
)

type movementRepo struct {
	db querier
}

func (r *movementRepo) Create(ctx context.Context, m *models.StockMovement) error {
	if m == nil {
		return fmt.Errorf("%w: movement cannot be nil", ErrInvalidInput)
	}
	if m.BookID <= 0 {
		return fmt.Errorf("%w: book ID must be positive", ErrInvalidInput)
	}
	if m.ChangeQuant == 0 {
		return fmt.Errorf("%w: the change quantity cannot be 0", ErrInvalidInput)
	}
	switch m.MovementType {
	case models.MovementOutgoing, models.MovementAdjustment:
	default:
		return fmt.Errorf("%w: invalid movement type '%s'", ErrInvalidInput, m.MovementType)
	}

	sql := ` INSERT INTO stock_movements (
		book_id,
		order_id,
		movement_type,
		change_quant,
		created_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING movement_id
	`

	m.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		m.BookID,
		m.OrderID,
		m.MovementType,
		m.ChangeQuant,
		m.CreatedAt,
	).Scan(&m.MovementID)
	if err != nil {
		return fmt.Errorf("failed to create stock movement: %w", err)
	}
	return nil
}

func (r *movementRepo) GetByBookID(ctx context.Context, bookID int64) ([]models.StockMovement, error) {
	if bookID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT
		movement_id,
		book_id,
		order_id,
		movement_type,
		change_quant,
		created_at
		FROM stock_movements
		WHERE book_id = $1
		ORDER BY movement_id
		`
	rows, err := r.db.Query(ctx, sql, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements by book ID %d: %w", bookID, err)
	}
	defer rows.Close()

	var movements []models.StockMovement

	for rows.Next() {
		var m models.StockMovement

		err := rows.Scan(&m.MovementID,
			&m.BookID,
			&m.OrderID,
			&m.MovementType,
			&m.ChangeQuant,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movements by book ID: %w", err)
		}

		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return movements, nil
}
