package repository

import (
	"context"
	"errors"
	"fmt"

	"bookstore-service/internal/models"

	"github.com/jackc/pgx/v5"
)

type orderRepo struct {
	db querier
}

const orderColumns = `
	o.order_id,
	o.user_id,
	u.name,
	u.email,
	o.total_amount,
	o.status,
	o.payment_status,
	o.order_date`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.OrderID,
		&o.UserID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentStatus,
		&o.OrderDate,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists the order and its items. Callers run it inside
// Store.WithinTx so the order and items land together.
func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if order.UserID <= 0 {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order items cannot be empty", ErrInvalidInput)
	}

	insert := `INSERT INTO orders (
	user_id,
	total_amount,
	status,
	payment_status,
	order_date
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING order_id
	`

	err := r.db.QueryRow(ctx, insert,
		order.UserID,
		order.TotalAmount,
		order.Status,
		order.PaymentStatus,
		order.OrderDate,
	).Scan(&order.OrderID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	insertItem := `INSERT INTO order_items (order_id, book_id, book_title, quantity, unit_price, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_item_id
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.OrderID

		err := r.db.QueryRow(ctx, insertItem,
			item.OrderID,
			item.BookID,
			item.BookTitle,
			item.Quantity,
			item.UnitPrice,
			item.Price,
		).Scan(&item.OrderItemID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: order ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.user_id = o.user_id
		WHERE o.order_id = $1
	`

	order, err := scanOrder(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	orders := []models.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (r *orderRepo) List(ctx context.Context, page models.PageRequest) ([]models.Order, int64, error) {
	return r.list(ctx, "", nil, page)
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64, page models.PageRequest) ([]models.Order, int64, error) {
	if userID <= 0 {
		return nil, 0, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	return r.list(ctx, `WHERE o.user_id = $1`, []any{userID}, page)
}

func (r *orderRepo) list(ctx context.Context, where string, args []any, page models.PageRequest) ([]models.Order, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders o `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s
		FROM orders o
		JOIN users u ON u.user_id = o.user_id
		%s
		ORDER BY o.order_id
		LIMIT $%d OFFSET $%d`, orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan orders: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// attachItems loads the items of all given orders with a single query.
func (r *orderRepo) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
		index[o.OrderID] = i
	}

	sql := `SELECT
	order_item_id,
	order_id,
	book_id,
	book_title,
	quantity,
	unit_price,
	price
	FROM order_items
	WHERE order_id = ANY($1::bigint[])
	ORDER BY order_id, order_item_id
	`

	rows, err := r.db.Query(ctx, sql, ids)
	if err != nil {
		return fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.OrderItemID,
			&item.OrderID,
			&item.BookID,
			&item.BookTitle,
			&item.Quantity,
			&item.UnitPrice,
			&item.Price,
		)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}

	return nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if _, ok := models.ParseOrderStatus(string(status)); !ok {
		return fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, status)
	}

	sql := `UPDATE orders
		SET status = $1
		WHERE order_id = $2
		`

	result, err := r.db.Exec(ctx, sql, status, id)
	if err != nil {
		return fmt.Errorf("update status order %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
