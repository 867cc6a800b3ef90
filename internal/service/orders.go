package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderLineRequest struct {
	BookID   int64 `json:"bookId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderService struct {
	store repository.Store
	now   func() time.Time
}

func NewOrderService(store repository.Store) *OrderService {
	return &OrderService{store: store, now: time.Now}
}

func (s *OrderService) List(ctx context.Context, caller *auth.Identity, page models.PageRequest) (models.Page[models.Order], error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return models.Page[models.Order]{}, err
	}

	orders, total, err := s.store.Orders().List(ctx, page)
	if err != nil {
		return models.Page[models.Order]{}, fmt.Errorf("list orders: %w", err)
	}

	return models.NewPage(orders, page, total), nil
}

func (s *OrderService) ListMine(ctx context.Context, caller *auth.Identity, page models.PageRequest) (models.Page[models.Order], error) {
	if err := requireRole(caller, models.RoleCustomer); err != nil {
		return models.Page[models.Order]{}, err
	}

	user, err := s.resolveUser(ctx, caller)
	if err != nil {
		return models.Page[models.Order]{}, err
	}

	orders, total, err := s.store.Orders().ListByUser(ctx, user.UserID, page)
	if err != nil {
		return models.Page[models.Order]{}, fmt.Errorf("list orders of user %d: %w", user.UserID, err)
	}

	return models.NewPage(orders, page, total), nil
}

// Get returns the order to an admin or to its owner. A missing order is
// reported before ownership is considered.
func (s *OrderService) Get(ctx context.Context, caller *auth.Identity, id int64) (*models.Order, error) {
	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}

	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.HasRole(models.RoleAdmin) && order.CustomerEmail != caller.Email {
		return nil, fmt.Errorf("%w: order %d belongs to another customer", ErrForbidden, id)
	}

	return order, nil
}

// Create places an order for the caller. Every line is checked against live
// stock and decremented inside one transaction; any failing line aborts the
// whole order and leaves all stock untouched.
func (s *OrderService) Create(ctx context.Context, caller *auth.Identity, req CreateOrderRequest) (*models.Order, error) {
	if err := requireRole(caller, models.RoleCustomer); err != nil {
		return nil, err
	}
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	user, err := s.resolveUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:        user.UserID,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
		OrderDate:     s.now(),
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		books, err := tx.Books().LockForOrder(ctx, distinctBookIDs(req.Items))
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		total := decimal.Zero

		for _, line := range req.Items {
			book, ok := books[line.BookID]
			if !ok {
				return fmt.Errorf("%w: book %d", repository.ErrNotFound, line.BookID)
			}
			if book.StockQuantity < line.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, book.Title)
			}

			if err := tx.Books().DecrementStock(ctx, book.BookID, line.Quantity); err != nil {
				if errors.Is(err, repository.ErrNotEnough) {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, book.Title)
				}
				return err
			}
			book.StockQuantity -= line.Quantity

			subtotal := book.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			bookID := book.BookID
			items = append(items, models.OrderItem{
				BookID:    &bookID,
				BookTitle: book.Title,
				Quantity:  line.Quantity,
				UnitPrice: book.Price,
				Price:     subtotal,
			})
			total = total.Add(subtotal)
		}

		order.Items = items
		order.TotalAmount = total

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		for _, item := range order.Items {
			err := tx.Movements().Create(ctx, &models.StockMovement{
				BookID:       *item.BookID,
				OrderID:      &order.OrderID,
				MovementType: models.MovementOutgoing,
				ChangeQuant:  -item.Quantity,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.OrderID,
		"user_id", order.UserID,
		"items", len(order.Items),
		"total", order.TotalAmount.String(),
	)
	return order, nil
}

// UpdateStatus sets the order status from a case-insensitive status name.
// The payment status is left as is.
func (s *OrderService) UpdateStatus(ctx context.Context, caller *auth.Identity, id int64, name string) (*models.Order, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, ok := models.ParseOrderStatus(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, name)
	}

	if err := s.store.Orders().UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status updated", "order_id", id, "from", order.Status, "to", status)
	order.Status = status
	return order, nil
}

func (s *OrderService) resolveUser(ctx context.Context, caller *auth.Identity) (*models.User, error) {
	user, err := s.store.Users().GetByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPrincipal, caller.Email)
		}
		return nil, err
	}
	return user, nil
}

// distinctBookIDs returns the referenced book ids in ascending order so that
// concurrent orders lock rows in the same sequence.
func distinctBookIDs(lines []OrderLineRequest) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.BookID]; ok {
			continue
		}
		seen[l.BookID] = struct{}{}
		ids = append(ids, l.BookID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
