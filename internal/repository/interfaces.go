package repository

import (
	"context"

	"bookstore-service/internal/models"
)

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.BookFilter, page models.PageRequest) ([]models.Book, int64, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)

	// LockForOrder returns the requested books keyed by id, locked until the
	// surrounding transaction ends. Unknown ids are absent from the map.
	LockForOrder(ctx context.Context, ids []int64) (map[int64]*models.Book, error)
	// DecrementStock removes quantity from stock only if enough is available,
	// returning ErrNotEnough otherwise.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Order, int64, error)
	ListByUser(ctx context.Context, userID int64, page models.PageRequest) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

type MovementRepository interface {
	Create(ctx context.Context, movement *models.StockMovement) error
	GetByBookID(ctx context.Context, bookID int64) ([]models.StockMovement, error)
}

// Store groups the repositories of one persistence engine. Repositories
// returned by the Store passed to a WithinTx callback share that
// transaction; the transaction commits when fn returns nil.
type Store interface {
	Books() BookRepository
	Users() UserRepository
	Orders() OrderRepository
	Movements() MovementRepository

	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
