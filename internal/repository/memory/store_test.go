package memory

import (
	"context"
	"errors"
	"testing"

	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBook(title, isbn string, stock int) *models.Book {
	return &models.Book{
		Title:         title,
		Author:        "Anon",
		Genre:         "Fiction",
		ISBN:          isbn,
		Price:         decimal.NewFromInt(10),
		StockQuantity: stock,
	}
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	book := newBook("A", "1", 5)
	require.NoError(t, s.Books().Create(ctx, book))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Books().DecrementStock(ctx, book.BookID, 3))
		require.NoError(t, tx.Books().Create(ctx, newBook("B", "2", 1)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Books().GetByID(ctx, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	exists, err := s.Books().ExistsByISBN(ctx, "2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_WithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	book := newBook("A", "1", 5)
	require.NoError(t, s.Books().Create(ctx, book))

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.Books().DecrementStock(ctx, book.BookID, 5)
		})
	})
	require.NoError(t, err)

	got, err := s.Books().GetByID(ctx, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
}

func TestBooks_DecrementStock(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	book := newBook("A", "1", 2)
	require.NoError(t, s.Books().Create(ctx, book))

	assert.ErrorIs(t, s.Books().DecrementStock(ctx, book.BookID, 3), repository.ErrNotEnough)
	assert.ErrorIs(t, s.Books().DecrementStock(ctx, 99, 1), repository.ErrNotFound)
	assert.ErrorIs(t, s.Books().DecrementStock(ctx, book.BookID, 0), repository.ErrInvalidInput)
	assert.NoError(t, s.Books().DecrementStock(ctx, book.BookID, 2))
}

func TestBooks_UniqueISBN(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	first := newBook("A", "1", 1)
	second := newBook("B", "2", 1)
	require.NoError(t, s.Books().Create(ctx, first))
	require.NoError(t, s.Books().Create(ctx, second))

	assert.ErrorIs(t, s.Books().Create(ctx, newBook("C", "1", 1)), repository.ErrDuplicate)

	second.ISBN = "1"
	assert.ErrorIs(t, s.Books().Update(ctx, second), repository.ErrDuplicate)
}

func TestBooks_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	book := newBook("A", "1", 5)
	require.NoError(t, s.Books().Create(ctx, book))

	got, err := s.Books().GetByID(ctx, book.BookID)
	require.NoError(t, err)
	got.StockQuantity = 0

	locked, err := s.Books().LockForOrder(ctx, []int64{book.BookID, 42})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, 5, locked[book.BookID].StockQuantity)
}

func TestOrders_ListByUserAndStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u := &models.User{Name: "U", Email: "u@shop.test", Role: models.RoleCustomer}
	require.NoError(t, s.Users().Create(ctx, u))
	other := &models.User{Name: "O", Email: "o@shop.test", Role: models.RoleCustomer}
	require.NoError(t, s.Users().Create(ctx, other))

	for _, uid := range []int64{u.UserID, other.UserID, u.UserID} {
		o := &models.Order{
			UserID:        uid,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			Items:         []models.OrderItem{{BookTitle: "A", Quantity: 1}},
		}
		require.NoError(t, s.Orders().Create(ctx, o))
	}

	mine, total, err := s.Orders().ListByUser(ctx, u.UserID, models.PageRequest{Page: 0, Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, mine, 1)
	assert.Equal(t, "u@shop.test", mine[0].CustomerEmail)

	require.NoError(t, s.Orders().UpdateStatus(ctx, mine[0].OrderID, models.OrderPaid))
	assert.ErrorIs(t, s.Orders().UpdateStatus(ctx, mine[0].OrderID, "LOST"), repository.ErrInvalidInput)
	assert.ErrorIs(t, s.Orders().UpdateStatus(ctx, 99, models.OrderPaid), repository.ErrNotFound)

	got, err := s.Orders().GetByID(ctx, mine[0].OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)
}

func TestUsers_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Users().Create(ctx, &models.User{Email: "a@shop.test", Role: models.RoleAdmin}))
	assert.ErrorIs(t, s.Users().Create(ctx, &models.User{Email: "a@shop.test", Role: models.RoleCustomer}), repository.ErrDuplicate)
	assert.ErrorIs(t, s.Users().Create(ctx, &models.User{Email: "b@shop.test", Role: "GUEST"}), repository.ErrInvalidInput)

	_, err := s.Users().GetByEmail(ctx, "missing@shop.test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
