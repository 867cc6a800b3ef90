package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderOf(lines ...OrderLineRequest) CreateOrderRequest {
	return CreateOrderRequest{Items: lines}
}

func line(bookID int64, qty int) OrderLineRequest {
	return OrderLineRequest{BookID: bookID, Quantity: qty}
}

func TestOrderService_CreateDecrementsStockAndTotals(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	fixed := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	dune := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)
	emma := seedBook(t, store, "Emma", "Fiction", "2", "4.50", 10)

	order, err := svc.Create(ctx, alice, orderOf(line(dune.BookID, 3), line(emma.BookID, 2)))
	require.NoError(t, err)

	assert.Equal(t, 2, stockOf(t, store, dune.BookID))
	assert.Equal(t, 8, stockOf(t, store, emma.BookID))

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Dune", order.Items[0].BookTitle)
	assert.Equal(t, "29.97", order.Items[0].Price.String())
	assert.Equal(t, "9.99", order.Items[0].UnitPrice.String())
	assert.Equal(t, "9", order.Items[1].Price.String())
	assert.Equal(t, "38.97", order.TotalAmount.String())

	sum := order.Items[0].Price.Add(order.Items[1].Price)
	assert.True(t, sum.Equal(order.TotalAmount))

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, fixed, order.OrderDate)
	assert.Equal(t, "Alice", order.CustomerName)
	assert.Equal(t, alice.Email, order.CustomerEmail)

	stored, err := svc.Get(ctx, alice, order.OrderID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(order.TotalAmount))
	assert.Len(t, stored.Items, 2)

	movements, err := store.Movements().GetByBookID(ctx, dune.BookID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementOutgoing, movements[0].MovementType)
	assert.Equal(t, -3, movements[0].ChangeQuant)
	require.NotNil(t, movements[0].OrderID)
	assert.Equal(t, order.OrderID, *movements[0].OrderID)
}

func TestOrderService_CreateInsufficientStockFirstLine(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 2)

	_, err := svc.Create(context.Background(), alice, orderOf(line(book.BookID, 5)))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Dune")
	assert.Equal(t, 2, stockOf(t, store, book.BookID))
}

func TestOrderService_CreateRollsBackEarlierLines(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	dune := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)
	emma := seedBook(t, store, "Emma", "Fiction", "2", "4.50", 1)

	_, err := svc.Create(ctx, alice, orderOf(line(dune.BookID, 3), line(emma.BookID, 4)))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Emma")

	assert.Equal(t, 5, stockOf(t, store, dune.BookID))
	assert.Equal(t, 1, stockOf(t, store, emma.BookID))

	orders, total, err := store.Orders().List(ctx, models.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Zero(t, total)

	movements, err := store.Movements().GetByBookID(ctx, dune.BookID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestOrderService_CreateUnknownBookAbortsOrder(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)
	dune := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	_, err := svc.Create(context.Background(), alice, orderOf(line(dune.BookID, 1), line(404, 1)))
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 5, stockOf(t, store, dune.BookID))
}

func TestOrderService_CreateRepeatedBookCountsCumulatively(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)
	dune := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 4)

	_, err := svc.Create(context.Background(), alice, orderOf(line(dune.BookID, 3), line(dune.BookID, 2)))
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 4, stockOf(t, store, dune.BookID))

	_, err = svc.Create(context.Background(), alice, orderOf(line(dune.BookID, 2), line(dune.BookID, 2)))
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, store, dune.BookID))
}

func TestOrderService_CreateConcurrentOrdersNeverOversell(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(context.Background(), alice, orderOf(line(book.BookID, 1))); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, stockOf(t, store, book.BookID))
}

func TestOrderService_CreateValidationAndRoles(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	_, err := svc.Create(ctx, admin, orderOf(line(book.BookID, 1)))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, nil, orderOf(line(book.BookID, 1)))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Create(ctx, alice, orderOf())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")

	_, err = svc.Create(ctx, alice, orderOf(line(book.BookID, 0)))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[0].quantity")

	assert.Equal(t, 5, stockOf(t, store, book.BookID))
}

func TestOrderService_CreateWithoutUserRecord(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	ghost := *alice
	ghost.Email = "ghost@shop.test"

	_, err := svc.Create(context.Background(), &ghost, orderOf(line(book.BookID, 1)))
	require.ErrorIs(t, err, ErrUnknownPrincipal)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestOrderService_GetAccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	order, err := svc.Create(ctx, alice, orderOf(line(book.BookID, 1)))
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, order.OrderID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(ctx, admin, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, got.OrderID)

	_, err = svc.Get(ctx, bob, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Get(ctx, nil, order.OrderID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestOrderService_Lists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 10)

	_, err := svc.Create(ctx, alice, orderOf(line(book.BookID, 1)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, orderOf(line(book.BookID, 1)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice, orderOf(line(book.BookID, 2)))
	require.NoError(t, err)

	page := models.PageRequest{Page: 0, Size: 10}

	all, err := svc.List(ctx, admin, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalElements)

	mine, err := svc.ListMine(ctx, alice, page)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.TotalElements)
	for _, o := range mine.Content {
		assert.Equal(t, alice.Email, o.CustomerEmail)
	}

	_, err = svc.List(ctx, alice, page)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListMine(ctx, admin, page)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 10)

	first, err := svc.Create(ctx, alice, orderOf(line(book.BookID, 1)))
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice, orderOf(line(book.BookID, 1)))
	require.NoError(t, err)

	lower, err := svc.UpdateStatus(ctx, admin, first.OrderID, "shipped")
	require.NoError(t, err)
	upper, err := svc.UpdateStatus(ctx, admin, second.OrderID, "SHIPPED")
	require.NoError(t, err)

	assert.Equal(t, models.OrderShipped, lower.Status)
	assert.Equal(t, lower.Status, upper.Status)
	assert.Equal(t, models.PaymentPending, lower.PaymentStatus)

	stored, err := svc.Get(ctx, admin, first.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, stored.Status)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)

	_, err = svc.UpdateStatus(ctx, admin, first.OrderID, "lost-in-transit")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, admin, 999, "paid")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.UpdateStatus(ctx, alice, first.OrderID, "paid")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_CancellingDoesNotRestoreStock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewOrderService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	order, err := svc.Create(ctx, alice, orderOf(line(book.BookID, 2)))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, admin, order.OrderID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 3, stockOf(t, store, book.BookID))
}

func TestOrderService_ItemPricesAreFrozen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	orders := NewOrderService(store)
	catalog := NewCatalogService(store)
	book := seedBook(t, store, "Dune", "Fiction", "1", "9.99", 5)

	order, err := orders.Create(ctx, alice, orderOf(line(book.BookID, 2)))
	require.NoError(t, err)

	_, err = catalog.Update(ctx, admin, book.BookID, bookRequest("Dune", "1", "20.00", 3))
	require.NoError(t, err)

	stored, err := orders.Get(ctx, alice, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "9.99", stored.Items[0].UnitPrice.String())
	assert.Equal(t, "19.98", stored.Items[0].Price.String())

	require.NoError(t, catalog.Delete(ctx, admin, book.BookID))

	stored, err = orders.Get(ctx, alice, order.OrderID)
	require.NoError(t, err)
	assert.Nil(t, stored.Items[0].BookID)
	assert.Equal(t, "Dune", stored.Items[0].BookTitle)
}
