package service

import (
	"context"
	"testing"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	admin = &auth.Identity{Email: "admin@shop.test", Role: models.RoleAdmin}
	alice = &auth.Identity{Email: "alice@shop.test", Role: models.RoleCustomer}
	bob   = &auth.Identity{Email: "bob@shop.test", Role: models.RoleCustomer}
)

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	for _, u := range []models.User{
		{Name: "Admin", Email: admin.Email, PasswordHash: "x", Role: models.RoleAdmin},
		{Name: "Alice", Email: alice.Email, PasswordHash: "x", Role: models.RoleCustomer},
		{Name: "Bob", Email: bob.Email, PasswordHash: "x", Role: models.RoleCustomer},
	} {
		require.NoError(t, store.Users().Create(context.Background(), &u))
	}
	return store
}

func seedBook(t *testing.T, store *memory.Store, title, genre, isbn, price string, stock int) *models.Book {
	t.Helper()

	b := &models.Book{
		Title:         title,
		Author:        "Author of " + title,
		Genre:         genre,
		ISBN:          isbn,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	require.NoError(t, store.Books().Create(context.Background(), b))
	return b
}

func bookRequest(title, isbn, price string, stock int) BookRequest {
	p := decimal.RequireFromString(price)
	return BookRequest{
		Title:         title,
		Author:        "Jane Doe",
		Genre:         "Fiction",
		ISBN:          isbn,
		Price:         &p,
		StockQuantity: &stock,
	}
}

func stockOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()

	b, err := store.Books().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b.StockQuantity
}
