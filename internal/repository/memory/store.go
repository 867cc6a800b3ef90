// Package memory is an in-process implementation of repository.Store.
//
// All data lives in a single state value guarded by a mutex. Transactions
// hold the mutex for their whole duration, work on a copy of the state and
// swap it in on success, so a failed transaction leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"
)

type state struct {
	books     map[int64]models.Book
	users     map[int64]models.User
	orders    map[int64]models.Order
	movements []models.StockMovement

	nextBook, nextUser, nextOrder, nextItem, nextMovement int64
}

func newState() *state {
	return &state{
		books:  make(map[int64]models.Book),
		users:  make(map[int64]models.User),
		orders: make(map[int64]models.Order),
	}
}

func (s *state) clone() *state {
	c := *s
	c.books = make(map[int64]models.Book, len(s.books))
	for k, v := range s.books {
		c.books[k] = v
	}
	c.users = make(map[int64]models.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.orders = make(map[int64]models.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	c.movements = append([]models.StockMovement(nil), s.movements...)
	return &c
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// run executes fn against the shared state under the store lock.
func (s *Store) run(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) Books() repository.BookRepository         { return &books{run: s.run} }
func (s *Store) Users() repository.UserRepository         { return &users{run: s.run} }
func (s *Store) Orders() repository.OrderRepository       { return &orders{run: s.run} }
func (s *Store) Movements() repository.MovementRepository { return &movements{run: s.run} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&txStore{data: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// txStore works on a private copy of the state; the owning Store already
// holds the lock.
type txStore struct {
	data *state
}

func (t *txStore) run(fn func(*state) error) error { return fn(t.data) }

func (t *txStore) Books() repository.BookRepository         { return &books{run: t.run} }
func (t *txStore) Users() repository.UserRepository         { return &users{run: t.run} }
func (t *txStore) Orders() repository.OrderRepository       { return &orders{run: t.run} }
func (t *txStore) Movements() repository.MovementRepository { return &movements{run: t.run} }

func (t *txStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func (t *txStore) Ping(context.Context) error { return nil }

func paginate[T any](items []T, page models.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) || start < 0 {
		return nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortBooksByTitle(list []models.Book) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Title != list[j].Title {
			return list[i].Title < list[j].Title
		}
		return list[i].BookID < list[j].BookID
	})
}

func now() time.Time { return time.Now() }
