package memory

import (
	"context"
	"fmt"
	"sort"

	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"
)

type runner func(fn func(*state) error) error

type books struct{ run runner }

func (r *books) Create(_ context.Context, b *models.Book) error {
	if b.ISBN == "" {
		return fmt.Errorf("%w: isbn required", repository.ErrInvalidInput)
	}
	if !b.Price.IsPositive() {
		return fmt.Errorf("%w: book price should be positive", repository.ErrInvalidInput)
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", repository.ErrInvalidInput)
	}
	return r.run(func(s *state) error {
		for _, existing := range s.books {
			if existing.ISBN == b.ISBN {
				return fmt.Errorf("%w: isbn %s already exists", repository.ErrDuplicate, b.ISBN)
			}
		}
		s.nextBook++
		b.BookID = s.nextBook
		b.CreatedAt = now()
		b.UpdatedAt = b.CreatedAt
		s.books[b.BookID] = *b
		return nil
	})
}

func (r *books) GetByID(_ context.Context, id int64) (*models.Book, error) {
	var out models.Book
	err := r.run(func(s *state) error {
		b, ok := s.books[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *books) Update(_ context.Context, b *models.Book) error {
	if !b.Price.IsPositive() {
		return fmt.Errorf("%w: book price should be positive", repository.ErrInvalidInput)
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", repository.ErrInvalidInput)
	}
	return r.run(func(s *state) error {
		old, ok := s.books[b.BookID]
		if !ok {
			return repository.ErrNotFound
		}
		for id, existing := range s.books {
			if id != b.BookID && existing.ISBN == b.ISBN {
				return fmt.Errorf("%w: isbn %s already exists", repository.ErrDuplicate, b.ISBN)
			}
		}
		b.CreatedAt = old.CreatedAt
		b.UpdatedAt = now()
		s.books[b.BookID] = *b
		return nil
	})
}

func (r *books) Delete(_ context.Context, id int64) error {
	return r.run(func(s *state) error {
		if _, ok := s.books[id]; !ok {
			return repository.ErrNotFound
		}
		delete(s.books, id)

		for oid, o := range s.orders {
			for i := range o.Items {
				if o.Items[i].BookID != nil && *o.Items[i].BookID == id {
					o.Items[i].BookID = nil
				}
			}
			s.orders[oid] = o
		}

		kept := s.movements[:0]
		for _, m := range s.movements {
			if m.BookID != id {
				kept = append(kept, m)
			}
		}
		s.movements = kept
		return nil
	})
}

func (r *books) List(_ context.Context, filter models.BookFilter, page models.PageRequest) ([]models.Book, int64, error) {
	var out []models.Book
	var total int64
	err := r.run(func(s *state) error {
		var matched []models.Book
		for _, b := range s.books {
			switch {
			case filter.Genre != "":
				if b.Genre != filter.Genre {
					continue
				}
			case filter.Search != "":
				if !containsFold(b.Title, filter.Search) && !containsFold(b.Author, filter.Search) {
					continue
				}
			}
			matched = append(matched, b)
		}
		sortBooksByTitle(matched)
		total = int64(len(matched))
		out = append(out, paginate(matched, page)...)
		return nil
	})
	return out, total, err
}

func (r *books) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	var exists bool
	err := r.run(func(s *state) error {
		for _, b := range s.books {
			if b.ISBN == isbn {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *books) LockForOrder(_ context.Context, ids []int64) (map[int64]*models.Book, error) {
	out := make(map[int64]*models.Book, len(ids))
	err := r.run(func(s *state) error {
		for _, id := range ids {
			if b, ok := s.books[id]; ok {
				out[id] = &b
			}
		}
		return nil
	})
	return out, err
}

func (r *books) DecrementStock(_ context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", repository.ErrInvalidInput)
	}
	return r.run(func(s *state) error {
		b, ok := s.books[id]
		if !ok {
			return repository.ErrNotFound
		}
		if b.StockQuantity < quantity {
			return fmt.Errorf("%w: book %d", repository.ErrNotEnough, id)
		}
		b.StockQuantity -= quantity
		b.UpdatedAt = now()
		s.books[id] = b
		return nil
	})
}

type users struct{ run runner }

func (r *users) Create(_ context.Context, u *models.User) error {
	if u.Email == "" {
		return fmt.Errorf("%w: email required", repository.ErrInvalidInput)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: invalid role '%s'", repository.ErrInvalidInput, u.Role)
	}
	return r.run(func(s *state) error {
		for _, existing := range s.users {
			if existing.Email == u.Email {
				return fmt.Errorf("%w: email already exists", repository.ErrDuplicate)
			}
		}
		s.nextUser++
		u.UserID = s.nextUser
		u.CreatedAt = now()
		s.users[u.UserID] = *u
		return nil
	})
}

func (r *users) GetByID(_ context.Context, id int64) (*models.User, error) {
	var out models.User
	err := r.run(func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.run(func(s *state) error {
		for _, u := range s.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

type orders struct{ run runner }

func (r *orders) Create(_ context.Context, o *models.Order) error {
	if o == nil || o.UserID <= 0 {
		return fmt.Errorf("%w: user ID cannot be empty", repository.ErrInvalidInput)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order items cannot be empty", repository.ErrInvalidInput)
	}
	return r.run(func(s *state) error {
		if _, ok := s.users[o.UserID]; !ok {
			return repository.ErrNotFound
		}
		s.nextOrder++
		o.OrderID = s.nextOrder
		for i := range o.Items {
			s.nextItem++
			o.Items[i].OrderItemID = s.nextItem
			o.Items[i].OrderID = o.OrderID
		}
		s.orders[o.OrderID] = cloneOrder(*o)
		return nil
	})
}

func (r *orders) GetByID(_ context.Context, id int64) (*models.Order, error) {
	var out models.Order
	err := r.run(func(s *state) error {
		o, ok := s.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = withCustomer(s, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *orders) List(_ context.Context, page models.PageRequest) ([]models.Order, int64, error) {
	return r.list(func(models.Order) bool { return true }, page)
}

func (r *orders) ListByUser(_ context.Context, userID int64, page models.PageRequest) ([]models.Order, int64, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }, page)
}

func (r *orders) list(keep func(models.Order) bool, page models.PageRequest) ([]models.Order, int64, error) {
	var out []models.Order
	var total int64
	err := r.run(func(s *state) error {
		var matched []models.Order
		for _, o := range s.orders {
			if keep(o) {
				matched = append(matched, withCustomer(s, o))
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].OrderID < matched[j].OrderID })
		total = int64(len(matched))
		out = append(out, paginate(matched, page)...)
		return nil
	})
	return out, total, err
}

func (r *orders) UpdateStatus(_ context.Context, id int64, status models.OrderStatus) error {
	if _, ok := models.ParseOrderStatus(string(status)); !ok {
		return fmt.Errorf("%w: invalid status '%s'", repository.ErrInvalidInput, status)
	}
	return r.run(func(s *state) error {
		o, ok := s.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Status = status
		s.orders[id] = o
		return nil
	})
}

func withCustomer(s *state, o models.Order) models.Order {
	o = cloneOrder(o)
	if u, ok := s.users[o.UserID]; ok {
		o.CustomerName = u.Name
		o.CustomerEmail = u.Email
	}
	return o
}

type movements struct{ run runner }

func (r *movements) Create(_ context.Context, m *models.StockMovement) error {
	if m == nil || m.BookID <= 0 {
		return fmt.Errorf("%w: book ID must be positive", repository.ErrInvalidInput)
	}
	if m.ChangeQuant == 0 {
		return fmt.Errorf("%w: the change quantity cannot be 0", repository.ErrInvalidInput)
	}
	return r.run(func(s *state) error {
		s.nextMovement++
		m.MovementID = s.nextMovement
		m.CreatedAt = now()
		s.movements = append(s.movements, *m)
		return nil
	})
}

func (r *movements) GetByBookID(_ context.Context, bookID int64) ([]models.StockMovement, error) {
	var out []models.StockMovement
	err := r.run(func(s *state) error {
		for _, m := range s.movements {
			if m.BookID == bookID {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}
