package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"

	"github.com/shopspring/decimal"
)

// BookRequest carries every writable book field; updates replace the whole
// record with it.
type BookRequest struct {
	Title         string           `json:"title" validate:"required,max=255"`
	Author        string           `json:"author" validate:"required,max=255"`
	Genre         string           `json:"genre" validate:"required,max=100"`
	ISBN          string           `json:"isbn" validate:"required,max=32"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	Description   string           `json:"description"`
	StockQuantity *int             `json:"stockQuantity" validate:"required,gte=0"`
	ImageURL      string           `json:"imageUrl" validate:"omitempty,url"`
}

func (r *BookRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Genre = strings.TrimSpace(r.Genre)
	r.ISBN = strings.TrimSpace(r.ISBN)
	if r.Price != nil {
		p := r.Price.Round(2)
		r.Price = &p
	}
}

func (r *BookRequest) validate() error {
	r.normalize()
	if err := validateStruct(r); err != nil {
		return err
	}
	if !r.Price.IsPositive() {
		return fieldError("price", "must be greater than 0")
	}
	return nil
}

func (r *BookRequest) apply(b *models.Book) {
	b.Title = r.Title
	b.Author = r.Author
	b.Genre = r.Genre
	b.ISBN = r.ISBN
	b.Price = *r.Price
	b.Description = r.Description
	b.StockQuantity = *r.StockQuantity
	b.ImageURL = r.ImageURL
}

type ListBooksQuery struct {
	Page   models.PageRequest
	Search string
	Genre  string
}

type CatalogService struct {
	store repository.Store
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

// List returns a title-ordered page of books. A non-empty genre selects by
// genre and ignores search entirely.
func (s *CatalogService) List(ctx context.Context, q ListBooksQuery) (models.Page[models.Book], error) {
	filter := models.BookFilter{Genre: strings.TrimSpace(q.Genre)}
	if filter.Genre == "" {
		filter.Search = strings.TrimSpace(q.Search)
	}

	books, total, err := s.store.Books().List(ctx, filter, q.Page)
	if err != nil {
		return models.Page[models.Book]{}, fmt.Errorf("list books: %w", err)
	}

	return models.NewPage(books, q.Page, total), nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Book, error) {
	return s.store.Books().GetByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, caller *auth.Identity, req BookRequest) (*models.Book, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.Books().ExistsByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: isbn %s already exists", repository.ErrDuplicate, req.ISBN)
	}

	var book models.Book
	req.apply(&book)

	if err := s.store.Books().Create(ctx, &book); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "book created", "book_id", book.BookID, "isbn", book.ISBN, "by", caller.Email)
	return &book, nil
}

// Update overwrites every field of the book. A stock change is recorded as
// an adjustment movement in the same transaction.
func (s *CatalogService) Update(ctx context.Context, caller *auth.Identity, id int64, req BookRequest) (*models.Book, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	var book *models.Book
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Books().GetByID(ctx, id)
		if err != nil {
			return err
		}
		previousStock := current.StockQuantity

		req.apply(current)
		if err := tx.Books().Update(ctx, current); err != nil {
			return err
		}

		if delta := current.StockQuantity - previousStock; delta != 0 {
			err := tx.Movements().Create(ctx, &models.StockMovement{
				BookID:       id,
				MovementType: models.MovementAdjustment,
				ChangeQuant:  delta,
			})
			if err != nil {
				return err
			}
		}

		book = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "book updated", "book_id", id, "by", caller.Email)
	return book, nil
}

func (s *CatalogService) Delete(ctx context.Context, caller *auth.Identity, id int64) error {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return err
	}

	if err := s.store.Books().Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "book deleted", "book_id", id, "by", caller.Email)
	return nil
}

// Movements returns the stock ledger of a book, oldest first.
func (s *CatalogService) Movements(ctx context.Context, caller *auth.Identity, id int64) ([]models.StockMovement, error) {
	if err := requireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}

	if _, err := s.store.Books().GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.store.Movements().GetByBookID(ctx, id)
}
