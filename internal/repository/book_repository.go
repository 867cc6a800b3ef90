package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type bookRepo struct {
	db querier
}

const bookColumns = `
	book_id,
	title,
	author,
	genre,
	isbn,
	price,
	description,
	stock_quantity,
	image_url,
	created_at,
	updated_at`

func scanBook(row pgx.Row) (*models.Book, error) {
	var b models.Book
	err := row.Scan(
		&b.BookID,
		&b.Title,
		&b.Author,
		&b.Genre,
		&b.ISBN,
		&b.Price,
		&b.Description,
		&b.StockQuantity,
		&b.ImageURL,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookRepo) Create(ctx context.Context, b *models.Book) error {
	if b.ISBN == "" {
		return fmt.Errorf("%w: isbn required", ErrInvalidInput)
	}
	if !b.Price.IsPositive() {
		return fmt.Errorf("%w: book price should be positive", ErrInvalidInput)
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
	}

	sql := `
		INSERT INTO books (
			title,
			author,
			genre,
			isbn,
			price,
			description,
			stock_quantity,
			image_url,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING book_id
	`

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	err := r.db.QueryRow(ctx, sql,
		b.Title,
		b.Author,
		b.Genre,
		b.ISBN,
		b.Price,
		b.Description,
		b.StockQuantity,
		b.ImageURL,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.BookID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: isbn %s already exists", ErrDuplicate, b.ISBN)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *bookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	sql := `SELECT ` + bookColumns + ` FROM books WHERE book_id = $1`

	book, err := scanBook(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by id %d: %w", id, err)
	}

	return book, nil
}

func (r *bookRepo) Update(ctx context.Context, b *models.Book) error {
	if b.BookID <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	if !b.Price.IsPositive() {
		return fmt.Errorf("%w: book price should be positive", ErrInvalidInput)
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
	}

	sql := `
	UPDATE books
	SET
		title = $1,
		author = $2,
		genre = $3,
		isbn = $4,
		price = $5,
		description = $6,
		stock_quantity = $7,
		image_url = $8,
		updated_at = $9
	WHERE book_id = $10
	RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, sql,
		b.Title,
		b.Author,
		b.Genre,
		b.ISBN,
		b.Price,
		b.Description,
		b.StockQuantity,
		b.ImageURL,
		time.Now(),
		b.BookID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: isbn %s already exists", ErrDuplicate, b.ISBN)
		}
		return fmt.Errorf("failed to update book %d: %w", b.BookID, err)
	}

	return nil
}

func (r *bookRepo) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM books WHERE book_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *bookRepo) List(ctx context.Context, filter models.BookFilter, page models.PageRequest) ([]models.Book, int64, error) {
	var (
		where string
		args  []any
	)
	switch {
	case filter.Genre != "":
		where = `WHERE genre = $1`
		args = append(args, filter.Genre)
	case filter.Search != "":
		where = `WHERE title ILIKE $1 OR author ILIKE $1`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY title, book_id LIMIT $%d OFFSET $%d`,
		bookColumns, where, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan books: %w", err)
		}
		books = append(books, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return books, total, nil
}

func (r *bookRepo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check isbn %s: %w", isbn, err)
	}
	return exists, nil
}

func (r *bookRepo) LockForOrder(ctx context.Context, ids []int64) (map[int64]*models.Book, error) {
	sql := `SELECT ` + bookColumns + `
		FROM books WHERE book_id = ANY($1::bigint[])
		ORDER BY book_id
		FOR UPDATE`

	rows, err := r.db.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock books: %w", err)
	}
	defer rows.Close()

	books := make(map[int64]*models.Book, len(ids))
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book data: %w", err)
		}
		books[b.BookID] = b
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return books, nil
}

func (r *bookRepo) DecrementStock(ctx context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	sql := `UPDATE books SET
		stock_quantity = stock_quantity - $1,
		updated_at = $2
	WHERE book_id = $3 AND stock_quantity >= $1`

	result, err := r.db.Exec(ctx, sql, quantity, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update stock of book %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: book %d", ErrNotEnough, id)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
