package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore-service/internal/models"

	"github.com/jackc/pgx/v5"
)

type userRepo struct {
	db querier
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.Email == "" {
		return fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("%w: invalid role '%s'", ErrInvalidInput, u.Role)
	}

	sql := `
		INSERT INTO users (
			name,
			email,
			password_hash,
			role,
			created_at
	) VALUES ($1, $2, $3, $4, $5)
	RETURNING user_id
	`

	u.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.CreatedAt,
	).Scan(&u.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already exists", ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	return r.getOne(ctx, `WHERE user_id = $1`, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
	}
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *userRepo) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	sql := `
		SELECT
		user_id,
		name,
		email,
		password_hash,
		role,
		created_at
		FROM users ` + where

	var u models.User

	err := r.db.QueryRow(ctx, sql, arg).Scan(
		&u.UserID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}
