package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	db   querier
	pool *pgxpool.Pool // nil when db is a transaction
}

func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{db: pool, pool: pool}
}

func (s *pgStore) Books() BookRepository         { return &bookRepo{db: s.db} }
func (s *pgStore) Users() UserRepository         { return &userRepo{db: s.db} }
func (s *pgStore) Orders() OrderRepository       { return &orderRepo{db: s.db} }
func (s *pgStore) Movements() MovementRepository { return &movementRepo{db: s.db} }

func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}
