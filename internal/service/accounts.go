package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type AccountService struct {
	store      repository.Store
	tokens     *auth.TokenIssuer
	bcryptCost int
}

func NewAccountService(store repository.Store, tokens *auth.TokenIssuer, bcryptCost int) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "customer registered", "user_id", user.UserID)
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, expiresAt, err := s.tokens.Generate(user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// EnsureAdmin creates the bootstrap administrator unless a user with that
// email already exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)

	_, err := s.store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	user, err := s.createUser(ctx, name, email, password, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}

	slog.InfoContext(ctx, "admin user created", "user_id", user.UserID, "email", user.Email)
	return nil
}

func (s *AccountService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
