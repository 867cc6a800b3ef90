package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"
)

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInsufficientStock  = errors.New("insufficient stock for book")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnknownPrincipal means an authenticated caller has no user record.
	ErrUnknownPrincipal = errors.New("authenticated principal has no user record")
)

// ValidationError reports rejected request fields keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("%s: %s", repository.ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return repository.ErrInvalidInput
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// requireRole is the role gate run at the top of every restricted operation.
func requireRole(id *auth.Identity, roles ...models.Role) error {
	if id == nil {
		return ErrUnauthorized
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: requires role %v", ErrForbidden, roles)
}

func requireAuthenticated(id *auth.Identity) error {
	if id == nil {
		return ErrUnauthorized
	}
	return nil
}
