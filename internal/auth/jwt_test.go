package auth

import (
	"context"
	"testing"
	"time"

	"bookstore-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef", "bookstore", time.Hour)

	token, expiresAt, err := issuer.Generate("alice@shop.test", models.RoleCustomer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{Email: "alice@shop.test", Role: models.RoleCustomer}, identity)
}

func TestTokenIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef", "bookstore", time.Hour)

	other := NewTokenIssuer("fedcba9876543210", "bookstore", time.Hour)
	foreign, _, err := other.Generate("alice@shop.test", models.RoleAdmin)
	require.NoError(t, err)
	_, err = issuer.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokenIssuer("0123456789abcdef", "someone-else", time.Hour)
	token, _, err := wrongIssuer.Generate("alice@shop.test", models.RoleAdmin)
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("0123456789abcdef", "bookstore", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err = expired.Generate("alice@shop.test", models.RoleAdmin)
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFrom(ctx))

	id := &Identity{Email: "a@b.c", Role: models.RoleAdmin}
	got := IdentityFrom(WithIdentity(ctx, id))
	assert.Same(t, id, got)
	assert.True(t, got.HasRole(models.RoleAdmin))
	assert.False(t, got.HasRole(models.RoleCustomer))

	var anonymous *Identity
	assert.False(t, anonymous.HasRole(models.RoleAdmin))
}
