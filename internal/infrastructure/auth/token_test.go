package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(config.AuthConfig{
		Enabled:  true,
		Secret:   "test-secret-key-at-least-32-chars",
		Issuer:   "test-issuer",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(config.AuthConfig{Enabled: true, Issuer: "test-issuer"})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestTokenService(t)

	token, expiresAt, err := svc.Issue("scheduler-ops", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "scheduler-ops", claims.Subject)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, expiresAt, claims.GetExpiresAtTime(), time.Second)
}

func TestTokenService_IssueCustomTTL(t *testing.T) {
	svc := newTestTokenService(t)

	_, expiresAt, err := svc.Issue("ops", 5*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)
}

func TestTokenService_IssueRequiresSubject(t *testing.T) {
	svc := newTestTokenService(t)

	_, _, err := svc.Issue("   ", 0)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestTokenService_ValidateExpired(t *testing.T) {
	svc := newTestTokenService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue("ops", 0)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_ValidateNotYetValid(t *testing.T) {
	svc := newTestTokenService(t)
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	token, _, err := svc.Issue("ops", 0)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestTokenService_ValidateRejectsForeignTokens(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := NewTokenService(config.AuthConfig{
		Secret:   "another-secret-key-at-least-32-chars",
		Issuer:   "test-issuer",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)
	wrongSecret, _, err := other.Issue("ops", 0)
	require.NoError(t, err)

	otherIssuer, err := NewTokenService(config.AuthConfig{
		Secret:   "test-secret-key-at-least-32-chars",
		Issuer:   "someone-else",
		TokenTTL: time.Hour,
	})
	require.NoError(t, err)
	wrongIssuer, _, err := otherIssuer.Issue("ops", 0)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   "ops",
			Audience:  jwt.ClaimStrings{"test-issuer"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "test-issuer",
			Subject:  "ops",
			Audience: jwt.ClaimStrings{"test-issuer"},
		},
	}).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", wrongSecret},
		{"wrong issuer", wrongIssuer},
		{"other algorithm", hs512},
		{"no expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_ValidateRequiresSubject(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-issuer"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key-at-least-32-chars"))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrMissingSubject)
}
