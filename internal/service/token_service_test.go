package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendbot/internal/config"
	"spendbot/internal/domain"
)

func newTestTokenService() *tokenService {
	return NewTokenService(config.AuthConfig{Secret: "test-secret", Issuer: "spendbot"}).(*tokenService)
}

func TestTokenService_IssueValidate(t *testing.T) {
	svc := newTestTokenService()

	tok, err := svc.Issue("mail-gateway", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "mail-gateway", claims.Subject)
	assert.Equal(t, "spendbot", claims.Issuer)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestTokenService()
	tok, err := svc.Issue("mail-gateway", time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_WrongSecret(t *testing.T) {
	tok, err := NewTokenService(config.AuthConfig{Secret: "other", Issuer: "spendbot"}).Issue("x", time.Hour)
	require.NoError(t, err)

	_, err = newTestTokenService().Validate(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_WrongAudience(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    "spendbot",
		Audience:  jwt.ClaimStrings{"access"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestTokenService().Validate(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RejectsNone(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:   "spendbot",
		Audience: jwt.ClaimStrings{serviceAudience},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokenService().Validate(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
