package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"spendbot/internal/config"
	"spendbot/internal/domain"
)

const serviceAudience = "service"

// ServiceClaims identifies a trusted caller of the HTTP API, such as a mail-in gateway.
type ServiceClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 service tokens.
type TokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Validate(tokenString string) (*ServiceClaims, error)
}

type tokenService struct {
	cfg config.AuthConfig
	now func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg config.AuthConfig) TokenService {
	return &tokenService{cfg: cfg, now: time.Now}
}

func (s *tokenService) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &ServiceClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.New().String(),
		Audience:  jwt.ClaimStrings{serviceAudience},
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing service token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Validate(tokenString string) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithAudience(serviceAudience),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
