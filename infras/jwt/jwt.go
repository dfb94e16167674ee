// Package jwt issues and verifies the HS256 access/refresh pairs staff log in with.
// Each token type has its own secret, so a refresh token never passes as an access token.
package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guesthouse/config"
	"guesthouse/infras/otel"
	"guesthouse/shared/constant"
	"guesthouse/shared/principal"
	"guesthouse/shared/timezone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	bearerScheme = "Bearer"
	clockLeeway  = 30 * time.Second
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaim  = errors.New("invalid token claim")
	ErrMissingHeader = errors.New("authorization header is required")
	ErrInvalidScheme = errors.New("authorization header must use the Bearer scheme")
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	TokenID string    `json:"token_id"`
	Type    TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the request capability.
func (c *Claims) Principal() principal.Principal {
	return principal.Principal{
		UserID:  c.UserID,
		Email:   c.Email,
		Role:    c.Role,
		TokenID: c.TokenID,
		Source:  principal.SourceToken,
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type JWT interface {
	GenerateTokenPair(ctx context.Context, userID, email, role string) (*TokenPair, error)
	ValidateToken(ctx context.Context, tokenString string, tokenType TokenType) (*Claims, error)
}

type Service struct {
	config *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) JWT {
	return &Service{
		config: cfg,
		otel:   otel,
	}
}

func (s *Service) secret(tokenType TokenType) ([]byte, time.Duration, error) {
	switch tokenType {
	case AccessToken:
		return []byte(s.config.JWT.AccessSecret), time.Duration(s.config.JWT.AccessExpireMin) * time.Minute, nil
	case RefreshToken:
		return []byte(s.config.JWT.RefreshSecret), time.Duration(s.config.JWT.RefreshExpireMin) * time.Minute, nil
	default:
		return nil, 0, fmt.Errorf("unknown token type: %s", tokenType)
	}
}

func (s *Service) GenerateTokenPair(ctx context.Context, userID, email, role string) (_ *TokenPair, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelJWTScopeName, constant.OtelJWTScopeName+".GenerateTokenPair")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := timezone.Now()
	base := Claims{UserID: userID, Email: email, Role: role}

	access, err := s.sign(base, AccessToken, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.sign(base, RefreshToken, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	scope.SetAttribute("jwt.subject", userID)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    bearerScheme,
		ExpiresIn:    int64(s.config.JWT.AccessExpireMin) * int64(time.Minute/time.Second),
	}, nil
}

func (s *Service) sign(claims Claims, tokenType TokenType, now time.Time) (string, error) {
	secret, ttl, err := s.secret(tokenType)
	if err != nil {
		return "", err
	}

	claims.TokenID = uuid.NewString()
	claims.Type = tokenType
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        claims.TokenID,
		Issuer:    s.config.App.Name,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken checks signature, expiry, issuer and that the token is of tokenType.
func (s *Service) ValidateToken(ctx context.Context, tokenString string, tokenType TokenType) (_ *Claims, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelJWTScopeName, constant.OtelJWTScopeName+".ValidateToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	secret, _, err := s.secret(tokenType)
	if err != nil {
		return nil, err
	}

	var claims Claims

	_, err = jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.App.Name),
		jwt.WithLeeway(clockLeeway),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.Type != tokenType:
		return nil, ErrInvalidClaim
	}

	return &claims, nil
}

// ExtractTokenFromHeader returns the credentials of a "Bearer <token>" header.
// The scheme is matched case-insensitively.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrInvalidScheme
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidScheme
	}

	return token, nil
}
