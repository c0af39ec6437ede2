// Package auth verifies the bearer tokens issued by the identity provider.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fundhive/fundhive/internal/shared/authorization"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/config"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

const accessTokenType = "access token"

type Claims struct {
	UserID uint                   `json:"uid"`
	Role   authorization.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret           []byte
	issuer           string
	accessExpMinutes int
	clock            biztime.Clock
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	exp := cfg.AccessExpMinutes
	if exp <= 0 {
		exp = 15
	}
	return &JWTService{
		secret:           []byte(cfg.Secret),
		issuer:           cfg.Issuer,
		accessExpMinutes: exp,
		clock:            biztime.System,
	}
}

// WithClock overrides the clock used to stamp and check expiry.
func (s *JWTService) WithClock(c biztime.Clock) *JWTService {
	s.clock = c
	return s
}

// Generate signs an access token for userID. Production tokens come from the
// identity provider; this is used by tooling and tests.
func (s *JWTService) Generate(userID uint, role authorization.UserRole) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.accessExpMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewTokenExpiredError(accessTokenType)
		}
		return nil, apperrors.NewTokenInvalidError(accessTokenType, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewTokenInvalidError(accessTokenType)
	}
	if claims.UserID == 0 {
		return nil, apperrors.NewTokenInvalidError(accessTokenType, "token has no user id")
	}
	if claims.Role == "" {
		claims.Role = authorization.RoleUser
	}
	return claims, nil
}

// AccessExpMinutes returns the access token expiration time in minutes
func (s *JWTService) AccessExpMinutes() int {
	return s.accessExpMinutes
}
