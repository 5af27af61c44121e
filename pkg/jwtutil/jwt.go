package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rbac-service/pkg/config"
)

// AccessClaims is the payload of an issued token: the user name as subject,
// the granted permission names as scopes and the standard expiry.
type AccessClaims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// JWTUtil signs and verifies access tokens. The signing key, algorithm and
// expiration are fixed at construction; the algorithm also serves as the
// allow-list during verification so a token cannot pick its own method.
type JWTUtil struct {
	signingKey []byte
	method     jwt.SigningMethod
	expiration time.Duration
}

// New creates a JWT utility from the given configuration.
func New(cfg *config.JWTConfig) (*JWTUtil, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("jwtutil: signing key must not be empty")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("jwtutil: unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwtutil: algorithm %q is not an HMAC method", cfg.Algorithm)
	}
	return &JWTUtil{
		signingKey: []byte(cfg.SigningKey),
		method:     method,
		expiration: time.Duration(cfg.ExpirationMinutes) * time.Minute,
	}, nil
}

// GenerateToken creates a signed token for the given subject and scopes.
func (j *JWTUtil) GenerateToken(subject string, scopes []string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.signingKey)
}

// ValidateToken verifies the signature and expiry of the token and returns
// its claims. Any decode failure is returned as-is; callers translate it
// into their own error taxonomy.
func (j *JWTUtil) ValidateToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&AccessClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{j.method.Alg()}),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
