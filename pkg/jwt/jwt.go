package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Config holds the settings for verifying access tokens issued by the hosted
// auth service.
type Config struct {
	Secret   string        `env:"AUTH_JWT_SECRET,required"`
	Audience string        `env:"AUTH_JWT_AUDIENCE" envDefault:"authenticated"`
	Issuer   string        `env:"AUTH_JWT_ISSUER"`
	Leeway   time.Duration `env:"AUTH_JWT_LEEWAY" envDefault:"30s"`
}

// Claims are the access token claims this service reads. Subject is the user ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	gojwt.RegisteredClaims
}

// Verifier validates HS256 access tokens.
type Verifier struct {
	key     []byte
	options []gojwt.ParserOption
}

// NewVerifier creates a Verifier. Returns ErrMissingSigningKey if no secret is configured.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Audience != "" {
		opts = append(opts, gojwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	return &Verifier{key: []byte(cfg.Secret), options: opts}, nil
}

// Verify parses token and validates its signature, expiry, audience and issuer.
// A token without a subject is rejected.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return v.key, nil
	}, v.options...)
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// Sign issues an HS256 token for claims. It is used by tests and local tooling;
// production tokens come from the auth service.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(v.key)
}
