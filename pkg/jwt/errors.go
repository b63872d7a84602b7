package jwt

import "errors"

var (
	ErrMissingToken      = errors.New("jwt: missing bearer token")
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrMissingSubject    = errors.New("jwt: token has no subject")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
)
