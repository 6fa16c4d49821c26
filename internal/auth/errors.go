package auth

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no usable identity.
	// Callers never learn the underlying reason.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the identity may not act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrMalformedToken is returned when a token cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidSignature is returned when the token signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)
