package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum HMAC secret size accepted by NewTokenCodec.
const MinSecretLength = 32

// Claims is the payload of an identity token.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec issues and validates HS256 identity tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec constructs a codec signing with secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

// Issue returns a signed token for identityID expiring at issuedAt+ttl.
// Identical inputs produce identical tokens for a given secret.
func (c *TokenCodec) Issue(identityID string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if identityID == "" {
		return "", errors.New("identity id is required")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate returns the identity id carried by token.
//
// The signature over header.payload is verified before anything in the
// payload is decoded, so a tampered token is reported as ErrInvalidSignature
// even when its expiry claim is in the past. Expiry (now >= exp) is only
// reported for correctly signed tokens.
func (c *TokenCodec) Validate(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", ErrMalformedToken
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return "", ErrInvalidSignature
	}
	// HMAC verification uses hmac.Equal (constant time).
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return "", ErrInvalidSignature
	}

	claims := &Claims{}
	_, err = c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", ErrInvalidSignature
	default:
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims.Subject, nil
}

// ExpiresAt returns the expiry Issue embeds for issuedAt and ttl
// (truncated to whole seconds, like the exp claim).
func ExpiresAt(issuedAt time.Time, ttl time.Duration) time.Time {
	return jwt.NewNumericDate(issuedAt.Add(ttl)).Time
}
