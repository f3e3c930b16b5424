package auth

import (
	"errors"
	"time"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session verification failures. All of them are domain.ErrUnauthorized.
var (
	ErrSessionMalformed    = domain.NewError(domain.ErrUnauthorized, "malformed session token")
	ErrSessionExpired      = domain.NewError(domain.ErrUnauthorized, "session token expired")
	ErrSessionBadSignature = domain.NewError(domain.ErrUnauthorized, "invalid session token signature")
)

// SessionCodec signs and verifies HS256 session tokens. The key is fixed for
// the lifetime of the codec.
type SessionCodec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewSessionCodec(secret string, validity time.Duration) *SessionCodec {
	return &SessionCodec{
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}
}

// Issue returns a signed token whose subject is userID.
func (c *SessionCodec) Issue(userID uuid.UUID) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks the signature and expiry of tokenString and returns its
// subject. It performs no I/O.
func (c *SessionCodec) Verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrSessionExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, ErrSessionBadSignature
		default:
			return uuid.Nil, ErrSessionMalformed
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrSessionMalformed
	}
	return userID, nil
}
