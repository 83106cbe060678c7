// Package auth issues and checks the session cookie that ties an HTTP client
// to the process-wide session held by the auth container.
//
// The container stays the source of truth: a token only proves which user
// it was issued for. RequireSession accepts it while that user is still the
// one logged in, so logging out (or logging in as someone else) invalidates
// every earlier token without a revocation list.
//
// TOKEN FORMAT:
//
//	HEADER.PAYLOAD.SIGNATURE   (HS256)
//	payload: {"iss":"contact-book","sub":<user id>,"jti":<uuid>,"iat":..,"exp":..}
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "contact-book"

	// MinSecretLength is the shortest signing secret NewTokenService accepts.
	MinSecretLength = 16

	// DefaultTTL is how long a session token stays valid.
	DefaultTTL = 24 * time.Hour
)

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// TokenService signs and verifies session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret. A ttl of zero
// means DefaultTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: session secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Claims identifies one issued token.
type Claims struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// Issue signs a new token for userID. Every token gets its own ID, so two
// logins of the same user never produce the same token.
func (s *TokenService) Issue(userID string) (string, Claims, error) {
	if userID == "" {
		return "", Claims{}, errors.New("auth: user ID must not be empty")
	}

	now := s.now()
	c := Claims{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   c.UserID,
		ID:        c.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, c, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the claims.
func (s *TokenService) Verify(tokenStr string) (Claims, error) {
	var rc jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &rc,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || rc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Claims{
		UserID:    rc.Subject,
		TokenID:   rc.ID,
		ExpiresAt: rc.ExpiresAt.Time,
	}, nil
}
