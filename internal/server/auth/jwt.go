// Package auth implements the session/token gateway: issuing, verifying and
// revoking the bearer tokens presented on authenticated requests.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yzt-loan/loanadmin/internal/common"
)

// Claims include the registered claims plus the account identifier.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string
}

// Gateway issues and verifies HS256 tokens. Because a JWT is not
// intrinsically revocable, the gateway keeps a small revoked-token set keyed
// by token id; entries are pruned once the token's own expiry passes.
type Gateway struct {
	secret   []byte
	validity time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time

	now func() time.Time // test seam
}

func NewGateway(secret []byte, validity time.Duration) *Gateway {
	return &Gateway{
		secret:   secret,
		validity: validity,
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Issue creates a signed, time-bound token for the given account. No store
// side effects.
func (g *Gateway) Issue(accountID string) (string, error) {
	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.validity)),
		},
		AccountID: accountID,
	})

	return token.SignedString(g.secret)
}

// Verify parses and validates a token and returns the account identifier.
// Failures are always the typed errors common.ErrTokenExpired or
// common.ErrInvalidToken; a revoked token verifies as invalid.
func (g *Gateway) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if g.isRevoked(claims.ID) {
		return "", common.ErrInvalidToken
	}

	return claims.AccountID, nil
}

// Invalidate marks the token unusable for future Verify calls. Invalidating
// a malformed or already-expired token is a no-op.
func (g *Gateway) Invalidate(tokenString string) {
	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	}); err != nil || claims.ID == "" {
		return
	}

	expiry := g.now().Add(g.validity)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune()
	g.revoked[claims.ID] = expiry
}

func (g *Gateway) isRevoked(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune()
	_, ok := g.revoked[id]
	return ok
}

// prune drops revocation entries whose tokens have expired on their own.
// Caller must hold the mutex.
func (g *Gateway) prune() {
	now := g.now()
	for id, expiry := range g.revoked {
		if expiry.Before(now) {
			delete(g.revoked, id)
		}
	}
}
