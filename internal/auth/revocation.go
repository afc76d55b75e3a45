package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sitecms/sitecms/internal/cache"
)

const revocationKeyPrefix = "auth:revoked:"

// Revocations remembers tokens ended by logout until they would have expired
// on their own.
type Revocations struct {
	store cache.Store
	now   func() time.Time
}

// NewRevocations wraps a cache store. A nil store yields nil, and a nil
// *Revocations treats every token as live.
func NewRevocations(store cache.Store) *Revocations {
	if store == nil {
		return nil
	}
	return &Revocations{store: store, now: time.Now}
}

// Revoke marks the token described by claims as logged out.
func (r *Revocations) Revoke(ctx context.Context, claims *Claims) error {
	if r == nil || claims == nil {
		return nil
	}
	key := revocationKey(claims)
	if key == "" {
		return errors.New("revocations: token id missing")
	}

	ttl := time.Second
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(r.now()); remaining > ttl {
			ttl = remaining
		}
	}
	return r.store.Set(ctx, key, []byte("1"), ttl)
}

// IsRevoked reports whether the token described by claims was logged out.
func (r *Revocations) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if r == nil || claims == nil {
		return false, nil
	}
	key := revocationKey(claims)
	if key == "" {
		return false, nil
	}
	_, found, err := r.store.Get(ctx, key)
	return found, err
}

func revocationKey(claims *Claims) string {
	id := strings.TrimSpace(claims.ID)
	if id == "" {
		return ""
	}
	audience := ""
	if len(claims.Audience) > 0 {
		audience = claims.Audience[0]
	}
	return revocationKeyPrefix + audience + ":" + id
}
