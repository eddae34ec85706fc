package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// RevocationRegistry tracks access tokens that must be rejected before their
// natural expiry. Entries are retained only until the token's own expiry: a
// token cannot be replayed past that instant anyway, so longer retention is
// wasted memory.
type RevocationRegistry interface {
	// Revoke adds the token to the active set until expiresAt. A token whose
	// expiry has already passed is not stored.
	Revoke(token string, expiresAt time.Time)

	// IsRevoked reports whether the token is currently revoked.
	IsRevoked(token string) bool
}

var _ RevocationRegistry = (*InMemoryRevocationRegistry)(nil)

// InMemoryRevocationRegistry is a process-local registry. A restart or a
// second process instance does not share revocation state; multi-instance
// deployments need a RevocationRegistry backed by a shared store with native
// expiry instead.
type InMemoryRevocationRegistry struct {
	entries *cache.Cache
}

// NewInMemoryRevocationRegistry creates a registry whose janitor purges
// expired entries every cleanupInterval.
func NewInMemoryRevocationRegistry(cleanupInterval time.Duration) *InMemoryRevocationRegistry {
	return &InMemoryRevocationRegistry{
		entries: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (r *InMemoryRevocationRegistry) Revoke(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	r.entries.Set(token, struct{}{}, ttl)
}

func (r *InMemoryRevocationRegistry) IsRevoked(token string) bool {
	_, found := r.entries.Get(token)
	return found
}
