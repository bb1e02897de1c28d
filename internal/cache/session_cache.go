package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"legalease/internal/models"
)

var ErrCacheMiss = errors.New("session cache miss")

const sessionKeyPrefix = "session:"

// SessionCache mirrors live session rows as "role:identityID" under
// session:<sid>, expiring with the session itself.
type SessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

func (c *SessionCache) Set(ctx context.Context, session models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	value := string(session.Role) + ":" + session.IdentityID
	if err := c.client.Set(ctx, sessionKeyPrefix+session.ID, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache session: %w", err)
	}
	return nil
}

// Get returns the cached role and identity. Entries without a usable role
// are treated as a miss so the caller falls back to the database.
func (c *SessionCache) Get(ctx context.Context, sessionID string) (models.Role, string, error) {
	value, err := c.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", "", ErrCacheMiss
	}
	if err != nil {
		return "", "", fmt.Errorf("read session cache: %w", err)
	}

	role, identityID, ok := strings.Cut(value, ":")
	if !ok || identityID == "" || !models.Role(role).Valid() {
		return "", "", ErrCacheMiss
	}
	return models.Role(role), identityID, nil
}

func (c *SessionCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("evict session: %w", err)
	}
	return nil
}
