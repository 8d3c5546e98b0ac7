package redis

import (
	"context"
	"time"
)

// CooldownStore enforces per-key cooldown windows in Redis.
// Used to rate-limit verification code resends.
type CooldownStore struct {
	prefix string
}

var (
	setNXValue = SetNX
	ttlValue   = TTL
)

// NewCooldownStore creates a cooldown store with the given key prefix
func NewCooldownStore(prefix string) *CooldownStore {
	return &CooldownStore{prefix: prefix}
}

// Acquire attempts to open a cooldown window for key. It returns true when
// no window was active; otherwise it returns the remaining wait time.
func (s *CooldownStore) Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	ok, err := setNXValue(ctx, s.prefix+":"+key, 1, window)
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}

	remaining, err := ttlValue(ctx, s.prefix+":"+key)
	if err != nil {
		return false, 0, err
	}
	if remaining < 0 {
		remaining = 0
	}
	return false, remaining, nil
}
