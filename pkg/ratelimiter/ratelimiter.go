package ratelimiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrQuotaExceeded is returned when a daily quota has been used up.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// Limiter implements per-user cooldowns and salted daily quotas on redis.
// A Limiter with a nil client allows everything.
type Limiter struct {
	rdb *redis.Client
	now func() time.Time
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, now: time.Now}
}

func cooldownKey(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Allow takes the cooldown slot for action. It returns false while an
// earlier slot is still held.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string, cooldown time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || cooldown <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, cooldownKey(userID, action), "locked", cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// TTL reports how long the current cooldown for action still lasts.
func (l *Limiter) TTL(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, cooldownKey(userID, action)).Result()
}

// Clear releases the cooldown, used when the guarded write failed.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, cooldownKey(userID, action)).Err()
}

// ConsumeDailyQuota counts one use of scope for userID against max per day.
// The user is identified only by a hash salted with a per-day secret so the
// stored key cannot be joined back to an account after the salt expires.
func (l *Limiter) ConsumeDailyQuota(ctx context.Context, scope string, userID uuid.UUID, max int) error {
	if l == nil || l.rdb == nil {
		return nil
	}

	today := l.now().UTC().Format("2006-01-02")
	saltKey := fmt.Sprintf("%s:salt:%s", scope, today)

	salt, err := l.rdb.Get(ctx, saltKey).Result()
	if errors.Is(err, redis.Nil) {
		candidate := uuid.NewString()
		ok, setErr := l.rdb.SetNX(ctx, saltKey, candidate, 25*time.Hour).Result()
		if setErr != nil {
			return fmt.Errorf("failed to save salt: %w", setErr)
		}
		if ok {
			salt = candidate
		} else if salt, err = l.rdb.Get(ctx, saltKey).Result(); err != nil {
			return fmt.Errorf("failed to get salt: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to get salt: %w", err)
	}

	sum := sha256.Sum256([]byte(userID.String() + salt))
	quotaKey := fmt.Sprintf("%s_quota:%s", scope, hex.EncodeToString(sum[:]))

	current, err := l.rdb.Get(ctx, quotaKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to check quota: %w", err)
	}
	if n, _ := strconv.Atoi(current); n >= max {
		return fmt.Errorf("%s limit is %d per day: %w", scope, max, ErrQuotaExceeded)
	}

	pipe := l.rdb.Pipeline()
	pipe.Incr(ctx, quotaKey)
	pipe.Expire(ctx, quotaKey, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update quota: %w", err)
	}

	return nil
}
