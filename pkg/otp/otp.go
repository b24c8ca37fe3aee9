package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CodeLength  = 6
	MaxAttempts = 5
)

// ErrUnavailable is returned when no redis client is configured.
var ErrUnavailable = errors.New("one-time codes are not available")

// Store keeps one hashed code per subject in redis. A code is single use
// and is dropped after MaxAttempts wrong guesses.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStore(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) TTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl
}

func (s *Store) codeKey(subject string) string {
	return fmt.Sprintf("%s:code:%s", s.prefix, strings.ToLower(subject))
}

func (s *Store) attemptsKey(subject string) string {
	return fmt.Sprintf("%s:attempts:%s", s.prefix, strings.ToLower(subject))
}

// GenerateCode returns a random numeric code of CodeLength digits.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Issue replaces any pending code for subject with a fresh one and returns it.
func (s *Store) Issue(ctx context.Context, subject string) (string, error) {
	if s == nil || s.rdb == nil {
		return "", ErrUnavailable
	}

	code, err := GenerateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.codeKey(subject), hashCode(code), s.ttl)
	pipe.Del(ctx, s.attemptsKey(subject))
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to save code: %w", err)
	}
	return code, nil
}

// Verify reports whether code matches the pending code for subject. A match
// consumes the code.
func (s *Store) Verify(ctx context.Context, subject, code string) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, ErrUnavailable
	}

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, s.attemptsKey(subject))
	pipe.Expire(ctx, s.attemptsKey(subject), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count attempt: %w", err)
	}
	if incr.Val() > MaxAttempts {
		s.rdb.Del(ctx, s.codeKey(subject), s.attemptsKey(subject))
		return false, nil
	}

	stored, err := s.rdb.Get(ctx, s.codeKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		return false, nil
	}

	if err := s.rdb.Del(ctx, s.codeKey(subject), s.attemptsKey(subject)).Err(); err != nil {
		return false, fmt.Errorf("failed to consume code: %w", err)
	}
	return true, nil
}
