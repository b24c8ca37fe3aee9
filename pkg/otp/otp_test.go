package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestStoreWithoutRedis(t *testing.T) {
	ctx := context.Background()

	for _, s := range []*Store{nil, NewStore(nil, "password_reset", time.Minute)} {
		_, err := s.Issue(ctx, "ana@school.test")
		assert.ErrorIs(t, err, ErrUnavailable)

		ok, err := s.Verify(ctx, "ana@school.test", "123456")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.False(t, ok)
	}
}

func TestKeysIgnoreCase(t *testing.T) {
	s := NewStore(nil, "password_reset", time.Minute)
	assert.Equal(t, "password_reset:code:ana@school.test", s.codeKey("Ana@School.test"))
	assert.Equal(t, "password_reset:attempts:ana@school.test", s.attemptsKey("ANA@school.test"))
	assert.NotEqual(t, hashCode("123456"), hashCode("123457"))
}
