package variety

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mealplan-generator/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBank(t *testing.T, ttl time.Duration, capacity int) *Bank {
	t.Helper()
	b := NewBank(&config.Config{
		Variety: config.VarietyConfig{TTL: ttl, Capacity: capacity},
	})
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBankSeenAfterRemember(t *testing.T) {
	b := newTestBank(t, time.Hour, 10)
	ctx := context.Background()

	assert.False(t, b.Seen(ctx, "u1", "grilled salmon|rice"))
	b.Remember(ctx, "u1", "grilled salmon|rice")
	assert.True(t, b.Seen(ctx, "u1", "grilled salmon|rice"))
}

func TestBankIsolatesUsers(t *testing.T) {
	b := newTestBank(t, time.Hour, 10)
	ctx := context.Background()

	b.Remember(ctx, "u1", "chicken curry|rice")
	assert.True(t, b.Seen(ctx, "u1", "chicken curry|rice"))
	assert.False(t, b.Seen(ctx, "u2", "chicken curry|rice"))
}

func TestBankExpiresEntries(t *testing.T) {
	b := newTestBank(t, 10*time.Millisecond, 10)
	ctx := context.Background()

	b.Remember(ctx, "u1", "pasta|tomato")
	require.True(t, b.Seen(ctx, "u1", "pasta|tomato"))

	time.Sleep(30 * time.Millisecond)
	assert.False(t, b.Seen(ctx, "u1", "pasta|tomato"))
}

func TestBankEvictsOldestAtCapacity(t *testing.T) {
	b := newTestBank(t, time.Hour, 3)
	ctx := context.Background()

	b.Remember(ctx, "u1", "sig-1")
	b.Remember(ctx, "u1", "sig-2")
	b.Remember(ctx, "u1", "sig-3")
	require.Equal(t, 3, b.Size("u1"))

	b.Remember(ctx, "u1", "sig-4")
	assert.Equal(t, 3, b.Size("u1"))
	assert.False(t, b.Seen(ctx, "u1", "sig-1"), "oldest entry is evicted")
	assert.True(t, b.Seen(ctx, "u1", "sig-2"))
	assert.True(t, b.Seen(ctx, "u1", "sig-4"))
}

func TestBankRememberRefreshesWithoutEviction(t *testing.T) {
	b := newTestBank(t, time.Hour, 2)
	ctx := context.Background()

	b.Remember(ctx, "u1", "sig-a")
	b.Remember(ctx, "u1", "sig-b")
	// 重複記錄已存在的簽名不應觸發淘汰
	b.Remember(ctx, "u1", "sig-a")

	assert.Equal(t, 2, b.Size("u1"))
	assert.True(t, b.Seen(ctx, "u1", "sig-a"))
	assert.True(t, b.Seen(ctx, "u1", "sig-b"))
}

func TestBankSizeManyUsers(t *testing.T) {
	b := newTestBank(t, time.Hour, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		b.Remember(ctx, "u1", fmt.Sprintf("sig-%d", i))
	}
	assert.Equal(t, 5, b.Size("u1"))
	assert.Equal(t, 0, b.Size("unknown"))
}
