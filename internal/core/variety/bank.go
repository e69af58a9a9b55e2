package variety

import (
	"context"
	"sync"
	"time"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Store 變化記憶的鍵值介面；行程內或 redis 實作可互換，管線邏輯不動
type Store interface {
	Seen(ctx context.Context, userID, signature string) bool
	Remember(ctx context.Context, userID, signature string)
	Close() error
}

// Bank 行程內變化記憶
// 每個使用者一張 簽名→到期時間 表，容量滿時淘汰最舊的條目
type Bank struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	users    map[string]*userBank
	done     chan struct{}
}

// userBank 單一使用者的記憶，order 維持插入順序供淘汰用
type userBank struct {
	entries map[string]time.Time
	order   []string
}

// NewBank 創建行程內變化記憶
func NewBank(cfg *config.Config) *Bank {
	b := &Bank{
		ttl:      cfg.Variety.TTL,
		capacity: cfg.Variety.Capacity,
		users:    make(map[string]*userBank),
		done:     make(chan struct{}),
	}

	// 啟動清理過期條目的協程
	go b.startCleanup()

	common.LogInfo("變化記憶已初始化",
		zap.Duration("存活時間", cfg.Variety.TTL),
		zap.Int("容量上限", cfg.Variety.Capacity),
	)
	return b
}

// Seen 簽名是否仍在記憶中（未過期）
func (b *Bank) Seen(ctx context.Context, userID, signature string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ub, ok := b.users[userID]
	if !ok {
		return false
	}
	expiry, ok := ub.entries[signature]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(ub.entries, signature)
		return false
	}
	return true
}

// Remember 記錄簽名；容量滿時先淘汰最舊的現存條目
func (b *Bank) Remember(ctx context.Context, userID, signature string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ub, ok := b.users[userID]
	if !ok {
		ub = &userBank{entries: make(map[string]time.Time)}
		b.users[userID] = ub
	}

	if _, exists := ub.entries[signature]; !exists {
		if len(ub.entries) >= b.capacity {
			b.evictOldest(ub)
		}
		ub.order = append(ub.order, signature)
	}
	ub.entries[signature] = time.Now().Add(b.ttl)
}

// evictOldest 淘汰 order 中最舊且仍存在的條目
func (b *Bank) evictOldest(ub *userBank) {
	for len(ub.order) > 0 {
		oldest := ub.order[0]
		ub.order = ub.order[1:]
		if _, ok := ub.entries[oldest]; ok {
			delete(ub.entries, oldest)
			common.LogDebug("變化記憶已淘汰最舊條目", zap.String("signature", oldest))
			return
		}
	}
}

// startCleanup 定期清理過期條目
func (b *Bank) startCleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.cleanup()
		case <-b.done:
			return
		}
	}
}

// cleanup 移除所有已過期的條目
func (b *Bank) cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, ub := range b.users {
		for sig, expiry := range ub.entries {
			if now.After(expiry) {
				delete(ub.entries, sig)
				removed++
			}
		}
	}
	if removed > 0 {
		common.LogInfo("變化記憶清理完成", zap.Int("removed", removed))
	}
}

// Size 單一使用者目前的條目數（測試與健康檢查用）
func (b *Bank) Size(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ub, ok := b.users[userID]; ok {
		return len(ub.entries)
	}
	return 0
}

// Close 關閉變化記憶
func (b *Bank) Close() error {
	close(b.done)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = make(map[string]*userBank)
	return nil
}
