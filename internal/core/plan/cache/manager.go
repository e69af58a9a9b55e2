package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Manager 計畫結果快取
// 條目寫入後不可變；過期後整筆換新，不就地修補
type Manager struct {
	config *config.Config
	mu     sync.RWMutex
	store  map[string]cacheEntry
	stats  cacheStats
	done   chan struct{}
}

// cacheEntry 快取條目
type cacheEntry struct {
	plan      *common.AssembledPlan
	expiresAt time.Time
	createdAt time.Time
}

// cacheStats 快取統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建計畫快取
func NewManager(cfg *config.Config) *Manager {
	if !cfg.Cache.Enabled {
		common.LogInfo("Plan cache disabled")
		return nil
	}

	m := &Manager{
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	// 啟動清理過期快取的協程
	go m.startCleanup()

	common.LogInfo("計畫快取已初始化",
		zap.Int("最大容量", cfg.Cache.MaxSize),
		zap.Duration("存活時間", cfg.Cache.TTL),
		zap.Duration("清理間隔", cfg.Cache.CleanupInterval),
	)
	return m
}

// Key 計算請求的複合簽名：使用者、天數、排程指紋、模式、限制檔案雜湊
func Key(req *common.PlanRequest) string {
	profileHash := hashProfile(req)
	raw := fmt.Sprintf("%s:%d:%s:%s:%s",
		req.UserID,
		req.Weeks*7,
		req.CanonicalSchedule(),
		req.Mode,
		profileHash,
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// hashProfile 限制檔案與請求參數的穩定雜湊
func hashProfile(req *common.PlanRequest) string {
	payload := struct {
		Profile      *common.ConstraintProfile `json:"profile"`
		Targets      common.MacroTargets       `json:"targets"`
		MealsPerDay  int                       `json:"meals_per_day"`
		SnacksPerDay int                       `json:"snacks_per_day"`
		Allergens    []string                  `json:"allergens"`
		MedicalFlags []string                  `json:"medical_flags"`
		Preferences  common.PreferenceSet      `json:"preferences"`
	}{req.Profile, req.Targets, req.MealsPerDay, req.SnacksPerDay, req.Allergens, req.MedicalFlags, req.Preferences}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get 取出快取中的計畫；命中時回傳深度副本，呼叫端改動不會碰到快取條目
func (m *Manager) Get(key string) (*common.AssembledPlan, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		common.LogCacheMiss("plan", key)
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		common.LogInfo("快取已過期", zap.String("鍵", key))
		return nil, false
	}

	m.stats.hits++
	common.LogCacheHit("plan", key)
	return entry.plan.Clone(), true
}

// Set 寫入計畫，覆蓋同鍵舊條目；容量滿時先淘汰最舊的
// 存的是深度副本，寫入後的條目不可變，呼叫端之後的改動不會滲進來
func (m *Manager) Set(key string, plan *common.AssembledPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.config.Cache.MaxSize {
		m.cleanupLocked()
		if len(m.store) >= m.config.Cache.MaxSize {
			m.evictOldestLocked()
		}
	}

	now := time.Now()
	m.store[key] = cacheEntry{
		plan:      plan.Clone(),
		expiresAt: now.Add(m.config.Cache.TTL),
		createdAt: now,
	}
	common.LogInfo("快取已儲存", zap.String("鍵", key))
}

// startCleanup 啟動清理過期快取的協程
func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.Cache.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanupLocked()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanupLocked 清理過期條目，呼叫端須持鎖
func (m *Manager) cleanupLocked() {
	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}
	if count > 0 {
		common.LogInfo("Cleaned up expired cache entries",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
}

// evictOldestLocked 淘汰建立時間最早的條目，呼叫端須持鎖
func (m *Manager) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range m.store {
		if oldestKey == "" || entry.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.createdAt
		}
	}
	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("快取已淘汰最舊條目", zap.String("鍵", oldestKey))
	}
}

// GetStats 快取統計資訊
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.stats.hits + m.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.Cache.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": hitRatio,
	}
}

// Close 關閉快取
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	close(m.done)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]cacheEntry)
	common.LogInfo("計畫快取已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
	)
	return nil
}
