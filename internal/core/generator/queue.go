package generator

import (
	"context"
	"sync"
	"sync/atomic"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Request 佇列請求：一次對外生成呼叫所需的參數
type Request struct {
	Context   context.Context
	UserID    string
	Slot      common.SlotType
	Craving   string
	Variation int
	Result    chan Result
}

// Result 處理結果
type Result struct {
	Content string
	Error   error
}

// Status 佇列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 佇列管理器
// 所有對外生成呼叫都經過這裡，入列順序即服務順序
type Manager struct {
	config    *config.Config
	queue     chan *Request
	done      chan struct{}
	processed int64
	mu        sync.RWMutex
}

// NewManager 創建新的佇列管理器
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:    cfg,
		queue:     make(chan *Request, cfg.Queue.MaxSize),
		done:      make(chan struct{}),
		processed: 0,
	}
}

// GetQueue 獲取請求佇列
func (m *Manager) GetQueue() <-chan *Request {
	return m.queue
}

// Enqueue 將請求加入佇列
func (m *Manager) Enqueue(ctx context.Context, userID string, slot common.SlotType, craving string, variation int) (chan Result, error) {
	// 檢查佇列容量
	if len(m.queue) >= m.config.Queue.MaxSize {
		return nil, common.ErrQueueFull
	}

	queueReq := Request{
		Context:   ctx,
		UserID:    userID,
		Slot:      slot,
		Craving:   craving,
		Variation: variation,
		Result:    make(chan Result, 1),
	}

	select {
	case m.queue <- &queueReq:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.Queue.MaxSize),
			zap.String("slot", string(slot)),
		)
		return queueReq.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, common.ErrQueueFull
	}
}

// GetQueueStatus 獲取佇列狀態
func (m *Manager) GetQueueStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.Queue.MaxSize,
		Workers:        m.config.Queue.Workers,
	}
}

// IncrementProcessed 增加處理計數
func (m *Manager) IncrementProcessed() {
	atomic.AddInt64(&m.processed, 1)
}

// Close 關閉佇列管理器
func (m *Manager) Close() {
	close(m.done)
	close(m.queue)
}
