package variety

import (
	"context"
	"fmt"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore redis 版變化記憶，多副本部署時共用
// 容量以 TTL 自然收斂，不做逐條淘汰
type RedisStore struct {
	client *redis.Client
	cfg    config.VarietyConfig
}

// NewRedisStore 創建 redis 變化記憶
func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Variety.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("redis 變化記憶已初始化",
		zap.String("addr", cfg.Variety.RedisAddr),
		zap.Duration("存活時間", cfg.Variety.TTL),
	)
	return &RedisStore{
		client: client,
		cfg:    cfg.Variety,
	}, nil
}

// key 變化記憶的鍵
func (s *RedisStore) key(userID, signature string) string {
	return fmt.Sprintf("variety:%s:%s", userID, signature)
}

// Seen 簽名是否仍在記憶中
func (s *RedisStore) Seen(ctx context.Context, userID, signature string) bool {
	n, err := s.client.Exists(ctx, s.key(userID, signature)).Result()
	if err != nil {
		// 記憶僅為盡力而為，查詢失敗視為未見過
		common.LogWarn("redis 變化記憶查詢失敗", zap.Error(err))
		return false
	}
	return n > 0
}

// Remember 記錄簽名
func (s *RedisStore) Remember(ctx context.Context, userID, signature string) {
	if err := s.client.Set(ctx, s.key(userID, signature), 1, s.cfg.TTL).Err(); err != nil {
		common.LogWarn("redis 變化記憶寫入失敗", zap.Error(err))
	}
}

// Close 關閉連接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NewStore 依設定挑選變化記憶實作
func NewStore(cfg *config.Config) (Store, error) {
	if !cfg.Variety.Enabled {
		return nil, nil
	}
	if cfg.Variety.RedisAddr != "" {
		return NewRedisStore(cfg)
	}
	return NewBank(cfg), nil
}
