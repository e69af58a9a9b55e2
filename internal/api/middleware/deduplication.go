package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"
)

var (
	// 近期請求指紋表，鍵是 方法:路徑:請求體雜湊
	recentRequests = struct {
		sync.RWMutex
		seen map[string]time.Time
	}{
		seen: make(map[string]time.Time),
	}

	dedupCleanupOnce sync.Once
)

// startDeduplicationCleanup 啟動指紋表清理協程（整個行程只一次）
func startDeduplicationCleanup(cfg *config.Config) {
	dedupCleanupOnce.Do(func() {
		window := time.Second
		if cfg != nil && cfg.DedupWindow > 0 {
			window = cfg.DedupWindow
		}
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				now := time.Now()
				recentRequests.Lock()
				for fp, at := range recentRequests.seen {
					if now.Sub(at) > 10*window {
						delete(recentRequests.seen, fp)
					}
				}
				recentRequests.Unlock()
			}
		}()
	})
}

// Deduplication 請求去重
// 同一份計畫請求在去重窗內只放行一次：重複點擊不該燒掉兩份生成配額
func Deduplication(cfg *config.Config) gin.HandlerFunc {
	startDeduplicationCleanup(cfg)
	return func(c *gin.Context) {
		window := time.Second
		if cfg != nil && cfg.DedupWindow > 0 {
			window = cfg.DedupWindow
		}

		// 只有 POST 會觸發生成，其餘方法直接放行
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("讀取請求體失敗，略過去重", zap.Error(err))
				c.Next()
				return
			}
			sum := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(sum[:])

			// 請求體已被讀走，補回去給 handler
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		now := time.Now()
		recentRequests.RLock()
		last, exists := recentRequests.seen[fingerprint]
		recentRequests.RUnlock()
		if exists && now.Sub(last) <= window {
			common.LogDebug("去重窗內的重複請求，拒絕",
				zap.String("path", c.Request.URL.Path),
				zap.Duration("window", window),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "duplicate request",
				"code":  common.ErrCodeTooManyRequests,
			})
			c.Abort()
			return
		}

		recentRequests.Lock()
		recentRequests.seen[fingerprint] = now
		recentRequests.Unlock()

		c.Next()
	}
}
