package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter 餐點文字生成客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL("https://openrouter.ai/api/v1").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://mealplan-generator.com").
		SetHeader("X-Title", "Mealplan Generator")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate 發送 prompt 並回傳模型原始輸出
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned error: %s", resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	return result.Choices[0].Message.Content, nil
}

// buildPrompt 組裝單一 slot 的生成 prompt
// variation 大於 1 時要求模型換一道不同的菜
func buildPrompt(slot common.SlotType, craving string, variation int) string {
	var b strings.Builder
	b.WriteString("You are a meal planning assistant. Suggest exactly one ")
	b.WriteString(string(slot))
	b.WriteString(" dish.")
	if craving != "" {
		b.WriteString(" The user is craving: ")
		b.WriteString(craving)
		b.WriteString(".")
	}
	if variation > 1 {
		fmt.Fprintf(&b, " This is attempt %d; propose a clearly different dish from typical first suggestions.", variation)
	}
	b.WriteString(" Respond with a single JSON object only, no prose, with keys:")
	b.WriteString(` "name" (string), "ingredients" (array of {"name","quantity","unit"}),`)
	b.WriteString(` "instructions" (array of strings), "nutrition" ({"calories","protein","carbs","fat"}),`)
	b.WriteString(` "cuisine" (string), "prep_minutes" (number), "cook_minutes" (number).`)
	b.WriteString(" Every ingredient must have a numeric quantity and a unit.")
	return b.String()
}

// Service 生成服務：佇列加上固定數量的 worker，對外實作 generation.Generator
type Service struct {
	config  *config.Config
	client  *Client
	queue   *Manager
	stopped chan struct{}
}

// NewService 創建生成服務並啟動 worker
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config:  cfg,
		client:  NewClient(cfg),
		queue:   NewManager(cfg),
		stopped: make(chan struct{}),
	}

	for i := 0; i < cfg.Queue.Workers; i++ {
		go s.worker(i)
	}

	common.LogInfo("生成服務已啟動",
		zap.Int("workers", cfg.Queue.Workers),
		zap.Int("max_queue_size", cfg.Queue.MaxSize),
		zap.String("model", cfg.OpenRouter.Model),
	)
	return s
}

// worker 從佇列取出請求並呼叫外部生成器
func (s *Service) worker(id int) {
	for req := range s.queue.GetQueue() {
		// 呼叫前再檢查一次，排隊期間呼叫端可能已取消
		if err := req.Context.Err(); err != nil {
			req.Result <- Result{Error: err}
			continue
		}

		prompt := buildPrompt(req.Slot, req.Craving, req.Variation)
		content, err := s.client.Generate(req.Context, prompt)
		if err != nil {
			common.LogError("生成器呼叫失敗",
				zap.Int("worker", id),
				zap.String("slot", string(req.Slot)),
				zap.Error(err),
			)
		}
		s.queue.IncrementProcessed()
		req.Result <- Result{Content: content, Error: err}
	}
}

// GenerateMeal 入列一次生成請求並等待結果
func (s *Service) GenerateMeal(ctx context.Context, userID string, slot common.SlotType, craving string, variation int) (string, error) {
	resultCh, err := s.queue.Enqueue(ctx, userID, slot, craving, variation)
	if err != nil {
		return "", err
	}

	select {
	case result := <-resultCh:
		return result.Content, result.Error
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// QueueStatus 佇列狀態，供健康檢查使用
func (s *Service) QueueStatus() *Status {
	return s.queue.GetQueueStatus()
}

// Close 關閉生成服務
func (s *Service) Close() {
	close(s.stopped)
	s.queue.Close()
}
