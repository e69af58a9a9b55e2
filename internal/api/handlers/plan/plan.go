package plan

import (
	"context"
	"errors"
	"net/http"

	"mealplan-generator/internal/core/nutrition"
	planservice "mealplan-generator/internal/core/plan"
	"mealplan-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 計畫相關路由的處理器
type Handler struct {
	service *planservice.Service
}

// NewHandler 創建處理器
func NewHandler(service *planservice.Service) *Handler {
	return &Handler{service: service}
}

// RegenerateRequest 單一 slot 重生請求
type RegenerateRequest struct {
	Plan    *common.AssembledPlan     `json:"plan" binding:"required"`
	Slot    common.SlotDescriptor     `json:"slot" binding:"required"`
	Profile *common.ConstraintProfile `json:"profile,omitempty"`
}

// EstimateRequest 營養估算請求
type EstimateRequest struct {
	Ingredients []common.IngredientLine `json:"ingredients" binding:"required"`
}

// HandleGenerate 生成完整計畫
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req common.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("計畫請求解析失敗", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	result, err := h.service.BuildPlan(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan": result,
	})
}

// HandleRegenerateSlot 重生計畫中單一 slot
func (h *Handler) HandleRegenerateSlot(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("slot 重生請求解析失敗", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	result, err := h.service.RegenerateSlot(c.Request.Context(), req.Plan, req.Slot, req.Profile)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan": result,
	})
}

// HandleEstimate 依食材行估算營養素
func (h *Handler) HandleEstimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	macros := nutrition.EstimateMacros(req.Ingredients)
	common.LogDebug("營養估算完成",
		zap.String("ingredients", common.FormatIngredientLines(req.Ingredients)),
		zap.Bool("estimated", macros != nil),
	)
	c.JSON(http.StatusOK, gin.H{
		"macros":    macros,
		"estimated": macros != nil,
	})
}

// respondError 將服務層錯誤轉為 HTTP 回應
func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "request timeout",
			"code":  common.ErrCodeGatewayTimeout,
		})
		return
	}

	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	var custom *common.CustomError
	if errors.As(err, &custom) {
		c.JSON(custom.Status, gin.H{
			"error": custom.Message,
			"code":  custom.Code,
		})
		return
	}

	common.LogError("計畫服務錯誤", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "internal server error",
		"code":  common.ErrCodeInternalError,
	})
}
