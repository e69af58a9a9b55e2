package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealplan-generator/internal/core/nutrition"
	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Generator 外部餐點文字生成器的同步契約
// variation 是去重時遞增的變化提示，生成端用它調整 prompt
type Generator interface {
	GenerateMeal(ctx context.Context, userID string, slot common.SlotType, craving string, variation int) (string, error)
}

// VarietyMemory 跨次變化記憶（行程內或 redis 實作）
type VarietyMemory interface {
	Seen(ctx context.Context, userID, signature string) bool
}

// 餐別適切性關鍵字：名稱或食材強烈指向其他餐別時拒絕
var (
	breakfastPatterns = []string{"parfait", "yogurt", "granola", "oatmeal", "pancake", "waffle", "cereal", "french toast", "smoothie bowl", "muesli", "porridge"}
	snackPatterns     = []string{"chip", "chips", "cookie", "trail mix", "granola bar", "popcorn", "candy", "gummy", "cracker snack"}
)

// Pipeline 生成驗證管線
// 每個 gate 失敗都觸發重新生成並遞增 try 計數，直到上限
type Pipeline struct {
	cfg     config.GenerationConfig
	gen     Generator
	variety VarietyMemory
}

// NewPipeline 創建生成驗證管線
func NewPipeline(cfg *config.Config, gen Generator, variety VarietyMemory) *Pipeline {
	return &Pipeline{
		cfg:     cfg.Generation,
		gen:     gen,
		variety: variety,
	}
}

// GenerateSlotMeal 為單一 slot 生成並驗證餐點
// 安全類違規在重試耗盡後回傳 GENERATION_EXHAUSTED 錯誤（fail closed）；
// 去重類違規在耗盡後接受重複的餐點（可用性優先於完美變化）
func (p *Pipeline) GenerateSlotMeal(ctx context.Context, userID string, slot common.SlotType, craving string, profile *common.ConstraintProfile, seen *SeenSet) (*common.CandidateMeal, error) {
	var lastViolation string
	var duplicate *common.CandidateMeal // 通過所有安全 gate 但簽名重複的候補

	for try := 1; try <= p.cfg.MaxTries; try++ {
		raw, err := p.callGenerator(ctx, userID, slot, craving, try-1)
		if err != nil {
			if ctx.Err() != nil {
				// 呼叫端取消：整個請求中止，不重試
				return nil, err
			}
			lastViolation = err.Error()
			common.LogWarn("生成器呼叫失敗，重試",
				zap.Int("try", try),
				zap.String("slot", string(slot)),
				zap.Error(err),
			)
			continue
		}

		meal, err := NormalizeRawOutput(raw, slot)
		if err != nil {
			lastViolation = err.Error()
			continue
		}

		if v := p.validate(meal, slot, profile); v != nil {
			lastViolation = v.Error()
			common.LogDebug("餐點未通過驗證",
				zap.Int("try", try),
				zap.String("meal", meal.Name),
				zap.String("violation", v.Error()),
			)
			continue
		}

		sig := Signature(meal)
		if p.variety != nil && p.variety.Seen(ctx, userID, sig) {
			lastViolation = string(common.ViolationDuplicate) + ": repeated across sessions"
			duplicate = meal
			continue
		}
		// 檢查與記錄必須在同一臨界區，否則平行 slot 會同時放行同一簽名
		if seen != nil && !seen.AddIfAbsent(sig) {
			lastViolation = string(common.ViolationDuplicate) + ": repeated in batch"
			duplicate = meal
			continue
		}
		return meal, nil
	}

	// 只有重複的違規可以放行，安全類一律 fail closed
	if duplicate != nil {
		common.LogWarn("去重重試耗盡，接受重複餐點",
			zap.String("meal", duplicate.Name),
			zap.String("slot", string(slot)),
		)
		if seen != nil {
			seen.Add(Signature(duplicate))
		}
		return duplicate, nil
	}

	return nil, common.NewGenerationExhausted(lastViolation)
}

// callGenerator 單次外部呼叫，受固定超時約束
func (p *Pipeline) callGenerator(ctx context.Context, userID string, slot common.SlotType, craving string, variation int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	raw, err := p.gen.GenerateMeal(callCtx, userID, slot, craving, variation)
	common.LogGeneratorCall(string(slot), time.Since(start), err, userID)

	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// 單次呼叫超時可重試，包裝為超時錯誤
		return "", fmt.Errorf("%s: %w", common.ErrCodeGenerationTimeout, err)
	}
	return raw, err
}

// validate 依序執行各 gate，回傳第一個違規
func (p *Pipeline) validate(meal *common.CandidateMeal, slot common.SlotType, profile *common.ConstraintProfile) *common.ViolationError {
	if v := p.checkMeasurements(meal); v != nil {
		return v
	}
	if v := p.checkSafety(meal, profile); v != nil {
		return v
	}
	if v := p.checkAppropriateness(meal, slot); v != nil {
		return v
	}
	if v := p.checkMacroBand(meal, slot, profile); v != nil {
		return v
	}
	return nil
}

// checkMeasurements 每個食材都要有數值數量與已知單位
// 不完整時先修補一次再重新檢查，仍不完整才視為違規
func (p *Pipeline) checkMeasurements(meal *common.CandidateMeal) *common.ViolationError {
	complete := true
	for _, line := range meal.Ingredients {
		if !MeasurementComplete(line) {
			complete = false
			break
		}
	}
	if complete {
		return nil
	}

	for i := range meal.Ingredients {
		meal.Ingredients[i] = FixIngredientLine(meal.Ingredients[i])
	}

	for _, line := range meal.Ingredients {
		if !MeasurementComplete(line) {
			return common.NewViolation(common.ViolationMeasurement,
				fmt.Sprintf("ingredient %q has no usable measurement", line.Name))
		}
	}
	return nil
}

// checkSafety 過敏原 / 醫療旗標 / 飲食規範 / 避免清單，命中即硬性拒絕
func (p *Pipeline) checkSafety(meal *common.CandidateMeal, profile *common.ConstraintProfile) *common.ViolationError {
	names := meal.IngredientNames()
	names = append(names, meal.Allergens...)
	if reason, violated := nutrition.ProfileViolation(names, profile); violated {
		return common.NewViolation(common.ViolationSafety, reason)
	}
	return nil
}

// checkAppropriateness 名稱或食材強烈指向其他餐別時拒絕
func (p *Pipeline) checkAppropriateness(meal *common.CandidateMeal, slot common.SlotType) *common.ViolationError {
	haystack := strings.ToLower(meal.Name) + " " + strings.Join(meal.IngredientNames(), " ")

	if slot == common.SlotLunch || slot == common.SlotDinner {
		for _, pattern := range breakfastPatterns {
			if strings.Contains(haystack, pattern) {
				return common.NewViolation(common.ViolationAppropriateness,
					fmt.Sprintf("%q looks like a breakfast item assigned to %s", meal.Name, slot))
			}
		}
	}
	if slot.IsMainMeal() {
		for _, pattern := range snackPatterns {
			if strings.Contains(haystack, pattern) {
				return common.NewViolation(common.ViolationAppropriateness,
					fmt.Sprintf("%q looks like a snack assigned to %s", meal.Name, slot))
			}
		}
	}
	return nil
}

// checkMacroBand 只在已知每餐熱量目標時評估；無法估算時跳過而非擋下
func (p *Pipeline) checkMacroBand(meal *common.CandidateMeal, slot common.SlotType, profile *common.ConstraintProfile) *common.ViolationError {
	if profile == nil || profile.MealTargets.Calories <= 0 {
		return nil
	}

	calories := meal.Nutrition.Calories
	protein := meal.Nutrition.Protein
	if calories <= 0 {
		est := nutrition.EstimateMacros(meal.Ingredients)
		if est == nil {
			// 缺參考資料不能造成誤拒
			return nil
		}
		calories = est.Calories
		protein = est.Protein
	}

	target := profile.MealTargets.Calories
	band := target * p.cfg.MacroBandPct
	if calories < target-band || calories > target+band {
		return common.NewViolation(common.ViolationMacroOutOfBand,
			fmt.Sprintf("calories %.0f outside %.0f±%.0f", calories, target, band))
	}

	if slot.IsMainMeal() && profile.MealTargets.ProteinFloor > 0 && protein < profile.MealTargets.ProteinFloor {
		return common.NewViolation(common.ViolationMacroOutOfBand,
			fmt.Sprintf("protein %.0fg below floor %.0fg", protein, profile.MealTargets.ProteinFloor))
	}
	return nil
}
