package plan

import (
	"mealplan-generator/internal/core/nutrition"
	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// 放寬層級
const (
	TierStrict      = 1 // 硬性安全 + 軟性條件
	TierSoftRelaxed = 2 // 硬性安全 + 正餐蛋白質下限
	TierHardOnly    = 3 // 只剩硬性安全
)

// 軟性條件的固定上限
const (
	maxCookTimeMinutes = 45
	maxIngredientCount = 12
	macroBandRelative  = 0.25 // 池過濾用的寬鬆熱量範圍，管線的 ±10% 另計
)

// PoolResult 池建構結果，Tier 標注實際使用的放寬層級
type PoolResult struct {
	Meals []*common.CandidateMeal
	Tier  int
}

// PoolBuilder 候選池建構器
type PoolBuilder struct {
	minForVariety int
	proteinFloor  float64
}

// NewPoolBuilder 創建候選池建構器
func NewPoolBuilder(cfg *config.Config) *PoolBuilder {
	return &PoolBuilder{
		minForVariety: cfg.Planner.MinPoolForVariety,
		proteinFloor:  cfg.Generation.ProteinFloorG,
	}
}

// Build 將原始候選過濾為單一餐別的池，逐層放寬
// 保證：任何層級都不會回傳違反硬性安全的候選；池可能為空，由呼叫端轉為 PoolExhausted
func (b *PoolBuilder) Build(candidates []*common.CandidateMeal, profile *common.ConstraintProfile, slot common.SlotType) *PoolResult {
	typed := make([]*common.CandidateMeal, 0, len(candidates))
	for _, c := range candidates {
		if c.SlotType == slot {
			typed = append(typed, c)
		}
	}

	tier1 := filter(typed, func(m *common.CandidateMeal) bool {
		return PassesHardSafety(m, profile) && b.passesSoftBands(m, profile)
	})
	if len(tier1) >= b.minForVariety {
		return &PoolResult{Meals: tier1, Tier: TierStrict}
	}

	tier2 := filter(typed, func(m *common.CandidateMeal) bool {
		if !PassesHardSafety(m, profile) {
			return false
		}
		if slot.IsMainMeal() && m.Nutrition.Protein < b.proteinFloor {
			return false
		}
		return true
	})
	if len(tier2) > 0 {
		common.LogDebug("候選池已放寬", zap.String("slot", string(slot)), zap.Int("tier", TierSoftRelaxed), zap.Int("size", len(tier2)))
		return &PoolResult{Meals: tier2, Tier: TierSoftRelaxed}
	}

	tier3 := filter(typed, func(m *common.CandidateMeal) bool {
		return PassesHardSafety(m, profile)
	})
	if len(tier3) > 0 {
		common.LogWarn("候選池只剩硬性安全過濾", zap.String("slot", string(slot)), zap.Int("size", len(tier3)))
	}
	return &PoolResult{Meals: tier3, Tier: TierHardOnly}
}

// PassesHardSafety 硬性安全檢查，任何放寬層級都不可跳過
// 標注的過敏原欄位與食材名稱都要比對
func PassesHardSafety(m *common.CandidateMeal, profile *common.ConstraintProfile) bool {
	names := m.IngredientNames()
	names = append(names, m.Allergens...)
	_, violated := nutrition.ProfileViolation(names, profile)
	return !violated
}

// passesSoftBands 軟性條件：熱量範圍、烹飪時間上限、食材數上限
func (b *PoolBuilder) passesSoftBands(m *common.CandidateMeal, profile *common.ConstraintProfile) bool {
	if m.TotalMinutes() > maxCookTimeMinutes {
		return false
	}
	if len(m.Ingredients) > maxIngredientCount {
		return false
	}
	if profile != nil && profile.MealTargets.Calories > 0 {
		lo := profile.MealTargets.Calories * (1 - macroBandRelative)
		hi := profile.MealTargets.Calories * (1 + macroBandRelative)
		if m.Nutrition.Calories < lo || m.Nutrition.Calories > hi {
			return false
		}
	}
	return true
}

func filter(meals []*common.CandidateMeal, keep func(*common.CandidateMeal) bool) []*common.CandidateMeal {
	out := make([]*common.CandidateMeal, 0, len(meals))
	for _, m := range meals {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
