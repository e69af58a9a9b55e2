package plan

import (
	"sort"
	"strings"

	"mealplan-generator/internal/pkg/common"
)

// 分數權重；調整時同步更新 scorer_test.go 的期望值
const (
	likedWeight       = 2.0
	simplicityCap     = 3.0
	speedCap          = 3.0
	goalBonus         = 1.5
	lowCalorieCeiling = 450 // "loss" 目標的低熱量門檻
	highProteinFloorG = 30  // "gain" 目標的高蛋白門檻
)

// ScoredMeal 附帶分數的候選
type ScoredMeal struct {
	Meal  *common.CandidateMeal
	Score float64
}

// ScorePool 依偏好排序候選池，分數相同時維持輸入順序（穩定排序，無隨機性）
func ScorePool(pool []*common.CandidateMeal, prefs common.PreferenceSet) []ScoredMeal {
	scored := make([]ScoredMeal, 0, len(pool))
	for _, m := range pool {
		scored = append(scored, ScoredMeal{Meal: m, Score: scoreMeal(m, prefs)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// scoreMeal 單一候選的偏好分數
func scoreMeal(m *common.CandidateMeal, prefs common.PreferenceSet) float64 {
	score := likedWeight * float64(likedCount(m, prefs.LikedIngredients))

	// 食材越少越簡單，反比加分並設上限
	if n := len(m.Ingredients); n > 0 {
		score += minF(simplicityCap, 12.0/float64(n))
	}

	// 時間越短越快，反比加分並設上限
	if t := m.TotalMinutes(); t > 0 {
		score += minF(speedCap, 60.0/float64(t))
	}

	switch strings.ToLower(prefs.Goal) {
	case "loss":
		if m.Nutrition.Calories > 0 && m.Nutrition.Calories <= lowCalorieCeiling {
			score += goalBonus
		}
	case "gain":
		if m.Nutrition.Protein >= highProteinFloorG {
			score += goalBonus
		}
	}

	return score
}

// likedCount 命中的喜好食材數
func likedCount(m *common.CandidateMeal, liked []string) int {
	if len(liked) == 0 {
		return 0
	}
	names := m.IngredientNames()
	count := 0
	for _, like := range liked {
		l := strings.ToLower(strings.TrimSpace(like))
		if l == "" {
			continue
		}
		for _, name := range names {
			if strings.Contains(name, l) {
				count++
				break
			}
		}
	}
	return count
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
