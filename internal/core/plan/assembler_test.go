package plan

import (
	"testing"

	"mealplan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lunchPools(meals ...*common.CandidateMeal) map[common.SlotType][]ScoredMeal {
	return map[common.SlotType][]ScoredMeal{
		common.SlotLunch: ScorePool(meals, common.PreferenceSet{}),
	}
}

func TestAssembleWeekFillsEverySlot(t *testing.T) {
	cfg := testConfig()
	a := NewAssemblerWithSeed(cfg, 1)

	pools := map[common.SlotType][]ScoredMeal{
		common.SlotBreakfast: ScorePool([]*common.CandidateMeal{
			testMeal("b1", common.SlotBreakfast, "american", 300, 15, "oats"),
			testMeal("b2", common.SlotBreakfast, "chinese", 320, 16, "rice"),
			testMeal("b3", common.SlotBreakfast, "mexican", 310, 14, "egg"),
			testMeal("b4", common.SlotBreakfast, "italian", 330, 17, "bread"),
		}, common.PreferenceSet{}),
		common.SlotLunch: ScorePool([]*common.CandidateMeal{
			testMeal("l1", common.SlotLunch, "thai", 500, 30, "chicken"),
			testMeal("l2", common.SlotLunch, "indian", 520, 28, "lentils"),
			testMeal("l3", common.SlotLunch, "french", 540, 25, "beef"),
			testMeal("l4", common.SlotLunch, "greek", 510, 27, "lamb"),
		}, common.PreferenceSet{}),
		common.SlotDinner: ScorePool([]*common.CandidateMeal{
			testMeal("d1", common.SlotDinner, "japanese", 600, 35, "salmon"),
			testMeal("d2", common.SlotDinner, "korean", 620, 32, "tofu"),
			testMeal("d3", common.SlotDinner, "spanish", 580, 30, "shrimp"),
			testMeal("d4", common.SlotDinner, "thai", 590, 33, "pork"),
		}, common.PreferenceSet{}),
	}

	week, _ := a.AssembleWeek(1, pools, 3, 0)
	require.Len(t, week.Days, 7)
	for _, day := range week.Days {
		require.Len(t, day.Slots, 3)
		for _, slot := range day.Slots {
			require.NotNil(t, slot.Meal, "every slot carries exactly one meal")
		}
	}
}

func TestAssembleWeekClonesPoolMeals(t *testing.T) {
	cfg := testConfig()
	cfg.Planner.MinCuisines = 1
	cfg.Planner.MaxRepeatPerWeek = 7
	a := NewAssemblerWithSeed(cfg, 1)

	original := testMeal("l1", common.SlotLunch, "thai", 500, 30, "chicken")
	week, _ := a.AssembleWeek(1, lunchPools(original), 1, 0)

	// 改動計畫內的餐點不得影響池內原件
	week.Days[0].Slots[0].Meal.Name = "mutated"
	assert.Equal(t, "Meal l1", original.Name)
	assert.NotSame(t, original, week.Days[0].Slots[0].Meal)
}

func TestAssembleWeekSnacksTruncatedByMealsPerDay(t *testing.T) {
	cfg := testConfig()
	cfg.Planner.MinCuisines = 1
	cfg.Planner.MaxRepeatPerWeek = 7
	a := NewAssemblerWithSeed(cfg, 1)

	pools := map[common.SlotType][]ScoredMeal{
		common.SlotBreakfast: ScorePool([]*common.CandidateMeal{
			testMeal("b1", common.SlotBreakfast, "american", 300, 15, "oats"),
		}, common.PreferenceSet{}),
		common.SlotLunch: ScorePool([]*common.CandidateMeal{
			testMeal("l1", common.SlotLunch, "thai", 500, 30, "chicken"),
		}, common.PreferenceSet{}),
		common.SlotSnack: ScorePool([]*common.CandidateMeal{
			testMeal("s1", common.SlotSnack, "american", 150, 5, "apple"),
		}, common.PreferenceSet{}),
	}

	week, _ := a.AssembleWeek(1, pools, 2, 1)
	require.Len(t, week.Days[0].Slots, 3)
	assert.Equal(t, common.SlotBreakfast, week.Days[0].Slots[0].Slot)
	assert.Equal(t, common.SlotLunch, week.Days[0].Slots[1].Slot)
	assert.Equal(t, common.SlotSnack, week.Days[0].Slots[2].Slot)
}

func TestAssembleWeekReportsCapsNotMetOnTinyPool(t *testing.T) {
	cfg := testConfig()
	cfg.Planner.MaxRepeatPerWeek = 2
	cfg.Planner.MinCuisines = 1
	a := NewAssemblerWithSeed(cfg, 1)

	// 單一候選填七天必然超過重複上限，修復無從替換
	week, capsMet := a.AssembleWeek(1, lunchPools(
		testMeal("only", common.SlotLunch, "thai", 500, 30, "chicken"),
	), 1, 0)

	assert.False(t, capsMet, "repair loop must terminate and report best effort")
	require.Len(t, week.Days, 7)
	for _, day := range week.Days {
		require.NotEmpty(t, day.Slots)
		assert.NotNil(t, day.Slots[0].Meal)
	}
}

func TestAssembleWeekRespectsRepeatCapWhenPossible(t *testing.T) {
	cfg := testConfig()
	cfg.Planner.MinCuisines = 3
	a := NewAssemblerWithSeed(cfg, 42)

	meals := []*common.CandidateMeal{
		testMeal("l1", common.SlotLunch, "thai", 500, 30, "chicken"),
		testMeal("l2", common.SlotLunch, "indian", 520, 28, "lentils"),
		testMeal("l3", common.SlotLunch, "french", 540, 25, "beef"),
		testMeal("l4", common.SlotLunch, "greek", 510, 27, "lamb"),
	}

	week, capsMet := a.AssembleWeek(1, lunchPools(meals...), 1, 0)

	// capsMet 的回報必須與實際狀態一致
	counts := make(map[string]int)
	cuisines := make(map[string]bool)
	for _, day := range week.Days {
		counts[day.Slots[0].Meal.ID]++
		cuisines[day.Slots[0].Meal.Cuisine] = true
	}
	withinCap := true
	for _, c := range counts {
		if c > cfg.Planner.MaxRepeatPerWeek {
			withinCap = false
		}
	}
	expected := withinCap && len(cuisines) >= cfg.Planner.MinCuisines
	assert.Equal(t, expected, capsMet, "capsMet must reflect the assembled week")
}

func TestStats(t *testing.T) {
	cfg := testConfig()
	cfg.Planner.MinCuisines = 1
	cfg.Planner.MaxRepeatPerWeek = 7
	a := NewAssemblerWithSeed(cfg, 1)

	week, _ := a.AssembleWeek(1, lunchPools(
		testMeal("only", common.SlotLunch, "thai", 500, 30, "chicken", "rice"),
	), 1, 0)

	stats := Stats(week)
	assert.Equal(t, 2, stats.UniqueIngredients)
	assert.Equal(t, 6, stats.RepeatCount, "seven uses of one meal is six repeats")
	assert.Equal(t, 1, stats.CuisineDiversity)
}
