package plan

import (
	"testing"

	"mealplan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeepsStrictTierWhenPoolLargeEnough(t *testing.T) {
	b := NewPoolBuilder(testConfig())
	candidates := []*common.CandidateMeal{
		testMeal("a", common.SlotLunch, "thai", 500, 30, "chicken", "rice"),
		testMeal("b", common.SlotLunch, "italian", 480, 28, "turkey", "pasta"),
		testMeal("c", common.SlotLunch, "mexican", 520, 25, "beef", "tortilla"),
		testMeal("d", common.SlotDinner, "thai", 600, 35, "salmon", "rice"),
	}

	result := b.Build(candidates, &common.ConstraintProfile{}, common.SlotLunch)
	assert.Equal(t, TierStrict, result.Tier)
	assert.Len(t, result.Meals, 3, "dinner candidate must be excluded")
}

func TestBuildRelaxesToTier2WhenSoftBandsThinThePool(t *testing.T) {
	b := NewPoolBuilder(testConfig())
	slow := testMeal("slow", common.SlotLunch, "french", 500, 30, "chicken", "rice")
	slow.CookMinutes = 90 // 超出軟性烹飪時間上限

	result := b.Build([]*common.CandidateMeal{slow}, &common.ConstraintProfile{}, common.SlotLunch)
	assert.Equal(t, TierSoftRelaxed, result.Tier)
	require.Len(t, result.Meals, 1)
	assert.Equal(t, "slow", result.Meals[0].ID)
}

func TestBuildNeverRelaxesHardSafety(t *testing.T) {
	b := NewPoolBuilder(testConfig())
	profile := &common.ConstraintProfile{Allergies: []string{"peanut"}}
	unsafe := testMeal("unsafe", common.SlotLunch, "thai", 500, 30, "peanut sauce", "noodles")

	result := b.Build([]*common.CandidateMeal{unsafe}, profile, common.SlotLunch)
	assert.Equal(t, TierHardOnly, result.Tier)
	assert.Empty(t, result.Meals, "allergen hit must be filtered at every tier")
}

func TestBuildEmptyCandidatesYieldsEmptyPool(t *testing.T) {
	b := NewPoolBuilder(testConfig())
	result := b.Build(nil, &common.ConstraintProfile{}, common.SlotBreakfast)
	assert.Empty(t, result.Meals)
}

func TestBuildTier2EnforcesProteinFloorForMains(t *testing.T) {
	b := NewPoolBuilder(testConfig())
	weak := testMeal("weak", common.SlotDinner, "thai", 900, 5, "rice") // 蛋白質低於下限
	weak.CookMinutes = 90                                              // 擋掉 tier1

	result := b.Build([]*common.CandidateMeal{weak}, &common.ConstraintProfile{}, common.SlotDinner)
	assert.Equal(t, TierHardOnly, result.Tier)
	require.Len(t, result.Meals, 1, "tier3 keeps it, only hard safety applies")
}

func TestPassesHardSafetyChecksDeclaredAllergens(t *testing.T) {
	meal := testMeal("m", common.SlotLunch, "", 400, 20, "mystery protein")
	meal.Allergens = []string{"peanut"}
	profile := &common.ConstraintProfile{Allergies: []string{"peanut"}}
	assert.False(t, PassesHardSafety(meal, profile))
}
