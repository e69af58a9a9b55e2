package plan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"mealplan-generator/internal/core/plan/cache"
	"mealplan-generator/internal/core/variety"
	"mealplan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator 每次呼叫回傳一道名稱不同的安全餐點
type countingGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGenerator) GenerateMeal(ctx context.Context, userID string, slot common.SlotType, craving string, variation int) (string, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()
	return fmt.Sprintf(`{"name": "Dish %d", "ingredients": ["1 cup rice", "6 oz chicken"], "instructions": ["Cook."], "cuisine": "fusion"}`, n), nil
}

func (g *countingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newTestService(t *testing.T, gen *countingGenerator) (*Service, *cache.Manager) {
	t.Helper()
	cfg := testConfig()
	cacheManager := cache.NewManager(cfg)
	require.NotNil(t, cacheManager)
	t.Cleanup(func() { _ = cacheManager.Close() })

	store := variety.NewBank(cfg)
	t.Cleanup(func() { _ = store.Close() })

	if gen != nil {
		return NewService(cfg, gen, store, cacheManager), cacheManager
	}
	return NewService(cfg, nil, store, cacheManager), cacheManager
}

func TestBuildPlanValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *common.PlanRequest
	}{
		{"missing user", &common.PlanRequest{Weeks: 1}},
		{"too many weeks", &common.PlanRequest{UserID: "u1", Weeks: 5}},
		{"too many meals", &common.PlanRequest{UserID: "u1", MealsPerDay: 4}},
		{"too many snacks", &common.PlanRequest{UserID: "u1", SnacksPerDay: 3}},
		{"unknown mode", &common.PlanRequest{UserID: "u1", Mode: "weird"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.BuildPlan(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, common.IsValidationError(err))
		})
	}
}

func TestBuildPlanFixedMenuShape(t *testing.T) {
	svc, _ := newTestService(t, nil)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeFixedMenu,
	})
	require.NoError(t, err)

	require.Len(t, plan.Weeks, 1)
	require.Len(t, plan.Weeks[0].Days, 7)
	for _, day := range plan.Weeks[0].Days {
		require.Len(t, day.Slots, 3)
		assert.Equal(t, common.SlotBreakfast, day.Slots[0].Slot)
		assert.Equal(t, common.SlotLunch, day.Slots[1].Slot)
		assert.Equal(t, common.SlotDinner, day.Slots[2].Slot)
		for _, slot := range day.Slots {
			require.NotNil(t, slot.Meal)
			assert.False(t, slot.Meal.Generated)
		}
	}
	assert.Equal(t, common.ModeFixedMenu, plan.Mode)
	assert.NotEmpty(t, plan.ID)
	assert.Positive(t, plan.Meta.UniqueIngredients)
}

func TestBuildPlanFiltersAllergens(t *testing.T) {
	svc, _ := newTestService(t, nil)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID:    "u1",
		Weeks:     1,
		Mode:      common.ModeFixedMenu,
		Allergens: []string{"peanut"},
	})
	require.NoError(t, err)

	plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
		require.NotNil(t, slot.Meal)
		for _, name := range slot.Meal.IngredientNames() {
			assert.NotContains(t, strings.ToLower(name), "peanut")
		}
	})
}

func TestBuildPlanPoolExhausted(t *testing.T) {
	svc, _ := newTestService(t, nil)

	// 避免清單蓋掉所有早餐模板的核心食材
	_, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeFixedMenu,
		Profile: &common.ConstraintProfile{
			AvoidList: []string{"oats", "tofu", "peanut", "rice"},
		},
	})
	require.Error(t, err)

	var custom *common.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, common.ErrCodePoolExhausted, custom.Code)
}

func TestBuildPlanFallsBackWithoutGenerator(t *testing.T) {
	svc, _ := newTestService(t, nil)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeAIVaried,
	})
	require.NoError(t, err)
	assert.Equal(t, common.ModeFixedMenu, plan.Mode, "disabled generator falls back to templates")
}

func TestBuildPlanAIVaried(t *testing.T) {
	gen := &countingGenerator{}
	svc, _ := newTestService(t, gen)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeAIVaried,
	})
	require.NoError(t, err)

	assert.Equal(t, 21, gen.callCount(), "one call per slot: 7 days x 3 meals")
	plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
		require.NotNil(t, slot.Meal)
		assert.True(t, slot.Meal.Generated)
	})
}

func TestBuildPlanCacheHit(t *testing.T) {
	gen := &countingGenerator{}
	svc, _ := newTestService(t, gen)

	req := &common.PlanRequest{UserID: "u1", Weeks: 1, Mode: common.ModeAIVaried}
	first, err := svc.BuildPlan(context.Background(), req)
	require.NoError(t, err)
	callsAfterFirst := gen.callCount()

	second, err := svc.BuildPlan(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "cache hit returns the stored plan")
	assert.NotSame(t, first, second, "each hit hands out an independent copy")
	assert.Equal(t, callsAfterFirst, gen.callCount(), "no generator calls on a cache hit")
}

func TestRegenerateSlotDoesNotTouchCachedPlan(t *testing.T) {
	gen := &countingGenerator{}
	svc, _ := newTestService(t, gen)

	req := &common.PlanRequest{UserID: "u1", Weeks: 1, Mode: common.ModeAIVaried}
	first, err := svc.BuildPlan(context.Background(), req)
	require.NoError(t, err)
	original := first.Weeks[0].Days[0].Slots[2].Meal.Name

	desc := common.SlotDescriptor{Week: 1, Day: 1, Slot: common.SlotDinner}
	_, err = svc.RegenerateSlot(context.Background(), first, desc, nil)
	require.NoError(t, err)

	cached, err := svc.BuildPlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, original, cached.Weeks[0].Days[0].Slots[2].Meal.Name,
		"regenerating a slot must not rewrite the cached entry")
}

func TestBuildPlanLeavesCallerProfileUntouched(t *testing.T) {
	svc, _ := newTestService(t, nil)

	profile := &common.ConstraintProfile{Allergies: []string{"dairy"}}
	_, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID:    "u1",
		Weeks:     1,
		Mode:      common.ModeFixedMenu,
		Allergens: []string{"peanut"},
		Profile:   profile,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dairy"}, profile.Allergies,
		"request-level allergens merge on a copy, never the caller's profile")
	assert.Empty(t, profile.MedicalFlags)
}

func TestBuildPlanRepeatOne(t *testing.T) {
	gen := &countingGenerator{}
	svc, _ := newTestService(t, gen)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeRepeatOne,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, gen.callCount(), "one generation per distinct slot type")

	// 每天同餐別都是同道菜，但必須是獨立副本
	day1 := plan.Weeks[0].Days[0].Slots
	day2 := plan.Weeks[0].Days[1].Slots
	for i := range day1 {
		require.NotNil(t, day1[i].Meal)
		require.NotNil(t, day2[i].Meal)
		assert.Equal(t, day1[i].Meal.Name, day2[i].Meal.Name)
		assert.NotSame(t, day1[i].Meal, day2[i].Meal)
	}
}

func TestBuildPlanAppliesScheduleTimes(t *testing.T) {
	svc, _ := newTestService(t, nil)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeFixedMenu,
		Schedule: []common.ScheduleSlot{
			{Slot: common.SlotBreakfast, Time: "07:30"},
			{Slot: common.SlotDinner, Time: "19:00"},
		},
	})
	require.NoError(t, err)

	plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
		switch slot.Slot {
		case common.SlotBreakfast:
			assert.Equal(t, "07:30", slot.Time)
		case common.SlotDinner:
			assert.Equal(t, "19:00", slot.Time)
		default:
			assert.Empty(t, slot.Time)
		}
	})
}

func TestRegenerateSlotWithTemplates(t *testing.T) {
	svc, _ := newTestService(t, nil)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeFixedMenu,
	})
	require.NoError(t, err)

	desc := common.SlotDescriptor{Week: 1, Day: 1, Slot: common.SlotLunch}
	updated, err := svc.RegenerateSlot(context.Background(), plan, desc, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.Weeks[0].Days[0].Slots[1].Meal)

	_, err = svc.RegenerateSlot(context.Background(), plan, common.SlotDescriptor{Week: 9, Day: 1, Slot: common.SlotLunch}, nil)
	assert.Error(t, err, "unknown slot descriptor is rejected")
}

func TestRegenerateSlotWithGenerator(t *testing.T) {
	gen := &countingGenerator{}
	svc, _ := newTestService(t, gen)

	plan, err := svc.BuildPlan(context.Background(), &common.PlanRequest{
		UserID: "u1",
		Weeks:  1,
		Mode:   common.ModeAIVaried,
	})
	require.NoError(t, err)
	before := plan.Weeks[0].Days[0].Slots[2].Meal.Name

	desc := common.SlotDescriptor{Week: 1, Day: 1, Slot: common.SlotDinner}
	updated, err := svc.RegenerateSlot(context.Background(), plan, desc, nil)
	require.NoError(t, err)

	after := updated.Weeks[0].Days[0].Slots[2].Meal.Name
	assert.NotEqual(t, before, after, "regenerated meal differs from every meal already in the plan")
}
