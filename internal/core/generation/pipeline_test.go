package generation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineConfig() *config.Config {
	return &config.Config{
		Generation: config.GenerationConfig{
			MaxTries:      4,
			CallTimeout:   time.Second,
			MacroBandPct:  0.10,
			ProteinFloorG: 15,
		},
	}
}

// scriptedGenerator 依呼叫順序回傳腳本化輸出
type scriptedGenerator struct {
	outputs []string
	errs    []error
	calls   int
}

func (g *scriptedGenerator) GenerateMeal(ctx context.Context, userID string, slot common.SlotType, craving string, variation int) (string, error) {
	i := g.calls
	g.calls++
	if i >= len(g.outputs) {
		i = len(g.outputs) - 1
	}
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	return g.outputs[i], err
}

// memoryVariety 固定回答的變化記憶
type memoryVariety struct {
	seen map[string]bool
}

func (m *memoryVariety) Seen(ctx context.Context, userID, signature string) bool {
	return m.seen[signature]
}

func mealJSON(name string, ingredients ...string) string {
	list := ""
	for i, ing := range ingredients {
		if i > 0 {
			list += ","
		}
		list += fmt.Sprintf("%q", ing)
	}
	return fmt.Sprintf(`{"name": %q, "ingredients": [%s], "instructions": ["Cook."]}`, name, list)
}

func TestGenerateSlotMealAcceptsValidFirstTry(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		mealJSON("Grilled Salmon", "6 oz salmon", "1 cup rice"),
	}}
	p := NewPipeline(pipelineConfig(), gen, nil)

	meal, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotDinner, "", &common.ConstraintProfile{}, NewSeenSet())
	require.NoError(t, err)
	assert.Equal(t, "Grilled Salmon", meal.Name)
	assert.True(t, meal.Generated)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateSlotMealRegeneratesBreakfastAtDinner(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		mealJSON("Greek Yogurt Parfait", "1 cup greek yogurt", "1/2 cup granola"),
		mealJSON("Roast Chicken", "6 oz chicken breast", "1 cup rice"),
	}}
	p := NewPipeline(pipelineConfig(), gen, nil)

	meal, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotDinner, "", &common.ConstraintProfile{}, NewSeenSet())
	require.NoError(t, err)
	assert.Equal(t, "Roast Chicken", meal.Name)
	assert.Equal(t, 2, gen.calls, "inappropriate meal triggers exactly one regeneration here")
}

func TestGenerateSlotMealSafetyFailsClosed(t *testing.T) {
	// 每次都回含過敏原的餐點，重試耗盡後必須整體失敗
	gen := &scriptedGenerator{outputs: []string{
		mealJSON("Peanut Noodles", "1 cup peanut sauce", "2 cup noodles"),
	}}
	p := NewPipeline(pipelineConfig(), gen, nil)
	profile := &common.ConstraintProfile{Allergies: []string{"peanut"}}

	meal, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotLunch, "", profile, NewSeenSet())
	require.Error(t, err)
	assert.Nil(t, meal)
	assert.Equal(t, 4, gen.calls, "retries up to MaxTries")

	var custom *common.CustomError
	require.ErrorAs(t, err, &custom)
	assert.Equal(t, common.ErrCodeGenerationExhausted, custom.Code)
	assert.Contains(t, custom.Message, string(common.ViolationSafety))
}

func TestGenerateSlotMealAcceptsDuplicateOnExhaustion(t *testing.T) {
	out := mealJSON("Chicken Rice", "6 oz chicken", "1 cup rice")
	gen := &scriptedGenerator{outputs: []string{out}}
	p := NewPipeline(pipelineConfig(), gen, nil)

	seen := NewSeenSet()
	first, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotLunch, "", &common.ConstraintProfile{}, seen)
	require.NoError(t, err)

	// 生成器只會產同一道菜：批次去重重試耗盡後仍放行，可用性優先
	second, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotLunch, "", &common.ConstraintProfile{}, seen)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
}

func TestGenerateSlotMealChecksVarietyMemory(t *testing.T) {
	fresh := mealJSON("New Dish", "6 oz cod", "1 cup quinoa")
	stale := mealJSON("Old Favorite", "6 oz chicken", "1 cup rice")
	staleMeal, err := NormalizeRawOutput(stale, common.SlotLunch)
	require.NoError(t, err)

	variety := &memoryVariety{seen: map[string]bool{Signature(staleMeal): true}}
	gen := &scriptedGenerator{outputs: []string{stale, fresh}}
	p := NewPipeline(pipelineConfig(), gen, variety)

	meal, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotLunch, "", &common.ConstraintProfile{}, NewSeenSet())
	require.NoError(t, err)
	assert.Equal(t, "New Dish", meal.Name, "cross-session repeat triggers regeneration")
}

func TestGenerateSlotMealMacroBandSkippedWithoutEstimate(t *testing.T) {
	// 目標存在但食材完全不在參考表上：不能因為估不到而誤拒
	gen := &scriptedGenerator{outputs: []string{
		mealJSON("Mystery Bowl", "1 cup xylotroot", "2 tbsp glimmer sauce"),
	}}
	p := NewPipeline(pipelineConfig(), gen, nil)
	profile := &common.ConstraintProfile{MealTargets: common.MacroTargets{Calories: 600}}

	meal, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotLunch, "", profile, NewSeenSet())
	require.NoError(t, err)
	assert.Equal(t, "Mystery Bowl", meal.Name)
}

func TestGenerateSlotMealMacroBandRejectsOutOfBand(t *testing.T) {
	// 第一道估得出來且超出範圍，第二道落在範圍內
	heavy := `{"name": "Triple Rice", "nutrition": {"calories": 1200, "protein": 20}, "ingredients": ["3 cup rice"], "instructions": ["Cook."]}`
	fit := `{"name": "Balanced Bowl", "nutrition": {"calories": 600, "protein": 30}, "ingredients": ["6 oz chicken", "1 cup rice"], "instructions": ["Cook."]}`
	gen := &scriptedGenerator{outputs: []string{heavy, fit}}
	p := NewPipeline(pipelineConfig(), gen, nil)
	profile := &common.ConstraintProfile{MealTargets: common.MacroTargets{Calories: 600}}

	meal, err := p.GenerateSlotMeal(context.Background(), "u1", common.SlotLunch, "", profile, NewSeenSet())
	require.NoError(t, err)
	assert.Equal(t, "Balanced Bowl", meal.Name)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerateSlotMealStopsOnParentCancel(t *testing.T) {
	gen := &scriptedGenerator{
		outputs: []string{""},
		errs:    []error{context.Canceled},
	}
	p := NewPipeline(pipelineConfig(), gen, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GenerateSlotMeal(ctx, "u1", common.SlotLunch, "", &common.ConstraintProfile{}, NewSeenSet())
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls, "cancelled request must not retry")
}
