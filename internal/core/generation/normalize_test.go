package generation

import (
	"testing"

	"mealplan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1", 1, true},
		{"1.5", 1.5, true},
		{".25", 0.25, true},
		{"1/2", 0.5, true},
		{"3/4", 0.75, true},
		{"1 1/2", 1.5, true},
		{"½", 0.5, true},
		{"1½", 1.5, true},
		{"⅓", 1.0 / 3.0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-2", 0, false},
		{"1/0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuantity(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestParseIngredientText(t *testing.T) {
	line := ParseIngredientText("1/2 cup milk")
	assert.Equal(t, "milk", line.Name)
	assert.InDelta(t, 0.5, line.Quantity, 0.0001)
	assert.Equal(t, "cup", line.Unit)

	line = ParseIngredientText("2 tablespoons olive oil")
	assert.Equal(t, "olive oil", line.Name)
	assert.InDelta(t, 2, line.Quantity, 0.0001)
	assert.Equal(t, "tbsp", line.Unit, "unit synonyms normalize")

	line = ParseIngredientText("1 1/2 cups rolled oats")
	assert.Equal(t, "rolled oats", line.Name)
	assert.InDelta(t, 1.5, line.Quantity, 0.0001)
	assert.Equal(t, "cup", line.Unit)
}

func TestFixIngredientLineFillsGaps(t *testing.T) {
	// 沒有數量：以 1 計
	line := FixIngredientLine(common.IngredientLine{Name: "banana"})
	assert.InDelta(t, 1, line.Quantity, 0.0001)

	// 沒有單位：依食材類型猜測
	line = FixIngredientLine(common.IngredientLine{Name: "chicken breast", Quantity: 0.25})
	assert.Equal(t, "oz", line.Unit)

	line = FixIngredientLine(common.IngredientLine{Name: "almond milk", Quantity: 1})
	assert.Equal(t, "cup", line.Unit)

	line = FixIngredientLine(common.IngredientLine{Name: "paprika", Quantity: 1})
	assert.Equal(t, "tsp", line.Unit)

	// 認不得的單位同樣改用猜測值，修補後必須是完整量測
	line = FixIngredientLine(common.IngredientLine{Name: "chicken breast", Quantity: 2, Unit: "blob"})
	assert.Equal(t, "oz", line.Unit)
	assert.True(t, MeasurementComplete(line))
}

func TestMeasurementComplete(t *testing.T) {
	assert.True(t, MeasurementComplete(common.IngredientLine{Name: "milk", Quantity: 1, Unit: "cup"}))
	assert.False(t, MeasurementComplete(common.IngredientLine{Name: "milk", Quantity: 0, Unit: "cup"}))
	assert.False(t, MeasurementComplete(common.IngredientLine{Name: "milk", Quantity: 1, Unit: "blorp"}))
}

func TestNormalizeRawOutputObjectIngredients(t *testing.T) {
	raw := `{
		"name": "Grilled Chicken Bowl",
		"cuisine": "american",
		"nutrition": {"calories": 520, "protein": 42, "carbs": 50, "fat": 14},
		"ingredients": [
			{"name": "chicken breast", "quantity": 6, "unit": "oz"},
			{"name": "rice", "quantity": "1/2", "unit": "cup"}
		],
		"instructions": ["Grill the chicken.", "Serve over rice."],
		"prep_minutes": 10,
		"cook_minutes": 20
	}`

	meal, err := NormalizeRawOutput(raw, common.SlotLunch)
	require.NoError(t, err)
	assert.Equal(t, "Grilled Chicken Bowl", meal.Name)
	assert.Equal(t, common.SlotLunch, meal.SlotType)
	assert.True(t, meal.Generated)
	assert.InDelta(t, 520, meal.Nutrition.Calories, 0.01)
	require.Len(t, meal.Ingredients, 2)
	assert.InDelta(t, 0.5, meal.Ingredients[1].Quantity, 0.0001, "string quantity parsed")
	assert.Equal(t, 10, meal.PrepMinutes)
	assert.Len(t, meal.Instructions, 2)
}

func TestNormalizeRawOutputStringIngredientsAndFences(t *testing.T) {
	raw := "Here is your meal:\n```json\n" + `{
		"title": "Veggie Omelet",
		"ingredients": ["2 eggs", "1/4 cup spinach", "salt"],
		"steps": ["Whisk eggs.", "Cook."]
	}` + "\n```"

	meal, err := NormalizeRawOutput(raw, common.SlotBreakfast)
	require.NoError(t, err)
	assert.Equal(t, "Veggie Omelet", meal.Name, "title alias accepted")
	require.Len(t, meal.Ingredients, 3)

	salt := meal.Ingredients[2]
	assert.Equal(t, "salt", salt.Name)
	assert.InDelta(t, 1, salt.Quantity, 0.0001, "missing quantity defaults to 1")
	assert.Equal(t, "tsp", salt.Unit, "spice unit guessed")
}

func TestNormalizeRawOutputRejectsIncomplete(t *testing.T) {
	_, err := NormalizeRawOutput(`{"ingredients": ["1 cup rice"]}`, common.SlotLunch)
	assert.Error(t, err, "missing name")

	_, err = NormalizeRawOutput(`{"name": "Empty Plate"}`, common.SlotLunch)
	assert.Error(t, err, "missing ingredients")

	_, err = NormalizeRawOutput("not json at all", common.SlotLunch)
	assert.Error(t, err)
}
