package nutrition

import (
	"testing"

	"mealplan-generator/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateMacrosReturnsNilWhenNothingMatches(t *testing.T) {
	got := EstimateMacros([]common.IngredientLine{
		{Name: "some unknown thing", Quantity: 1, Unit: "cup"},
	})
	assert.Nil(t, got, "no table match must be nil, not zero totals")
}

func TestEstimateMacrosEmptyInput(t *testing.T) {
	assert.Nil(t, EstimateMacros(nil))
}

func TestEstimateMacrosSkipsUnknownIngredients(t *testing.T) {
	got := EstimateMacros([]common.IngredientLine{
		{Name: "rice", Quantity: 1, Unit: "cup"},
		{Name: "mystery garnish", Quantity: 2, Unit: "tbsp"},
	})
	require.NotNil(t, got)
	assert.InDelta(t, 206, got.Calories, 0.01)
	assert.InDelta(t, 4, got.Protein, 0.01)
}

func TestEstimateMacrosLongestKeyWins(t *testing.T) {
	plain := EstimateMacros([]common.IngredientLine{
		{Name: "yogurt", Quantity: 1, Unit: "cup"},
	})
	greek := EstimateMacros([]common.IngredientLine{
		{Name: "greek yogurt", Quantity: 1, Unit: "cup"},
	})
	require.NotNil(t, plain)
	require.NotNil(t, greek)
	assert.InDelta(t, 10, plain.Protein, 0.01)
	assert.InDelta(t, 17, greek.Protein, 0.01, "greek yogurt entry must win over yogurt")
}

func TestEstimateMacrosServingScale(t *testing.T) {
	oneTbsp := EstimateMacros([]common.IngredientLine{
		{Name: "olive oil", Quantity: 1, Unit: "tbsp"},
	})
	require.NotNil(t, oneTbsp)
	assert.InDelta(t, 119*0.25, oneTbsp.Calories, 0.01)

	grams := EstimateMacros([]common.IngredientLine{
		{Name: "chicken", Quantity: 200, Unit: "g"},
	})
	require.NotNil(t, grams)
	assert.InDelta(t, 231*2, grams.Calories, 0.01)
}

func TestEstimateMacrosMissingQuantityDefaultsToOneServing(t *testing.T) {
	got := EstimateMacros([]common.IngredientLine{
		{Name: "banana"},
	})
	require.NotNil(t, got)
	assert.InDelta(t, 105, got.Calories, 0.01)
}
