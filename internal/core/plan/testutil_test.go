package plan

import (
	"fmt"
	"time"

	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"
)

func testConfig() *config.Config {
	return &config.Config{
		Planner: config.PlannerConfig{
			RepairIterations:  15,
			MaxRepeatPerWeek:  2,
			MinCuisines:       3,
			MaxUniqueIngr:     45,
			MaxExoticIngr:     4,
			StrictVariety:     false,
			MinPoolForVariety: 3,
		},
		Generation: config.GenerationConfig{
			MaxTries:      4,
			CallTimeout:   20 * time.Second,
			MacroBandPct:  0.10,
			ProteinFloorG: 15,
		},
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         100,
			TTL:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Variety: config.VarietyConfig{
			Enabled:  true,
			TTL:      336 * time.Hour,
			Capacity: 500,
		},
		Queue: config.QueueConfig{Workers: 3, MaxSize: 100},
	}
}

func testMeal(id string, slot common.SlotType, cuisine string, calories, protein float64, ingredients ...string) *common.CandidateMeal {
	lines := make([]common.IngredientLine, 0, len(ingredients))
	for _, name := range ingredients {
		lines = append(lines, common.IngredientLine{Name: name, Quantity: 1, Unit: "cup"})
	}
	return &common.CandidateMeal{
		ID:          id,
		Slug:        id,
		Name:        fmt.Sprintf("Meal %s", id),
		SlotType:    slot,
		Cuisine:     cuisine,
		Nutrition:   common.Nutrition{Calories: calories, Protein: protein},
		Ingredients: lines,
		PrepMinutes: 5,
		CookMinutes: 10,
		Servings:    1,
	}
}
