package plan

import (
	"mealplan-generator/internal/pkg/common"
)

// Catalog 內建模板餐點目錄
// fixed-menu 模式與生成器不可用時的退路都從這裡取候選
func Catalog() []*common.CandidateMeal {
	return templateCatalog
}

var templateCatalog = []*common.CandidateMeal{
	{
		ID: "tpl-oatmeal-berries", Slug: "oatmeal-with-berries", Name: "Oatmeal with Berries",
		SlotType:  common.SlotBreakfast,
		Nutrition: common.Nutrition{Calories: 320, Protein: 11, Carbs: 55, Fat: 7, Fiber: 8},
		Ingredients: []common.IngredientLine{
			{Name: "rolled oats", Quantity: 0.5, Unit: "cup"},
			{Name: "milk", Quantity: 1, Unit: "cup"},
			{Name: "blueberries", Quantity: 0.5, Unit: "cup"},
			{Name: "honey", Quantity: 1, Unit: "tsp"},
		},
		Instructions: []string{"Simmer oats in milk for 5 minutes.", "Top with blueberries and honey."},
		PrepMinutes:  5, CookMinutes: 5, Servings: 1, Cuisine: "american",
		Allergens: []string{"dairy"},
	},
	{
		ID: "tpl-tofu-scramble", Slug: "tofu-scramble", Name: "Tofu Scramble",
		SlotType:  common.SlotBreakfast,
		Nutrition: common.Nutrition{Calories: 290, Protein: 20, Carbs: 12, Fat: 18, VegetableCups: 1},
		Ingredients: []common.IngredientLine{
			{Name: "firm tofu", Quantity: 6, Unit: "oz"},
			{Name: "spinach", Quantity: 1, Unit: "cup"},
			{Name: "olive oil", Quantity: 1, Unit: "tbsp"},
			{Name: "turmeric", Quantity: 0.5, Unit: "tsp"},
		},
		Instructions: []string{"Crumble tofu into a hot oiled pan.", "Season with turmeric, fold in spinach until wilted."},
		PrepMinutes:  5, CookMinutes: 8, Servings: 1, Cuisine: "american",
		DietTags:  []string{"vegan"},
		Allergens: []string{"soy"},
	},
	{
		ID: "tpl-banana-peanut-toast", Slug: "banana-peanut-butter-toast", Name: "Banana Peanut Butter Toast",
		SlotType:  common.SlotBreakfast,
		Nutrition: common.Nutrition{Calories: 350, Protein: 12, Carbs: 48, Fat: 14, Fiber: 5},
		Ingredients: []common.IngredientLine{
			{Name: "whole wheat bread", Quantity: 2, Unit: "piece"},
			{Name: "peanut butter", Quantity: 2, Unit: "tbsp"},
			{Name: "banana", Quantity: 1, Unit: "piece"},
		},
		Instructions: []string{"Toast the bread.", "Spread peanut butter and layer banana slices."},
		PrepMinutes:  5, CookMinutes: 2, Servings: 1, Cuisine: "american",
		Allergens: []string{"peanut", "gluten"},
	},
	{
		ID: "tpl-congee-egg", Slug: "rice-congee-with-egg", Name: "Rice Congee with Egg",
		SlotType:  common.SlotBreakfast,
		Nutrition: common.Nutrition{Calories: 310, Protein: 13, Carbs: 50, Fat: 7},
		Ingredients: []common.IngredientLine{
			{Name: "rice", Quantity: 0.5, Unit: "cup"},
			{Name: "egg", Quantity: 1, Unit: "piece"},
			{Name: "scallion", Quantity: 1, Unit: "tbsp"},
			{Name: "soy sauce", Quantity: 1, Unit: "tsp"},
		},
		Instructions: []string{"Simmer rice in water until porridge-like.", "Stir in beaten egg, garnish with scallion and soy sauce."},
		PrepMinutes:  5, CookMinutes: 30, Servings: 1, Cuisine: "chinese",
		Allergens: []string{"egg", "soy"},
	},
	{
		ID: "tpl-chicken-rice-bowl", Slug: "grilled-chicken-rice-bowl", Name: "Grilled Chicken Rice Bowl",
		SlotType:  common.SlotLunch,
		Nutrition: common.Nutrition{Calories: 520, Protein: 42, Carbs: 55, Fat: 14, VegetableCups: 1},
		Ingredients: []common.IngredientLine{
			{Name: "chicken breast", Quantity: 6, Unit: "oz"},
			{Name: "rice", Quantity: 1, Unit: "cup"},
			{Name: "broccoli", Quantity: 1, Unit: "cup"},
			{Name: "olive oil", Quantity: 1, Unit: "tbsp"},
		},
		Instructions: []string{"Grill seasoned chicken until cooked through.", "Steam broccoli.", "Serve over rice."},
		PrepMinutes:  10, CookMinutes: 20, Servings: 1, Cuisine: "american",
	},
	{
		ID: "tpl-chickpea-salad", Slug: "mediterranean-chickpea-salad", Name: "Mediterranean Chickpea Salad",
		SlotType:  common.SlotLunch,
		Nutrition: common.Nutrition{Calories: 430, Protein: 16, Carbs: 52, Fat: 18, Fiber: 12, VegetableCups: 2},
		Ingredients: []common.IngredientLine{
			{Name: "chickpeas", Quantity: 1, Unit: "cup"},
			{Name: "cucumber", Quantity: 1, Unit: "cup"},
			{Name: "tomato", Quantity: 1, Unit: "cup"},
			{Name: "olive oil", Quantity: 1.5, Unit: "tbsp"},
			{Name: "lemon juice", Quantity: 1, Unit: "tbsp"},
		},
		Instructions: []string{"Combine chopped vegetables and chickpeas.", "Dress with olive oil and lemon juice."},
		PrepMinutes:  12, CookMinutes: 0, Servings: 1, Cuisine: "mediterranean",
		DietTags: []string{"vegan"},
	},
	{
		ID: "tpl-beef-tacos", Slug: "beef-tacos", Name: "Beef Tacos",
		SlotType:  common.SlotLunch,
		Nutrition: common.Nutrition{Calories: 560, Protein: 33, Carbs: 45, Fat: 26, VegetableCups: 0.5},
		Ingredients: []common.IngredientLine{
			{Name: "ground beef", Quantity: 5, Unit: "oz"},
			{Name: "corn tortilla", Quantity: 3, Unit: "piece"},
			{Name: "lettuce", Quantity: 0.5, Unit: "cup"},
			{Name: "salsa", Quantity: 3, Unit: "tbsp"},
		},
		Instructions: []string{"Brown the beef with taco seasoning.", "Fill warmed tortillas, top with lettuce and salsa."},
		PrepMinutes:  10, CookMinutes: 12, Servings: 1, Cuisine: "mexican",
	},
	{
		ID: "tpl-tuna-sandwich", Slug: "tuna-salad-sandwich", Name: "Tuna Salad Sandwich",
		SlotType:  common.SlotLunch,
		Nutrition: common.Nutrition{Calories: 450, Protein: 30, Carbs: 40, Fat: 18},
		Ingredients: []common.IngredientLine{
			{Name: "tuna", Quantity: 4, Unit: "oz"},
			{Name: "whole wheat bread", Quantity: 2, Unit: "piece"},
			{Name: "mayonnaise", Quantity: 1, Unit: "tbsp"},
			{Name: "celery", Quantity: 0.25, Unit: "cup"},
		},
		Instructions: []string{"Mix tuna with mayonnaise and diced celery.", "Assemble the sandwich."},
		PrepMinutes:  8, CookMinutes: 0, Servings: 1, Cuisine: "american",
		Allergens: []string{"fish", "egg", "gluten"},
	},
	{
		ID: "tpl-salmon-quinoa", Slug: "baked-salmon-quinoa", Name: "Baked Salmon with Quinoa",
		SlotType:  common.SlotDinner,
		Nutrition: common.Nutrition{Calories: 580, Protein: 40, Carbs: 42, Fat: 26, VegetableCups: 1},
		Ingredients: []common.IngredientLine{
			{Name: "salmon", Quantity: 6, Unit: "oz"},
			{Name: "quinoa", Quantity: 0.75, Unit: "cup"},
			{Name: "asparagus", Quantity: 1, Unit: "cup"},
			{Name: "olive oil", Quantity: 1, Unit: "tbsp"},
			{Name: "lemon juice", Quantity: 1, Unit: "tbsp"},
		},
		Instructions: []string{"Bake salmon at 200C for 12 minutes.", "Cook quinoa.", "Roast asparagus with oil and lemon."},
		PrepMinutes:  10, CookMinutes: 20, Servings: 1, Cuisine: "mediterranean",
		Allergens: []string{"fish"},
	},
	{
		ID: "tpl-veggie-stirfry", Slug: "tofu-vegetable-stir-fry", Name: "Tofu Vegetable Stir-Fry",
		SlotType:  common.SlotDinner,
		Nutrition: common.Nutrition{Calories: 460, Protein: 24, Carbs: 50, Fat: 18, VegetableCups: 2},
		Ingredients: []common.IngredientLine{
			{Name: "firm tofu", Quantity: 6, Unit: "oz"},
			{Name: "bell pepper", Quantity: 1, Unit: "cup"},
			{Name: "carrot", Quantity: 0.5, Unit: "cup"},
			{Name: "rice", Quantity: 0.75, Unit: "cup"},
			{Name: "soy sauce", Quantity: 1, Unit: "tbsp"},
			{Name: "ginger", Quantity: 1, Unit: "tsp"},
		},
		Instructions: []string{"Stir-fry tofu until golden.", "Add vegetables and sauce, toss over high heat.", "Serve over rice."},
		PrepMinutes:  12, CookMinutes: 10, Servings: 1, Cuisine: "chinese",
		DietTags:  []string{"vegan"},
		Allergens: []string{"soy"},
	},
	{
		ID: "tpl-pasta-marinara", Slug: "pasta-marinara-turkey", Name: "Turkey Pasta Marinara",
		SlotType:  common.SlotDinner,
		Nutrition: common.Nutrition{Calories: 610, Protein: 38, Carbs: 68, Fat: 18, VegetableCups: 1},
		Ingredients: []common.IngredientLine{
			{Name: "pasta", Quantity: 2, Unit: "cup"},
			{Name: "ground turkey", Quantity: 5, Unit: "oz"},
			{Name: "tomato", Quantity: 1, Unit: "cup"},
			{Name: "garlic", Quantity: 2, Unit: "tsp"},
			{Name: "olive oil", Quantity: 1, Unit: "tbsp"},
		},
		Instructions: []string{"Boil pasta.", "Brown turkey with garlic, add crushed tomato and simmer.", "Combine and serve."},
		PrepMinutes:  10, CookMinutes: 18, Servings: 1, Cuisine: "italian",
		Allergens: []string{"gluten"},
	},
	{
		ID: "tpl-dal-curry", Slug: "red-lentil-dal", Name: "Red Lentil Dal",
		SlotType:  common.SlotDinner,
		Nutrition: common.Nutrition{Calories: 480, Protein: 22, Carbs: 70, Fat: 12, Fiber: 14},
		Ingredients: []common.IngredientLine{
			{Name: "lentils", Quantity: 1, Unit: "cup"},
			{Name: "rice", Quantity: 0.5, Unit: "cup"},
			{Name: "onion", Quantity: 0.5, Unit: "cup"},
			{Name: "curry powder", Quantity: 2, Unit: "tsp"},
			{Name: "coconut milk", Quantity: 0.25, Unit: "cup"},
		},
		Instructions: []string{"Simmer lentils with onion and curry powder.", "Finish with coconut milk, serve over rice."},
		PrepMinutes:  10, CookMinutes: 25, Servings: 1, Cuisine: "indian",
		DietTags: []string{"vegan"},
	},
	{
		ID: "tpl-greek-yogurt-nuts", Slug: "greek-yogurt-with-walnuts", Name: "Greek Yogurt with Walnuts",
		SlotType:  common.SlotSnack,
		Nutrition: common.Nutrition{Calories: 220, Protein: 15, Carbs: 12, Fat: 13},
		Ingredients: []common.IngredientLine{
			{Name: "greek yogurt", Quantity: 1, Unit: "cup"},
			{Name: "walnuts", Quantity: 2, Unit: "tbsp"},
			{Name: "honey", Quantity: 1, Unit: "tsp"},
		},
		Instructions: []string{"Top yogurt with walnuts and honey."},
		PrepMinutes:  3, CookMinutes: 0, Servings: 1, Cuisine: "mediterranean",
		Allergens: []string{"dairy", "walnut"},
	},
	{
		ID: "tpl-apple-almond", Slug: "apple-with-almond-butter", Name: "Apple with Almond Butter",
		SlotType:  common.SlotSnack,
		Nutrition: common.Nutrition{Calories: 200, Protein: 5, Carbs: 26, Fat: 10, Fiber: 5},
		Ingredients: []common.IngredientLine{
			{Name: "apple", Quantity: 1, Unit: "piece"},
			{Name: "almond butter", Quantity: 1, Unit: "tbsp"},
		},
		Instructions: []string{"Slice apple and serve with almond butter."},
		PrepMinutes:  3, CookMinutes: 0, Servings: 1, Cuisine: "american",
		DietTags:  []string{"vegan"},
		Allergens: []string{"almond"},
	},
	{
		ID: "tpl-hummus-carrots", Slug: "hummus-with-carrot-sticks", Name: "Hummus with Carrot Sticks",
		SlotType:  common.SlotSnack,
		Nutrition: common.Nutrition{Calories: 180, Protein: 6, Carbs: 20, Fat: 9, VegetableCups: 1},
		Ingredients: []common.IngredientLine{
			{Name: "hummus", Quantity: 0.25, Unit: "cup"},
			{Name: "carrot", Quantity: 1, Unit: "cup"},
		},
		Instructions: []string{"Cut carrots into sticks and serve with hummus."},
		PrepMinutes:  4, CookMinutes: 0, Servings: 1, Cuisine: "mediterranean",
		DietTags: []string{"vegan"},
	},
	{
		ID: "tpl-edamame", Slug: "steamed-edamame", Name: "Steamed Edamame",
		SlotType:  common.SlotSnack,
		Nutrition: common.Nutrition{Calories: 150, Protein: 12, Carbs: 12, Fat: 6, Fiber: 5},
		Ingredients: []common.IngredientLine{
			{Name: "edamame", Quantity: 1, Unit: "cup"},
			{Name: "sea salt", Quantity: 0.25, Unit: "tsp"},
		},
		Instructions: []string{"Steam edamame for 5 minutes, sprinkle with salt."},
		PrepMinutes:  2, CookMinutes: 5, Servings: 1, Cuisine: "japanese",
		DietTags:  []string{"vegan"},
		Allergens: []string{"soy"},
	},
}
