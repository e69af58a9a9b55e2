package nutrition

import (
	"strings"

	"mealplan-generator/internal/pkg/common"
)

// 参考營養密度表：每份常見用量的估計值
// 來源為一般營養資料庫的概略值，只求落在合理範圍，不求精確

// macroEntry 單一參考食材的每份營養
type macroEntry struct {
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

var macroTable = map[string]macroEntry{
	// 蛋白質類
	"chicken":        {231, 43, 0, 5},
	"beef":           {250, 26, 0, 15},
	"pork":           {242, 27, 0, 14},
	"turkey":         {189, 29, 0, 7},
	"salmon":         {208, 20, 0, 13},
	"tuna":           {132, 28, 0, 1},
	"shrimp":         {99, 24, 0, 0.3},
	"cod":            {105, 23, 0, 0.9},
	"egg":            {78, 6, 0.6, 5},
	"tofu":           {144, 15, 4, 9},
	"tempeh":         {195, 20, 8, 11},
	"lentil":         {230, 18, 40, 0.8},
	"chickpea":       {269, 15, 45, 4},
	"black bean":     {227, 15, 41, 0.9},
	"greek yogurt":   {100, 17, 6, 0.7},
	"cottage cheese": {206, 28, 7, 9},

	// 碳水類
	"rice":         {206, 4, 45, 0.4},
	"quinoa":       {222, 8, 39, 3.6},
	"oats":         {154, 6, 27, 2.6},
	"oatmeal":      {154, 6, 27, 2.6},
	"pasta":        {221, 8, 43, 1.3},
	"bread":        {79, 3, 14, 1},
	"tortilla":     {144, 4, 24, 3.6},
	"potato":       {161, 4, 37, 0.2},
	"sweet potato": {112, 2, 26, 0.1},
	"granola":      {194, 5, 28, 7},

	// 脂肪類
	"olive oil":     {119, 0, 0, 13.5},
	"avocado":       {234, 3, 12, 21},
	"almond":        {164, 6, 6, 14},
	"walnut":        {185, 4, 4, 18},
	"peanut butter": {188, 8, 6, 16},
	"cashew":        {157, 5, 9, 12},
	"butter":        {102, 0.1, 0, 11.5},
	"cheese":        {113, 7, 0.4, 9},
	"feta":          {75, 4, 1, 6},

	// 蔬果類
	"broccoli": {31, 2.5, 6, 0.3},
	"spinach":  {7, 0.9, 1, 0.1},
	"carrot":   {25, 0.6, 6, 0.1},
	"zucchini": {20, 1.5, 4, 0.3},
	"pepper":   {24, 1, 6, 0.2},
	"tomato":   {22, 1, 5, 0.2},
	"onion":    {44, 1, 10, 0.1},
	"kale":     {33, 3, 6, 0.6},
	"cucumber": {16, 0.7, 4, 0.1},
	"mushroom": {15, 2, 2, 0.2},
	"banana":   {105, 1.3, 27, 0.4},
	"apple":    {95, 0.5, 25, 0.3},
	"berry":    {42, 0.5, 10, 0.3},
	"mango":    {99, 1.4, 25, 0.6},
	"orange":   {62, 1.2, 15, 0.2},

	// 其他常見
	"milk":   {103, 8, 12, 2.4},
	"yogurt": {100, 10, 8, 2},
	"honey":  {64, 0, 17, 0},
	"hummus": {70, 2, 6, 5},
}

// EstimateMacros 估算食材列表的營養總和
// 沒有任何食材能對上參考表時回傳 nil，呼叫端必須視為「無法估算」而非零
func EstimateMacros(ingredients []common.IngredientLine) *common.MacroTotals {
	var total common.MacroTotals
	matched := false

	for _, ing := range ingredients {
		entry, ok := lookup(ing.Name)
		if !ok {
			continue
		}
		matched = true

		// 數量缺失時以一份計
		qty := ing.Quantity
		if qty <= 0 {
			qty = 1
		}
		// 份量縮放只對可數單位有意義，液量與重量單位概略以一份處理
		scale := servingScale(qty, ing.Unit)

		total.Calories += entry.calories * scale
		total.Protein += entry.protein * scale
		total.Carbs += entry.carbs * scale
		total.Fat += entry.fat * scale
	}

	if !matched {
		return nil
	}
	return &total
}

// lookup 以關鍵字尋找參考表項目，較長的鍵優先（"greek yogurt" 先於 "yogurt"）
func lookup(name string) (macroEntry, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return macroEntry{}, false
	}

	var best string
	for key := range macroTable {
		if strings.Contains(n, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return macroEntry{}, false
	}
	return macroTable[best], true
}

// servingScale 將 (數量, 單位) 折算為份數
func servingScale(qty float64, unit string) float64 {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "cup", "cups":
		return qty
	case "tbsp", "tablespoon", "tablespoons":
		return qty * 0.25
	case "tsp", "teaspoon", "teaspoons":
		return qty * 0.1
	case "g", "gram", "grams":
		return qty / 100.0
	case "oz", "ounce", "ounces":
		return qty / 3.5
	case "slice", "slices", "piece", "pieces", "serving", "servings", "scoop", "scoops", "":
		return qty
	default:
		return qty
	}
}
