package generation

import (
	"fmt"
	"strconv"
	"strings"

	"mealplan-generator/internal/pkg/common"
)

// 外部生成器的輸出沒有固定結構：欄位名稱不一、數量是自由文字
// 這裡是唯一的正規化邊界，未經正規化的資料不得進入驗證邏輯

// unicodeFractions 常見 unicode 分數
var unicodeFractions = map[rune]float64{
	'½': 0.5,
	'⅓': 1.0 / 3.0,
	'⅔': 2.0 / 3.0,
	'¼': 0.25,
	'¾': 0.75,
	'⅕': 0.2,
	'⅖': 0.4,
	'⅗': 0.6,
	'⅘': 0.8,
	'⅙': 1.0 / 6.0,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

// canonicalUnits 單位同義詞 → 標準 token
var canonicalUnits = map[string]string{
	"cup": "cup", "cups": "cup",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"g": "g", "gram": "g", "grams": "g", "gr": "g",
	"kg": "kg", "kilogram": "kg", "kilograms": "kg",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"ml": "ml", "milliliter": "ml", "milliliters": "ml",
	"l": "l", "liter": "l", "liters": "l", "litre": "l",
	"slice": "slice", "slices": "slice",
	"piece": "piece", "pieces": "piece", "pc": "piece",
	"clove": "clove", "cloves": "clove",
	"can": "can", "cans": "can",
	"scoop": "scoop", "scoops": "scoop",
	"serving": "serving", "servings": "serving",
	"pinch": "pinch", "pinches": "pinch",
	"dash": "dash",
	"handful": "handful", "handfuls": "handful",
	"fillet": "fillet", "fillets": "fillet",
	"stalk": "stalk", "stalks": "stalk",
	"head": "head", "heads": "head",
}

// 單位猜測用的食材類型關鍵字
var (
	proteinTerms = []string{"chicken", "beef", "pork", "turkey", "salmon", "tuna", "fish", "shrimp", "steak", "tofu", "tempeh", "lamb", "cod", "meat"}
	liquidTerms  = []string{"milk", "water", "oil", "juice", "broth", "stock", "sauce", "cream", "vinegar", "syrup", "yogurt", "smoothie"}
	spiceTerms   = []string{"salt", "pepper", "cumin", "paprika", "cinnamon", "oregano", "basil", "thyme", "turmeric", "chili powder", "garlic powder", "spice", "seasoning"}
)

// NormalizeUnit 單位正規化，回傳標準 token 與是否為已知單位
func NormalizeUnit(s string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(s))
	u = strings.TrimSuffix(u, ".")
	if canonical, ok := canonicalUnits[u]; ok {
		return canonical, true
	}
	return u, false
}

// GuessUnit 依食材類型猜測單位
func GuessUnit(name string) string {
	n := strings.ToLower(name)
	for _, t := range proteinTerms {
		if strings.Contains(n, t) {
			return "oz"
		}
	}
	for _, t := range liquidTerms {
		if strings.Contains(n, t) {
			return "cup"
		}
	}
	for _, t := range spiceTerms {
		if strings.Contains(n, t) {
			return "tsp"
		}
	}
	return "piece"
}

// ParseQuantity 將自由文字數量解析為數值
// 支援 unicode 分數（½）、帶分數（1 1/2）、分數（3/4）、小數（.25）
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// unicode 分數，可能帶整數前綴（如 "1½"）
	for r, frac := range unicodeFractions {
		if idx := strings.IndexRune(s, r); idx != -1 {
			whole := 0.0
			prefix := strings.TrimSpace(s[:idx])
			if prefix != "" {
				w, err := strconv.ParseFloat(prefix, 64)
				if err != nil {
					return 0, false
				}
				whole = w
			}
			return whole + frac, true
		}
	}

	// 帶分數 "1 1/2"
	fields := strings.Fields(s)
	if len(fields) == 2 && strings.Contains(fields[1], "/") {
		whole, err1 := strconv.ParseFloat(fields[0], 64)
		frac, ok := parseFraction(fields[1])
		if err1 == nil && ok {
			return whole + frac, true
		}
		return 0, false
	}

	// 分數 "3/4"
	if strings.Contains(s, "/") {
		return parseFraction(s)
	}

	// 小數或整數（".25" 也合法）
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

// ParseIngredientText 解析 "1/2 cup milk" 形式的自由文字食材行
func ParseIngredientText(s string) common.IngredientLine {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return common.IngredientLine{}
	}

	qty := 0.0
	consumed := 0

	// 前綴的數量 token（最多兩個，支援帶分數）
	if v, ok := ParseQuantity(fields[0]); ok {
		qty = v
		consumed = 1
		if len(fields) > 2 && strings.Contains(fields[1], "/") {
			if frac, ok := parseFraction(fields[1]); ok {
				qty += frac
				consumed = 2
			}
		}
	}

	unit := ""
	if consumed < len(fields) {
		if canonical, known := NormalizeUnit(fields[consumed]); known {
			unit = canonical
			consumed++
		}
	}

	name := strings.Join(fields[consumed:], " ")
	line := common.IngredientLine{Name: name, Quantity: qty, Unit: unit}
	return FixIngredientLine(line)
}

// FixIngredientLine 補齊缺漏：沒有數量以 1 計，沒有單位則依食材猜測
// 寧可給出合理預設，不可因缺資料整筆失敗
func FixIngredientLine(line common.IngredientLine) common.IngredientLine {
	if line.Name == "" {
		return line
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if canonical, known := NormalizeUnit(line.Unit); known {
		line.Unit = canonical
	} else {
		// 空白或認不得的單位一律依食材猜測
		line.Unit = GuessUnit(line.Name)
	}
	return line
}

// MeasurementComplete 食材行是否帶有數值數量與已知單位
func MeasurementComplete(line common.IngredientLine) bool {
	if line.Quantity <= 0 {
		return false
	}
	_, known := NormalizeUnit(line.Unit)
	return known
}

// NormalizeRawOutput 將生成器的任意輸出映射為標準餐點結構
func NormalizeRawOutput(raw string, slot common.SlotType) (*common.CandidateMeal, error) {
	content := common.ExtractJSONObject(raw)
	content = common.QuoteJSONKeys(content)

	var obj map[string]interface{}
	if err := common.ParseJSON(content, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse generator output: %w", err)
	}

	name := pickString(obj, "name", "title", "dish_name", "meal_name", "recipe_name")
	if name == "" {
		return nil, fmt.Errorf("generator output missing meal name")
	}

	meal := &common.CandidateMeal{
		ID:        common.GenerateUUID(),
		Slug:      common.Slugify(name),
		Name:      name,
		SlotType:  slot,
		Generated: true,
		Servings:  1,
	}

	// 營養欄位可能在頂層，也可能包在 nutrition / macros 物件裡
	nutritionObj := obj
	for _, k := range []string{"nutrition", "macros"} {
		if nested, ok := obj[k].(map[string]interface{}); ok {
			nutritionObj = nested
			break
		}
	}
	meal.Nutrition = common.Nutrition{
		Calories: pickNumber(nutritionObj, "calories", "kcal", "energy"),
		Protein:  pickNumber(nutritionObj, "protein", "protein_g", "protein_grams"),
		Carbs:    pickNumber(nutritionObj, "carbs", "carbohydrates", "carbs_g"),
		Fat:      pickNumber(nutritionObj, "fat", "fat_g", "fat_grams"),
		Fiber:    pickNumber(nutritionObj, "fiber", "fibre", "fiber_g"),
	}

	meal.PrepMinutes = int(pickNumber(obj, "prep_minutes", "prep_time", "preparation_time"))
	meal.CookMinutes = int(pickNumber(obj, "cook_minutes", "cook_time", "cooking_time"))
	if s := int(pickNumber(obj, "servings", "serves")); s > 0 {
		meal.Servings = s
	}
	meal.Cuisine = pickString(obj, "cuisine", "cuisine_type")
	meal.Badges = pickStringList(obj, "badges", "tags", "labels")

	for _, v := range pickList(obj, "ingredients", "ingredient_list", "items") {
		line := normalizeIngredientValue(v)
		if line.Name != "" {
			meal.Ingredients = append(meal.Ingredients, line)
		}
	}
	if len(meal.Ingredients) == 0 {
		return nil, fmt.Errorf("generator output missing ingredients")
	}

	for _, v := range pickList(obj, "instructions", "steps", "directions", "method") {
		if step := instructionText(v); step != "" {
			meal.Instructions = append(meal.Instructions, step)
		}
	}

	return meal, nil
}

// normalizeIngredientValue 食材項目可能是字串或物件
func normalizeIngredientValue(v interface{}) common.IngredientLine {
	switch t := v.(type) {
	case string:
		return ParseIngredientText(t)
	case map[string]interface{}:
		line := common.IngredientLine{
			Name: pickString(t, "name", "ingredient", "item"),
			Unit: pickString(t, "unit", "measure", "measurement"),
		}
		// 數量可能是數值或 "1/2" 這類文字
		if q := pickNumber(t, "quantity", "amount", "qty"); q > 0 {
			line.Quantity = q
		} else if qs := pickString(t, "quantity", "amount", "qty"); qs != "" {
			if parsed, ok := ParseQuantity(qs); ok {
				line.Quantity = parsed
			}
		}
		return FixIngredientLine(line)
	default:
		return common.IngredientLine{}
	}
}

// instructionText 指令項目可能是字串或帶描述的物件
func instructionText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		return pickString(t, "description", "text", "step", "instruction")
	default:
		return ""
	}
}

// pickString 依序嘗試多個欄位名稱
func pickString(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// pickNumber 依序嘗試多個欄位名稱，容忍字串形式的數字
func pickNumber(obj map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f
			}
		default:
			// json.Decoder UseNumber
			if n, ok := v.(interface{ Float64() (float64, error) }); ok {
				if f, err := n.Float64(); err == nil {
					return f
				}
			}
		}
	}
	return 0
}

// pickList 依序嘗試多個欄位名稱取出陣列
func pickList(obj map[string]interface{}, keys ...string) []interface{} {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if list, ok := v.([]interface{}); ok {
				return list
			}
		}
	}
	return nil
}

// pickStringList 取出字串陣列
func pickStringList(obj map[string]interface{}, keys ...string) []string {
	var out []string
	for _, v := range pickList(obj, keys...) {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
