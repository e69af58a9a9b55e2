package nutrition

import (
	"strings"

	"mealplan-generator/internal/pkg/common"
)

// 同義詞表：過敏原、食物群、飲食規範的關鍵字都在這裡維護
// 判斷一律用小寫子字串比對，食材名稱先經 normalizeTerm 處理

// FoodGroup 食物群
type FoodGroup string

const (
	GroupMeat      FoodGroup = "meat"
	GroupFish      FoodGroup = "fish"
	GroupDairy     FoodGroup = "dairy"
	GroupEgg       FoodGroup = "egg"
	GroupVegetable FoodGroup = "vegetable"
	GroupFruit     FoodGroup = "fruit"
)

// allergenSynonyms 過敏原同義詞表
var allergenSynonyms = map[string][]string{
	"peanut":    {"peanut", "peanuts", "groundnut", "peanut butter", "peanut oil", "arachis"},
	"tree nut":  {"almond", "walnut", "cashew", "pecan", "pistachio", "hazelnut", "macadamia", "brazil nut", "pine nut", "nut butter"},
	"dairy":     {"milk", "cheese", "butter", "cream", "yogurt", "yoghurt", "whey", "casein", "ghee", "mozzarella", "parmesan", "ricotta", "feta", "kefir"},
	"egg":       {"egg", "eggs", "mayonnaise", "mayo", "albumin", "meringue", "aioli"},
	"gluten":    {"wheat", "barley", "rye", "flour", "bread", "pasta", "noodle", "couscous", "seitan", "cracker", "tortilla", "breadcrumb"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "clam", "mussel", "oyster", "scallop", "crawfish", "squid", "calamari"},
	"fish":      {"salmon", "tuna", "cod", "tilapia", "anchovy", "sardine", "halibut", "trout", "mackerel", "bass", "fish sauce"},
	"soy":       {"soy", "soybean", "tofu", "edamame", "tempeh", "soy sauce", "miso", "tamari"},
	"sesame":    {"sesame", "tahini", "sesame oil", "sesame seed"},
}

// foodGroups 食物群關鍵字表
var foodGroups = map[FoodGroup][]string{
	GroupMeat:      {"chicken", "beef", "pork", "lamb", "turkey", "bacon", "ham", "sausage", "veal", "duck", "steak", "ground meat", "meatball", "prosciutto", "salami", "chorizo"},
	GroupFish:      {"salmon", "tuna", "cod", "tilapia", "anchovy", "sardine", "halibut", "trout", "mackerel", "shrimp", "prawn", "crab", "lobster", "scallop", "fish"},
	GroupDairy:     {"milk", "cheese", "butter", "cream", "yogurt", "yoghurt", "whey", "ghee", "mozzarella", "parmesan", "ricotta", "feta", "kefir", "cottage cheese"},
	GroupEgg:       {"egg", "eggs", "mayonnaise", "meringue", "frittata", "omelet", "omelette"},
	GroupVegetable: {"broccoli", "spinach", "carrot", "kale", "zucchini", "pepper", "onion", "tomato", "cucumber", "lettuce", "cabbage", "cauliflower", "asparagus", "celery", "mushroom", "pea", "green bean", "eggplant", "squash", "beet"},
	GroupFruit:     {"apple", "banana", "orange", "berry", "berries", "strawberry", "blueberry", "raspberry", "mango", "pineapple", "grape", "peach", "pear", "melon", "watermelon", "kiwi", "cherry", "plum", "apricot"},
}

// 飲食規範關鍵字
var (
	porkTerms    = []string{"pork", "bacon", "ham", "prosciutto", "lard", "pancetta", "chorizo", "pepperoni", "salami"}
	alcoholTerms = []string{"wine", "beer", "rum", "vodka", "whiskey", "brandy", "sake", "mirin", "liqueur", "bourbon", "sherry", "alcohol"}

	// 常見低 FODMAP 飲食的觸發食材
	fodmapTriggers = []string{"onion", "garlic", "wheat", "honey", "apple", "pear", "watermelon", "mango", "cauliflower", "mushroom", "black bean", "kidney bean", "lentil", "chickpea", "cashew", "pistachio", "milk", "ice cream", "agave", "high fructose", "sorbitol"}

	// 稀有食材（週上限用）
	exoticTerms = []string{"saffron", "truffle", "quail", "duck", "lobster", "caviar", "venison", "octopus", "oxtail", "foie gras", "wagyu", "uni", "escargot", "rabbit", "sumac", "yuzu", "galangal"}
)

// normalizeTerm 比對前的正規化
func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// termMatches 食材名稱是否命中關鍵字
func termMatches(ingredient, term string) bool {
	ing := normalizeTerm(ingredient)
	t := normalizeTerm(term)
	if ing == "" || t == "" {
		return false
	}
	return strings.Contains(ing, t)
}

// matchAny 食材列表中第一個命中的 (食材, 關鍵字)
func matchAny(ingredients []string, terms []string) (string, bool) {
	for _, ing := range ingredients {
		for _, t := range terms {
			if termMatches(ing, t) {
				return ing, true
			}
		}
	}
	return "", false
}

// AllergenSynonyms 取得過敏原的同義詞（含過敏原本名）
func AllergenSynonyms(allergen string) []string {
	key := normalizeTerm(allergen)
	// 容忍複數形式，如 "peanuts"
	syns, ok := allergenSynonyms[key]
	if !ok {
		syns, ok = allergenSynonyms[strings.TrimSuffix(key, "s")]
	}
	if !ok {
		// 未知過敏原仍以本名比對，寧可多擋不可漏擋
		return []string{key}
	}
	out := make([]string, 0, len(syns)+1)
	out = append(out, key)
	out = append(out, syns...)
	return out
}

// AllergenHit 檢查食材列表是否命中任一過敏原，回傳第一個命中的食材
func AllergenHit(ingredients []string, allergies []string) (string, bool) {
	for _, allergen := range allergies {
		if hit, ok := matchAny(ingredients, AllergenSynonyms(allergen)); ok {
			return hit, true
		}
	}
	return "", false
}

// ContainsGroup 食材列表是否含有指定食物群
func ContainsGroup(ingredients []string, group FoodGroup) bool {
	terms, ok := foodGroups[group]
	if !ok {
		return false
	}
	_, hit := matchAny(ingredients, terms)
	return hit
}

// KosherViolation 猶太潔食檢查：豬肉、貝類、肉與奶同餐
func KosherViolation(ingredients []string) (string, bool) {
	if hit, ok := matchAny(ingredients, porkTerms); ok {
		return hit + " (pork)", true
	}
	if hit, ok := matchAny(ingredients, allergenSynonyms["shellfish"]); ok {
		return hit + " (shellfish)", true
	}
	if ContainsGroup(ingredients, GroupMeat) && ContainsGroup(ingredients, GroupDairy) {
		return "meat and dairy together", true
	}
	return "", false
}

// HalalViolation 清真檢查：豬肉、酒精
func HalalViolation(ingredients []string) (string, bool) {
	if hit, ok := matchAny(ingredients, porkTerms); ok {
		return hit + " (pork)", true
	}
	if hit, ok := matchAny(ingredients, alcoholTerms); ok {
		return hit + " (alcohol)", true
	}
	return "", false
}

// FODMAPViolation 低 FODMAP 觸發食材檢查
func FODMAPViolation(ingredients []string) (string, bool) {
	return matchAny(ingredients, fodmapTriggers)
}

// AvoidHit 使用者避免清單檢查
func AvoidHit(ingredients []string, avoid []string) (string, bool) {
	for _, term := range avoid {
		if hit, ok := matchAny(ingredients, []string{term}); ok {
			return hit, true
		}
	}
	return "", false
}

// medicalBannedTerms 醫療旗標對應的禁用食材關鍵字
var medicalBannedTerms = map[string][]string{
	"diabetes":     {"sugar", "syrup", "honey", "candy", "soda", "agave", "molasses"},
	"hypertension": {"soy sauce", "bacon", "ham", "sausage", "salami", "pickle", "cured", "canned soup"},
	"celiac":       {"wheat", "barley", "rye", "flour", "bread", "pasta", "couscous", "seitan"},
	"gout":         {"organ meat", "liver", "anchovy", "sardine", "kidney"},
}

// MedicalHit 醫療旗標禁用食材檢查
func MedicalHit(ingredients []string, medicalFlags []string) (string, bool) {
	for _, flag := range medicalFlags {
		banned, ok := medicalBannedTerms[normalizeTerm(flag)]
		if !ok {
			continue
		}
		if hit, found := matchAny(ingredients, banned); found {
			return hit, true
		}
	}
	return "", false
}

// ProfileViolation 硬性安全述語：過敏原、醫療旗標、排除旗標、飲食規範、避免清單
// 回傳第一個違規原因；任何放寬層級都不可跳過這個檢查
func ProfileViolation(ingredients []string, profile *common.ConstraintProfile) (string, bool) {
	if profile == nil {
		return "", false
	}

	if hit, ok := AllergenHit(ingredients, profile.Allergies); ok {
		return "allergen match: " + hit, true
	}
	if hit, ok := MedicalHit(ingredients, profile.MedicalFlags); ok {
		return "medical exclusion: " + hit, true
	}
	if hit, ok := AvoidHit(ingredients, profile.AvoidList); ok {
		return "avoid-list match: " + hit, true
	}

	exclusions := []struct {
		enabled bool
		group   FoodGroup
	}{
		{profile.NoMeat, GroupMeat},
		{profile.NoFish, GroupFish},
		{profile.NoDairy, GroupDairy},
		{profile.NoEgg, GroupEgg},
		{profile.NoVegetable, GroupVegetable},
		{profile.NoFruit, GroupFruit},
	}
	for _, ex := range exclusions {
		if ex.enabled && ContainsGroup(ingredients, ex.group) {
			return "excluded food group: " + string(ex.group), true
		}
	}

	if profile.Kosher {
		if hit, ok := KosherViolation(ingredients); ok {
			return "kosher violation: " + hit, true
		}
	}
	if profile.Halal {
		if hit, ok := HalalViolation(ingredients); ok {
			return "halal violation: " + hit, true
		}
	}
	if profile.LowFODMAP {
		if hit, ok := FODMAPViolation(ingredients); ok {
			return "low-FODMAP trigger: " + hit, true
		}
	}

	return "", false
}

// IsExotic 是否為稀有食材
func IsExotic(ingredient string) bool {
	for _, t := range exoticTerms {
		if termMatches(ingredient, t) {
			return true
		}
	}
	return false
}

// ExoticCount 計算稀有食材數
func ExoticCount(ingredients []string) int {
	count := 0
	for _, ing := range ingredients {
		if IsExotic(ing) {
			count++
		}
	}
	return count
}
