package common

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SlotType 餐別
type SlotType string

const (
	SlotBreakfast SlotType = "breakfast"
	SlotLunch     SlotType = "lunch"
	SlotDinner    SlotType = "dinner"
	SlotSnack     SlotType = "snack"
)

// IsMainMeal 是否為正餐（非點心）
func (s SlotType) IsMainMeal() bool {
	return s == SlotBreakfast || s == SlotLunch || s == SlotDinner
}

// GenerationMode 計畫生成模式
type GenerationMode string

const (
	ModeAIVaried  GenerationMode = "ai-varied"  // 每個 slot 都由生成器產生
	ModeRepeatOne GenerationMode = "repeat-one" // 每個餐別只生成一次後重複
	ModeFixedMenu GenerationMode = "fixed-menu" // 只從模板池挑選
)

// IngredientLine 食材行（名稱、數量、單位）
type IngredientLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// MacroTotals 營養素總計
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Nutrition 單一餐點的營養資訊
type Nutrition struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	VegetableCups float64 `json:"vegetable_cups"`
}

// CandidateMeal 候選餐點
// 從池中取出後視為不可變；修復迴圈只改複本，不改池內原件
type CandidateMeal struct {
	ID           string           `json:"id"`
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	SlotType     SlotType         `json:"slot_type"`
	Nutrition    Nutrition        `json:"nutrition"`
	DietTags     []string         `json:"diet_tags,omitempty"`
	Badges       []string         `json:"badges,omitempty"`
	Allergens    []string         `json:"allergens,omitempty"`
	Ingredients  []IngredientLine `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	PrepMinutes  int              `json:"prep_minutes"`
	CookMinutes  int              `json:"cook_minutes"`
	Servings     int              `json:"servings"`
	Cuisine      string           `json:"cuisine,omitempty"`
	Difficulty   string           `json:"difficulty,omitempty"`
	Generated    bool             `json:"generated,omitempty"` // 由外部生成器產生（非模板）
}

// Clone 深拷貝候選餐點
func (m *CandidateMeal) Clone() *CandidateMeal {
	cp := *m
	cp.DietTags = append([]string(nil), m.DietTags...)
	cp.Badges = append([]string(nil), m.Badges...)
	cp.Allergens = append([]string(nil), m.Allergens...)
	cp.Ingredients = append([]IngredientLine(nil), m.Ingredients...)
	cp.Instructions = append([]string(nil), m.Instructions...)
	return &cp
}

// IngredientNames 取出食材名稱列表（小寫）
func (m *CandidateMeal) IngredientNames() []string {
	names := make([]string, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		names = append(names, strings.ToLower(strings.TrimSpace(ing.Name)))
	}
	return names
}

// TotalMinutes 準備加烹飪時間
func (m *CandidateMeal) TotalMinutes() int {
	return m.PrepMinutes + m.CookMinutes
}

// MacroTargets 每餐營養目標
type MacroTargets struct {
	Calories     float64 `json:"calories"`
	ProteinFloor float64 `json:"protein_floor"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
}

// ConstraintProfile 使用者限制檔案（由 onboarding 協作者提供，核心只讀）
type ConstraintProfile struct {
	Allergies    []string     `json:"allergies"`
	AvoidList    []string     `json:"avoid_list"`
	MustInclude  []string     `json:"must_include"`
	NoMeat       bool         `json:"no_meat"`
	NoFish       bool         `json:"no_fish"`
	NoDairy      bool         `json:"no_dairy"`
	NoEgg        bool         `json:"no_egg"`
	NoVegetable  bool         `json:"no_vegetable"`
	NoFruit      bool         `json:"no_fruit"`
	MealTargets  MacroTargets `json:"meal_targets"`
	Kosher       bool         `json:"kosher"`
	Halal        bool         `json:"halal"`
	LowFODMAP    bool         `json:"low_fodmap"`
	Cuisines     []string     `json:"cuisines"`
	MedicalFlags []string     `json:"medical_flags"`
}

// PreferenceSet 偏好集合（口味偏好與目標）
type PreferenceSet struct {
	LikedIngredients []string `json:"liked_ingredients"`
	Goal             string   `json:"goal"` // loss | maintain | gain
}

// ScheduleSlot 排程中的一個 (餐別, 時間)
type ScheduleSlot struct {
	Slot SlotType `json:"slot"`
	Time string   `json:"time,omitempty"`
}

// PlanRequest 計畫生成請求
type PlanRequest struct {
	UserID       string             `json:"user_id"`
	Weeks        int                `json:"weeks"`
	MealsPerDay  int                `json:"meals_per_day"`
	SnacksPerDay int                `json:"snacks_per_day"`
	Targets      MacroTargets       `json:"targets"`
	MedicalFlags []string           `json:"medical_flags,omitempty"`
	Allergens    []string           `json:"allergens,omitempty"`
	Schedule     []ScheduleSlot     `json:"schedule,omitempty"`
	Mode         GenerationMode     `json:"mode,omitempty"`
	Craving      string             `json:"craving,omitempty"`
	Profile      *ConstraintProfile `json:"profile,omitempty"`
	Preferences  PreferenceSet      `json:"preferences"`
}

// CanonicalSchedule 排程指紋：slot/time 組合排序後串接，空白一律剃除
func (r *PlanRequest) CanonicalSchedule() string {
	pairs := make([]string, 0, len(r.Schedule))
	for _, s := range r.Schedule {
		slot := strings.ToLower(strings.TrimSpace(string(s.Slot)))
		t := strings.Join(strings.Fields(s.Time), "")
		pairs = append(pairs, slot+"@"+t)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// PlanSlot 計畫中的一個 slot，綁定恰好一個餐點
type PlanSlot struct {
	Slot SlotType       `json:"slot"`
	Time string         `json:"time,omitempty"`
	Meal *CandidateMeal `json:"meal"`
}

// PlanDay 計畫中的一天
type PlanDay struct {
	Day   int        `json:"day"`
	Slots []PlanSlot `json:"slots"`
}

// PlanWeek 計畫中的一週
type PlanWeek struct {
	Week int       `json:"week"`
	Days []PlanDay `json:"days"`
}

// PlanMeta 計畫統計資訊
type PlanMeta struct {
	UniqueIngredients int           `json:"unique_ingredients"`
	RepeatCount       int           `json:"repeat_count"`
	CuisineDiversity  int           `json:"cuisine_diversity"`
	MacroHitPercent   float64       `json:"macro_hit_percent"`
	GenerationLatency time.Duration `json:"generation_latency"`
	CapsMet           bool          `json:"caps_met"`
	PoolTier          int           `json:"pool_tier,omitempty"` // 最寬鬆使用到的放寬層級
}

// AssembledPlan 組裝完成的計畫
type AssembledPlan struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Mode      GenerationMode `json:"mode"`
	Weeks     []PlanWeek     `json:"weeks"`
	Meta      PlanMeta       `json:"meta"`
	CreatedAt time.Time      `json:"created_at"`
}

// Clone 計畫的深度副本，週、天、slot 與餐點全部獨立
func (p *AssembledPlan) Clone() *AssembledPlan {
	cp := *p
	cp.Weeks = make([]PlanWeek, len(p.Weeks))
	for wi, week := range p.Weeks {
		wc := week
		wc.Days = make([]PlanDay, len(week.Days))
		for di, day := range week.Days {
			dc := day
			dc.Slots = make([]PlanSlot, len(day.Slots))
			for si, slot := range day.Slots {
				sc := slot
				if slot.Meal != nil {
					sc.Meal = slot.Meal.Clone()
				}
				dc.Slots[si] = sc
			}
			wc.Days[di] = dc
		}
		cp.Weeks[wi] = wc
	}
	return &cp
}

// EachSlot 走訪計畫中所有 slot
func (p *AssembledPlan) EachSlot(fn func(week, day int, slot *PlanSlot)) {
	for wi := range p.Weeks {
		for di := range p.Weeks[wi].Days {
			for si := range p.Weeks[wi].Days[di].Slots {
				fn(wi, di, &p.Weeks[wi].Days[di].Slots[si])
			}
		}
	}
}

// SlotDescriptor 指定要重生的 slot
type SlotDescriptor struct {
	Week    int      `json:"week"`
	Day     int      `json:"day"`
	Slot    SlotType `json:"slot"`
	Craving string   `json:"craving,omitempty"`
}

// FormatIngredientLines 將食材行轉換為格式化的字符串
func FormatIngredientLines(ingredients []IngredientLine) string {
	if len(ingredients) == 0 {
		return ""
	}

	var parts []string
	for _, ing := range ingredients {
		part := ing.Name
		if ing.Quantity > 0 {
			part += fmt.Sprintf(" %g%s", ing.Quantity, ing.Unit)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "、")
}
