package plan

import (
	"math/rand"
	"time"

	"mealplan-generator/internal/core/nutrition"
	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
)

const daysPerWeek = 7

// Assembler 週計畫組裝器
type Assembler struct {
	cfg config.PlannerConfig
	rng *rand.Rand
}

// NewAssembler 創建組裝器
func NewAssembler(cfg *config.Config) *Assembler {
	return NewAssemblerWithSeed(cfg, time.Now().UnixNano())
}

// NewAssemblerWithSeed 以固定種子創建（測試用）
func NewAssemblerWithSeed(cfg *config.Config, seed int64) *Assembler {
	return &Assembler{
		cfg: cfg.Planner,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// AssembleWeek 從各餐別的已排序池逐日逐 slot 挑選，並對週上限執行有界修復
// 回傳的 capsMet=false 表示修復迴圈耗盡仍未滿足週上限（盡力而為的結果）
func (a *Assembler) AssembleWeek(week int, pools map[common.SlotType][]ScoredMeal, mealsPerDay, snacksPerDay int) (*common.PlanWeek, bool) {
	recent := make(map[string]bool) // 本週已用過的餐點，每週重置

	out := &common.PlanWeek{Week: week}
	for day := 0; day < daysPerWeek; day++ {
		planDay := common.PlanDay{Day: day + 1}
		for _, slot := range daySlots(mealsPerDay, snacksPerDay) {
			pool := pools[slot]
			if len(pool) == 0 {
				continue // 空池由呼叫端在組裝前擋下，這裡防禦跳過
			}
			pick := a.sample(pool, recent)
			recent[pick.ID] = true
			planDay.Slots = append(planDay.Slots, common.PlanSlot{
				Slot: slot,
				Meal: pick.Clone(), // 池內原件不可變，計畫持有複本
			})
		}
		out.Days = append(out.Days, planDay)
	}

	capsMet := a.repair(out, pools)
	return out, capsMet
}

// daySlots 一天的 slot 順序
func daySlots(mealsPerDay, snacksPerDay int) []common.SlotType {
	mains := []common.SlotType{common.SlotBreakfast, common.SlotLunch, common.SlotDinner}
	if mealsPerDay > len(mains) {
		mealsPerDay = len(mains)
	}
	slots := append([]common.SlotType(nil), mains[:mealsPerDay]...)
	for i := 0; i < snacksPerDay; i++ {
		slots = append(slots, common.SlotSnack)
	}
	return slots
}

// sample 優先挑本週未出現過的候選（依排序），全部都用過時退回任一池成員
func (a *Assembler) sample(pool []ScoredMeal, recent map[string]bool) *common.CandidateMeal {
	for _, s := range pool {
		if !recent[s.Meal.ID] {
			return s.Meal
		}
	}
	return pool[a.rng.Intn(len(pool))].Meal
}

// repair 有界修復迴圈：兩個全域述語都通過或達迭代上限即終止
func (a *Assembler) repair(week *common.PlanWeek, pools map[common.SlotType][]ScoredMeal) bool {
	for iter := 0; iter < a.cfg.RepairIterations; iter++ {
		if a.withinWeeklyCaps(week) && a.meetsVariety(week, pools) {
			return true
		}
		a.replaceRandomSlot(week, pools)
	}

	ok := a.withinWeeklyCaps(week) && a.meetsVariety(week, pools)
	if !ok {
		common.LogWarn("修復迴圈耗盡，回傳盡力而為的週計畫",
			zap.Int("week", week.Week),
			zap.Int("iterations", a.cfg.RepairIterations),
		)
	}
	return ok
}

// withinWeeklyCaps 週上限述語：稀有食材數、不同食材總數
func (a *Assembler) withinWeeklyCaps(week *common.PlanWeek) bool {
	unique := make(map[string]bool)
	exotic := 0
	eachMeal(week, func(m *common.CandidateMeal) {
		for _, name := range m.IngredientNames() {
			if !unique[name] {
				unique[name] = true
				if nutrition.IsExotic(name) {
					exotic++
				}
			}
		}
	})

	if exotic > a.cfg.MaxExoticIngr {
		return false
	}
	if len(unique) > a.cfg.MaxUniqueIngr {
		return false
	}
	return true
}

// meetsVariety 變化述語：單一餐點重複上限、最少不同菜系數
func (a *Assembler) meetsVariety(week *common.PlanWeek, pools map[common.SlotType][]ScoredMeal) bool {
	counts := make(map[string]int)
	cuisines := make(map[string]bool)
	eachMeal(week, func(m *common.CandidateMeal) {
		counts[m.ID]++
		if m.Cuisine != "" {
			cuisines[m.Cuisine] = true
		}
	})

	for _, c := range counts {
		if c > a.cfg.MaxRepeatPerWeek {
			return false
		}
	}

	// 池本身的菜系多樣性不足時不硬性要求，避免述語永遠失敗
	required := a.cfg.MinCuisines
	if avail := availableCuisines(pools); avail < required {
		required = avail
	}
	return len(cuisines) >= required
}

// replaceRandomSlot 隨機挑一個 slot，換成同餐別池中的另一個成員
func (a *Assembler) replaceRandomSlot(week *common.PlanWeek, pools map[common.SlotType][]ScoredMeal) {
	type slotRef struct {
		day, slot int
	}
	var refs []slotRef
	for di := range week.Days {
		for si := range week.Days[di].Slots {
			refs = append(refs, slotRef{di, si})
		}
	}
	if len(refs) == 0 {
		return
	}

	ref := refs[a.rng.Intn(len(refs))]
	current := week.Days[ref.day].Slots[ref.slot]
	pool := pools[current.Slot]
	if len(pool) < 2 {
		return // 沒有可替換的成員
	}

	for tries := 0; tries < len(pool); tries++ {
		candidate := pool[a.rng.Intn(len(pool))].Meal
		if candidate.ID != current.Meal.ID {
			week.Days[ref.day].Slots[ref.slot].Meal = candidate.Clone()
			return
		}
	}
}

// availableCuisines 各池合計的不同菜系數
func availableCuisines(pools map[common.SlotType][]ScoredMeal) int {
	seen := make(map[string]bool)
	for _, pool := range pools {
		for _, s := range pool {
			if s.Meal.Cuisine != "" {
				seen[s.Meal.Cuisine] = true
			}
		}
	}
	return len(seen)
}

// eachMeal 走訪一週內所有餐點
func eachMeal(week *common.PlanWeek, fn func(*common.CandidateMeal)) {
	for di := range week.Days {
		for si := range week.Days[di].Slots {
			if m := week.Days[di].Slots[si].Meal; m != nil {
				fn(m)
			}
		}
	}
}

// WeekStats 供 meta 統計的彙總
type WeekStats struct {
	UniqueIngredients int
	RepeatCount       int
	CuisineDiversity  int
}

// Stats 計算一週的統計
func Stats(week *common.PlanWeek) WeekStats {
	unique := make(map[string]bool)
	counts := make(map[string]int)
	cuisines := make(map[string]bool)
	eachMeal(week, func(m *common.CandidateMeal) {
		counts[m.ID]++
		for _, name := range m.IngredientNames() {
			unique[name] = true
		}
		if m.Cuisine != "" {
			cuisines[m.Cuisine] = true
		}
	})

	repeats := 0
	for _, c := range counts {
		if c > 1 {
			repeats += c - 1
		}
	}
	return WeekStats{
		UniqueIngredients: len(unique),
		RepeatCount:       repeats,
		CuisineDiversity:  len(cuisines),
	}
}
