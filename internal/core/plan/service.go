package plan

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mealplan-generator/internal/core/generation"
	"mealplan-generator/internal/core/nutrition"
	"mealplan-generator/internal/core/plan/cache"
	"mealplan-generator/internal/core/variety"
	"mealplan-generator/internal/infrastructure/config"
	"mealplan-generator/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 計畫服務：池過濾、評分、組裝、生成管線與快取的總協調
type Service struct {
	config    *config.Config
	pool      *PoolBuilder
	assembler *Assembler
	pipeline  *generation.Pipeline
	variety   variety.Store
	cache     *cache.Manager
	templates []*common.CandidateMeal
}

// NewService 創建計畫服務
// gen 為 nil 時（生成器未啟用）一律退回模板模式
func NewService(cfg *config.Config, gen generation.Generator, store variety.Store, cacheManager *cache.Manager) *Service {
	s := &Service{
		config:    cfg,
		pool:      NewPoolBuilder(cfg),
		assembler: NewAssembler(cfg),
		variety:   store,
		cache:     cacheManager,
		templates: Catalog(),
	}
	if gen != nil {
		s.pipeline = generation.NewPipeline(cfg, gen, store)
	}
	return s
}

// BuildPlan 生成完整計畫
func (s *Service) BuildPlan(ctx context.Context, req *common.PlanRequest) (*common.AssembledPlan, error) {
	start := time.Now()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	applyDefaults(req)

	key := cache.Key(req)
	if s.cache != nil {
		if plan, ok := s.cache.Get(key); ok {
			return plan, nil
		}
	}

	profile := effectiveProfile(req)
	mode := req.Mode
	if s.pipeline == nil && mode != common.ModeFixedMenu {
		common.LogWarn("生成器未啟用，退回模板模式",
			zap.String("requested_mode", string(mode)),
			zap.String("user_id", req.UserID),
		)
		mode = common.ModeFixedMenu
	}

	var (
		weeks    []common.PlanWeek
		capsMet  = true
		poolTier int
		err      error
	)

	switch mode {
	case common.ModeFixedMenu:
		weeks, capsMet, poolTier, err = s.buildFromTemplates(req, profile)
	case common.ModeRepeatOne:
		weeks, err = s.buildRepeatOne(ctx, req, profile)
	default:
		weeks, err = s.buildAIVaried(ctx, req, profile)
	}
	if err != nil {
		return nil, err
	}

	if !capsMet && s.config.Planner.StrictVariety {
		return nil, common.NewError("VARIETY_UNSATISFIED",
			"無法在修復上限內滿足變化目標", http.StatusUnprocessableEntity, nil)
	}

	plan := &common.AssembledPlan{
		ID:        common.GenerateUUID(),
		UserID:    req.UserID,
		Mode:      mode,
		Weeks:     weeks,
		CreatedAt: time.Now(),
	}
	plan.Meta = s.computeMeta(plan, req, capsMet, poolTier, time.Since(start))

	// 簽名只在整份計畫成功後寫入，取消或失敗的批次不污染記憶
	s.rememberSignatures(ctx, plan)

	if s.cache != nil && ctx.Err() == nil {
		s.cache.Set(key, plan)
	}

	common.LogInfo("計畫生成完成",
		zap.String("user_id", req.UserID),
		zap.String("mode", string(mode)),
		zap.Int("weeks", len(weeks)),
		zap.Bool("caps_met", plan.Meta.CapsMet),
		zap.Duration("latency", plan.Meta.GenerationLatency),
	)
	return plan, nil
}

// RegenerateSlot 重生計畫中單一 slot，其餘 slot 原封不動
func (s *Service) RegenerateSlot(ctx context.Context, plan *common.AssembledPlan, desc common.SlotDescriptor, profile *common.ConstraintProfile) (*common.AssembledPlan, error) {
	if plan == nil {
		return nil, common.ErrInvalidRequest
	}
	target := findSlot(plan, desc)
	if target == nil {
		return nil, common.ErrNotFound
	}
	if profile == nil {
		profile = &common.ConstraintProfile{}
	}

	var meal *common.CandidateMeal
	if s.pipeline != nil {
		// 現有計畫的所有簽名都算已見，避免重生出同一道菜
		seen := generation.NewSeenSet()
		plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
			if slot.Meal != nil {
				seen.Add(generation.Signature(slot.Meal))
			}
		})
		var err error
		meal, err = s.pipeline.GenerateSlotMeal(ctx, plan.UserID, desc.Slot, desc.Craving, profile, seen)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		meal, err = s.pickTemplateReplacement(plan, desc, profile)
		if err != nil {
			return nil, err
		}
	}

	target.Meal = meal
	plan.Meta = s.computeMeta(plan, nil, plan.Meta.CapsMet, plan.Meta.PoolTier, plan.Meta.GenerationLatency)

	if s.variety != nil && meal.Generated {
		s.variety.Remember(ctx, plan.UserID, generation.Signature(meal))
	}

	common.LogInfo("單一 slot 重生完成",
		zap.String("user_id", plan.UserID),
		zap.String("slot", string(desc.Slot)),
		zap.String("meal", meal.Name),
	)
	return plan, nil
}

// buildFromTemplates 模板路徑：池過濾、評分、逐週組裝
func (s *Service) buildFromTemplates(req *common.PlanRequest, profile *common.ConstraintProfile) ([]common.PlanWeek, bool, int, error) {
	pools := make(map[common.SlotType][]ScoredMeal)
	tier := 0
	for _, st := range distinctSlots(req) {
		result := s.pool.Build(s.templates, profile, st)
		if len(result.Meals) == 0 {
			return nil, false, 0, common.ErrPoolExhausted
		}
		if result.Tier > tier {
			tier = result.Tier
		}
		pools[st] = ScorePool(result.Meals, req.Preferences)
	}

	capsMet := true
	weeks := make([]common.PlanWeek, 0, req.Weeks)
	times := scheduleTimes(req)
	for w := 1; w <= req.Weeks; w++ {
		week, ok := s.assembler.AssembleWeek(w, pools, req.MealsPerDay, req.SnacksPerDay)
		if !ok {
			capsMet = false
		}
		applyScheduleTimes(week, times)
		weeks = append(weeks, *week)
	}
	return weeks, capsMet, tier, nil
}

// buildAIVaried 生成路徑：逐天前進，同一天內各 slot 平行生成
func (s *Service) buildAIVaried(ctx context.Context, req *common.PlanRequest, profile *common.ConstraintProfile) ([]common.PlanWeek, error) {
	seen := generation.NewSeenSet()
	slots := daySlots(req.MealsPerDay, req.SnacksPerDay)
	times := scheduleTimes(req)

	weeks := make([]common.PlanWeek, 0, req.Weeks)
	for w := 1; w <= req.Weeks; w++ {
		week := common.PlanWeek{Week: w}
		for d := 1; d <= 7; d++ {
			planSlots := make([]common.PlanSlot, len(slots))
			g, gctx := errgroup.WithContext(ctx)
			for i, st := range slots {
				i, st := i, st
				g.Go(func() error {
					meal, err := s.pipeline.GenerateSlotMeal(gctx, req.UserID, st, req.Craving, profile, seen)
					if err != nil {
						return err
					}
					planSlots[i] = common.PlanSlot{Slot: st, Time: times[st], Meal: meal}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}
			week.Days = append(week.Days, common.PlanDay{Day: d, Slots: planSlots})
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// buildRepeatOne 每個餐別只生成一次，之後整週重複同一道
func (s *Service) buildRepeatOne(ctx context.Context, req *common.PlanRequest, profile *common.ConstraintProfile) ([]common.PlanWeek, error) {
	seen := generation.NewSeenSet()
	slots := daySlots(req.MealsPerDay, req.SnacksPerDay)
	times := scheduleTimes(req)

	base := make(map[common.SlotType]*common.CandidateMeal)
	for _, st := range slots {
		if _, ok := base[st]; ok {
			continue
		}
		meal, err := s.pipeline.GenerateSlotMeal(ctx, req.UserID, st, req.Craving, profile, seen)
		if err != nil {
			return nil, err
		}
		base[st] = meal
	}

	weeks := make([]common.PlanWeek, 0, req.Weeks)
	for w := 1; w <= req.Weeks; w++ {
		week := common.PlanWeek{Week: w}
		for d := 1; d <= 7; d++ {
			planSlots := make([]common.PlanSlot, 0, len(slots))
			for _, st := range slots {
				planSlots = append(planSlots, common.PlanSlot{Slot: st, Time: times[st], Meal: base[st].Clone()})
			}
			week.Days = append(week.Days, common.PlanDay{Day: d, Slots: planSlots})
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// pickTemplateReplacement 生成器不可用時，從模板池挑一道計畫裡還沒出現的
func (s *Service) pickTemplateReplacement(plan *common.AssembledPlan, desc common.SlotDescriptor, profile *common.ConstraintProfile) (*common.CandidateMeal, error) {
	result := s.pool.Build(s.templates, profile, desc.Slot)
	if len(result.Meals) == 0 {
		return nil, common.ErrPoolExhausted
	}

	used := make(map[string]bool)
	plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
		if slot.Meal != nil {
			used[slot.Meal.ID] = true
		}
	})

	scored := ScorePool(result.Meals, common.PreferenceSet{})
	for _, sm := range scored {
		if !used[sm.Meal.ID] {
			return sm.Meal.Clone(), nil
		}
	}
	// 整個池都已在計畫中，接受重複
	return scored[0].Meal.Clone(), nil
}

// rememberSignatures 將生成餐點的簽名寫入跨次變化記憶
func (s *Service) rememberSignatures(ctx context.Context, plan *common.AssembledPlan) {
	if s.variety == nil || ctx.Err() != nil {
		return
	}
	recorded := make(map[string]bool)
	plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
		if slot.Meal == nil || !slot.Meal.Generated {
			return
		}
		sig := generation.Signature(slot.Meal)
		if recorded[sig] {
			return
		}
		recorded[sig] = true
		s.variety.Remember(ctx, plan.UserID, sig)
	})
}

// computeMeta 計算計畫統計資訊
func (s *Service) computeMeta(plan *common.AssembledPlan, req *common.PlanRequest, capsMet bool, poolTier int, latency time.Duration) common.PlanMeta {
	unique := make(map[string]bool)
	nameCount := make(map[string]int)
	cuisines := make(map[string]bool)
	totalSlots := 0
	macroHits := 0

	var target common.MacroTargets
	if req != nil {
		target = req.Targets
	}

	plan.EachSlot(func(_, _ int, slot *common.PlanSlot) {
		if slot.Meal == nil {
			return
		}
		totalSlots++
		for _, name := range slot.Meal.IngredientNames() {
			unique[name] = true
		}
		nameCount[strings.ToLower(slot.Meal.Name)]++
		if c := strings.ToLower(strings.TrimSpace(slot.Meal.Cuisine)); c != "" {
			cuisines[c] = true
		}
		if s.macroHit(slot.Meal, slot.Slot, target) {
			macroHits++
		}
	})

	repeats := 0
	for _, n := range nameCount {
		if n > 1 {
			repeats += n - 1
		}
	}

	hitPercent := 100.0
	if totalSlots > 0 {
		hitPercent = float64(macroHits) / float64(totalSlots) * 100
	}

	return common.PlanMeta{
		UniqueIngredients: len(unique),
		RepeatCount:       repeats,
		CuisineDiversity:  len(cuisines),
		MacroHitPercent:   hitPercent,
		GenerationLatency: latency,
		CapsMet:           capsMet,
		PoolTier:          poolTier,
	}
}

// macroHit 餐點熱量是否落在目標容許範圍內
// 沒有目標或無法估算時視為命中，估不到不倒扣
func (s *Service) macroHit(meal *common.CandidateMeal, slot common.SlotType, target common.MacroTargets) bool {
	if target.Calories <= 0 || !slot.IsMainMeal() {
		return true
	}
	calories := meal.Nutrition.Calories
	if calories <= 0 {
		est := nutrition.EstimateMacros(meal.Ingredients)
		if est == nil {
			return true
		}
		calories = est.Calories
	}
	band := target.Calories * s.config.Generation.MacroBandPct
	return calories >= target.Calories-band && calories <= target.Calories+band
}

// validateRequest 驗證計畫請求
func validateRequest(req *common.PlanRequest) error {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return common.NewValidationError("user_id is required")
	}
	if req.Weeks < 0 || req.Weeks > 4 {
		return common.NewValidationError("weeks must be between 1 and 4")
	}
	if req.MealsPerDay < 0 || req.MealsPerDay > 3 {
		return common.NewValidationError("meals_per_day must be between 1 and 3")
	}
	if req.SnacksPerDay < 0 || req.SnacksPerDay > 2 {
		return common.NewValidationError("snacks_per_day must be between 0 and 2")
	}
	switch req.Mode {
	case "", common.ModeAIVaried, common.ModeRepeatOne, common.ModeFixedMenu:
	default:
		return common.NewValidationError("unknown generation mode")
	}
	return nil
}

// applyDefaults 填入請求預設值
func applyDefaults(req *common.PlanRequest) {
	if req.Weeks == 0 {
		req.Weeks = 1
	}
	if req.MealsPerDay == 0 {
		req.MealsPerDay = 3
	}
	if req.Mode == "" {
		req.Mode = common.ModeAIVaried
	}
}

// effectiveProfile 合併限制檔案與請求層級的過敏原與醫療旗標
// 限制檔案屬於呼叫端，合併寫在副本上
func effectiveProfile(req *common.PlanRequest) *common.ConstraintProfile {
	profile := &common.ConstraintProfile{}
	if req.Profile != nil {
		cp := *req.Profile
		profile = &cp
	}
	profile.Allergies = mergeLists(profile.Allergies, req.Allergens)
	profile.MedicalFlags = mergeLists(profile.MedicalFlags, req.MedicalFlags)
	if profile.MealTargets.Calories == 0 {
		profile.MealTargets = req.Targets
	}
	return profile
}

// mergeLists 合併並去重（小寫比對）
func mergeLists(a, b []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}

// distinctSlots 請求需要的餐別集合（保序）
func distinctSlots(req *common.PlanRequest) []common.SlotType {
	seen := make(map[common.SlotType]bool)
	out := make([]common.SlotType, 0, 4)
	for _, st := range daySlots(req.MealsPerDay, req.SnacksPerDay) {
		if !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	return out
}

// scheduleTimes 取得每個餐別的排程時間（第一次出現為準）
func scheduleTimes(req *common.PlanRequest) map[common.SlotType]string {
	times := make(map[common.SlotType]string)
	for _, s := range req.Schedule {
		if _, ok := times[s.Slot]; !ok {
			times[s.Slot] = strings.TrimSpace(s.Time)
		}
	}
	return times
}

// applyScheduleTimes 將排程時間套到整週的 slot 上
func applyScheduleTimes(week *common.PlanWeek, times map[common.SlotType]string) {
	if len(times) == 0 {
		return
	}
	for di := range week.Days {
		for si := range week.Days[di].Slots {
			slot := &week.Days[di].Slots[si]
			if t, ok := times[slot.Slot]; ok {
				slot.Time = t
			}
		}
	}
}

// findSlot 依描述找出計畫中的 slot
func findSlot(plan *common.AssembledPlan, desc common.SlotDescriptor) *common.PlanSlot {
	for wi := range plan.Weeks {
		if plan.Weeks[wi].Week != desc.Week {
			continue
		}
		for di := range plan.Weeks[wi].Days {
			if plan.Weeks[wi].Days[di].Day != desc.Day {
				continue
			}
			for si := range plan.Weeks[wi].Days[di].Slots {
				if plan.Weeks[wi].Days[di].Slots[si].Slot == desc.Slot {
					return &plan.Weeks[wi].Days[di].Slots[si]
				}
			}
		}
	}
	return nil
}
