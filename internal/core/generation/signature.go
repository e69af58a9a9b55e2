package generation

import (
	"strings"
	"sync"

	"mealplan-generator/internal/pkg/common"
)

// 內容簽名只用於重複判斷，不是餐點身分，不落地保存

const signatureIngredients = 5

// Signature 計算餐點的內容簽名：小寫名稱 + 前五個食材名稱
func Signature(m *common.CandidateMeal) string {
	parts := make([]string, 0, signatureIngredients+1)
	parts = append(parts, strings.ToLower(strings.TrimSpace(m.Name)))

	names := m.IngredientNames()
	if len(names) > signatureIngredients {
		names = names[:signatureIngredients]
	}
	parts = append(parts, names...)

	return strings.Join(parts, "|")
}

// SeenSet 單一組裝批次內的本地去重集合
type SeenSet struct {
	mu  sync.Mutex
	set map[string]bool
}

// NewSeenSet 創建批次去重集合
func NewSeenSet() *SeenSet {
	return &SeenSet{set: make(map[string]bool)}
}

// Contains 簽名是否已出現過
func (s *SeenSet) Contains(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set[sig]
}

// Add 記錄簽名
func (s *SeenSet) Add(sig string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[sig] = true
}

// AddIfAbsent 單一臨界區內檢查並記錄簽名
// 已存在時回傳 false；平行生成同一天的 slot 時避免兩邊同時放行同一道菜
func (s *SeenSet) AddIfAbsent(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set[sig] {
		return false
	}
	s.set[sig] = true
	return true
}

// Signatures 取出全部簽名（計畫完成後寫入變化記憶用）
func (s *SeenSet) Signatures() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.set))
	for sig := range s.set {
		out = append(out, sig)
	}
	return out
}
