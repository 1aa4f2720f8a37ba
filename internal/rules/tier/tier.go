// Package tier содержит статическую таблицу тарифов и функций продукта.
//
// Тарифы упорядочены: trial < initiation < reflection < liberation.
// Функция доступна тарифу, если его позиция не ниже минимального тарифа функции.
// Любой неизвестный тариф или функция считается недоступной.
package tier

// Tier — уровень подписки.
type Tier string

const (
	Trial      Tier = "trial"
	Initiation Tier = "initiation"
	Reflection Tier = "reflection"
	Liberation Tier = "liberation"
)

// Order — фиксированный порядок тарифов от младшего к старшему.
var Order = []Tier{Trial, Initiation, Reflection, Liberation}

// Feature — ключ функции, разделяемый между сервером и UI.
type Feature string

const (
	BasicVows         Feature = "basic_vows"
	UnlimitedVows     Feature = "unlimited_vows"
	DailyReflections  Feature = "daily_reflections"
	TriggerLogging    Feature = "trigger_logging"
	AIInsights        Feature = "ai_insights"
	StreakRecovery    Feature = "streak_recovery"
	AdvancedAnalytics Feature = "advanced_analytics"
	GuidedCourses     Feature = "guided_courses"
	IdentityProfile   Feature = "identity_profile"
	DataExport        Feature = "data_export"
	PrioritySupport   Feature = "priority_support"
)

// Info описывает тариф: отображаемое имя, цену в месяц и набор функций.
type Info struct {
	Name         Tier      `json:"name"`
	DisplayName  string    `json:"display_name"`
	MonthlyPrice *float64  `json:"monthly_price,omitempty"` // nil для пробного периода
	Features     []Feature `json:"features"`
}

// FeatureInfo описывает функцию: имя, минимальный тариф и лимит использования.
type FeatureInfo struct {
	DisplayName string `json:"display_name"`
	MinTier     Tier   `json:"min_tier"`
	Limit       *int   `json:"limit,omitempty"` // nil — без ограничений
}

func price(v float64) *float64 { return &v }
func limit(v int) *int         { return &v }

var features = map[Feature]FeatureInfo{
	BasicVows:         {DisplayName: "Basic Vows", MinTier: Trial, Limit: limit(3)},
	DailyReflections:  {DisplayName: "Daily Reflections", MinTier: Trial},
	TriggerLogging:    {DisplayName: "Trigger Logging", MinTier: Initiation},
	UnlimitedVows:     {DisplayName: "Unlimited Vows", MinTier: Initiation},
	StreakRecovery:    {DisplayName: "Streak Recovery", MinTier: Initiation},
	AIInsights:        {DisplayName: "AI Insights", MinTier: Reflection, Limit: limit(5)},
	AdvancedAnalytics: {DisplayName: "Advanced Analytics", MinTier: Reflection},
	IdentityProfile:   {DisplayName: "Identity Profile", MinTier: Reflection},
	GuidedCourses:     {DisplayName: "Guided Courses", MinTier: Liberation},
	DataExport:        {DisplayName: "Data Export", MinTier: Liberation},
	PrioritySupport:   {DisplayName: "Priority Support", MinTier: Liberation},
}

var tiers = map[Tier]Info{
	Trial: {
		Name:        Trial,
		DisplayName: "Free Trial",
		Features:    []Feature{BasicVows, DailyReflections},
	},
	Initiation: {
		Name:         Initiation,
		DisplayName:  "Initiation",
		MonthlyPrice: price(4.99),
		Features:     []Feature{BasicVows, DailyReflections, TriggerLogging, UnlimitedVows, StreakRecovery},
	},
	Reflection: {
		Name:         Reflection,
		DisplayName:  "Reflection",
		MonthlyPrice: price(9.99),
		Features: []Feature{BasicVows, DailyReflections, TriggerLogging, UnlimitedVows, StreakRecovery,
			AIInsights, AdvancedAnalytics, IdentityProfile},
	},
	Liberation: {
		Name:         Liberation,
		DisplayName:  "Liberation",
		MonthlyPrice: price(19.99),
		Features: []Feature{BasicVows, DailyReflections, TriggerLogging, UnlimitedVows, StreakRecovery,
			AIInsights, AdvancedAnalytics, IdentityProfile, GuidedCourses, DataExport, PrioritySupport},
	},
}

// ParseTier преобразует строку в Tier. Неизвестная строка возвращает false.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	_, ok := tiers[t]
	return t, ok
}

// ParseFeature преобразует строку в Feature. Неизвестный ключ возвращает false.
func ParseFeature(s string) (Feature, bool) {
	f := Feature(s)
	_, ok := features[f]
	return f, ok
}

// Rank возвращает позицию тарифа в Order или -1 для неизвестного тарифа.
func Rank(t Tier) int {
	for i, o := range Order {
		if o == t {
			return i
		}
	}
	return -1
}

// Lookup возвращает описание тарифа.
func Lookup(t Tier) (Info, bool) {
	info, ok := tiers[t]
	return info, ok
}

// LookupFeature возвращает описание функции.
func LookupFeature(f Feature) (FeatureInfo, bool) {
	info, ok := features[f]
	return info, ok
}

// All возвращает описания всех тарифов в порядке Order.
func All() []Info {
	res := make([]Info, 0, len(Order))
	for _, t := range Order {
		res = append(res, tiers[t])
	}
	return res
}

// HasFeatureAccess сообщает, открывает ли тариф t функцию f.
func HasFeatureAccess(t Tier, f Feature) bool {
	info, ok := features[f]
	if !ok {
		return false
	}
	rank := Rank(t)
	if rank < 0 {
		return false
	}
	return rank >= Rank(info.MinTier)
}

// FeatureLimit возвращает лимит использования функции для тарифа.
// limited == false означает отсутствие ограничения. Если у тарифа нет
// доступа к функции, возвращается 0, true даже при настроенном лимите.
func FeatureLimit(t Tier, f Feature) (n int, limited bool) {
	if !HasFeatureAccess(t, f) {
		return 0, true
	}
	info := features[f]
	if info.Limit == nil {
		return 0, false
	}
	return *info.Limit, true
}

// UpgradeTarget возвращает минимальный тариф, открывающий функцию.
func UpgradeTarget(f Feature) (Tier, bool) {
	info, ok := features[f]
	if !ok {
		return "", false
	}
	return info.MinTier, true
}
