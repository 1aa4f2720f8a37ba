// Package streak вычисляет текущую серию дней с учётом льготных пропусков,
// стоимость восстановления серии и рекомендательные флаги "серия под угрозой".
//
// Серия всегда пересчитывается из полного списка дат активности, поэтому
// функции пакета не имеют состояния и безопасны для конкурентного вызова.
package streak

import (
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/day"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

// HistoryWindow — максимальное число итераций обхода назад.
const HistoryWindow = 365

var maxGrace = map[tier.Tier]int{
	tier.Trial:      0,
	tier.Initiation: 1,
	tier.Reflection: 2,
	tier.Liberation: 3,
}

// MaxGrace возвращает допустимое число льготных дней для тарифа.
func MaxGrace(t tier.Tier) int {
	return maxGrace[t]
}

// State — вычисленное состояние серии.
type State struct {
	Streak    int `json:"streak"`
	GraceUsed int `json:"grace_used"`
}

// CalculateWithGrace считает серию по строковым датам активности.
// Некорректные даты игнорируются.
func CalculateWithGrace(dates []string, t tier.Tier, now time.Time) State {
	return walk(day.Set(dates), MaxGrace(t), now)
}

// CalculateWithGraceTimes — то же, что CalculateWithGrace, для моментов времени.
func CalculateWithGraceTimes(times []time.Time, t tier.Tier, now time.Time) State {
	return walk(day.SetOf(times), MaxGrace(t), now)
}

// walk идёт назад от сегодняшнего дня. Льготный день не сдвигает курсор,
// поэтому следующий шаг снова проверяет тот же пропущенный день.
// Общий лимит graceUsed имеет приоритет над счётчиком подряд идущих пропусков.
func walk(active map[string]struct{}, grace int, now time.Time) State {
	var st State
	misses := 0
	cursor := day.Start(now)

	for i := 0; i < HistoryWindow; i++ {
		if _, ok := active[day.Key(cursor)]; ok {
			st.Streak++
			misses = 0
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}

		misses++
		if misses <= grace && st.GraceUsed < grace {
			st.GraceUsed++
			continue
		}
		break
	}
	return st
}

// GraceRemaining возвращает число неиспользованных льготных дней.
func GraceRemaining(t tier.Tier, graceUsed int) int {
	rem := MaxGrace(t) - graceUsed
	if rem < 0 {
		return 0
	}
	return rem
}
