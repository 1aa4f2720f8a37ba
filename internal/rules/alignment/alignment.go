// Package alignment считает показатель соответствия (0–100) и подбирает
// поддерживающее сообщение.
//
// Существуют два независимых варианта расчёта. CountBased используется
// API-слоем и опирается на количество обетов, рефлексий и длину серии.
// RatioBased используется профилем личности и опирается на долю выполненных
// дней обетов. Формулы не взаимозаменяемы.
package alignment

import (
	"math"
	"time"
)

const (
	maxScore = 100

	vowWeight        = 20
	vowCap           = 60
	reflectionWeight = 5
	reflectionCap    = 20
	streakWeight     = 2
	streakCap        = 20

	adherenceWeight  = 60
	engagementWeight = 20
	awarenessWeight  = 20

	// RecentWindow — окно для подсчёта недавних рефлексий.
	RecentWindow = 7 * 24 * time.Hour
)

func clamp(v float64) int {
	s := int(math.Round(v))
	if s < 0 {
		return 0
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

// CountBased считает показатель по количеству активных обетов, рефлексий
// за последние 7 дней и максимальной серии среди обетов.
func CountBased(activeVows, recentReflections, maxStreak int) int {
	sum := min(activeVows*vowWeight, vowCap) +
		min(recentReflections*reflectionWeight, reflectionCap) +
		min(maxStreak*streakWeight, streakCap)
	return clamp(float64(sum))
}

// RatioInputs — входные данные для RatioBased.
type RatioInputs struct {
	TotalVowDays  int // сумма длительностей всех обетов в днях
	CompletedDays int // сумма пройденных дней
	Reflections   int
	Triggers      int
}

func ratio(n, d int) float64 {
	r := float64(n) / float64(d)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// RatioBased считает показатель как долю выполнения ×60, вовлечённость
// в рефлексии ×20 и осознанность по триггерам ×20 относительно общего
// числа дней обетов. При нулевом знаменателе возвращает 0.
func RatioBased(in RatioInputs) int {
	if in.TotalVowDays <= 0 {
		return 0
	}
	adherence := ratio(in.CompletedDays, in.TotalVowDays)
	engagement := ratio(in.Reflections, in.TotalVowDays)
	awareness := ratio(in.Triggers, in.TotalVowDays)
	return clamp(adherence*adherenceWeight + engagement*engagementWeight + awareness*awarenessWeight)
}

// RecentCount возвращает количество моментов, попадающих в последние 7 дней до now.
func RecentCount(times []time.Time, now time.Time) int {
	from := now.Add(-RecentWindow)
	n := 0
	for _, t := range times {
		if !t.Before(from) && !t.After(now) {
			n++
		}
	}
	return n
}
