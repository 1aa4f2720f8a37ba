// Package day содержит вспомогательные функции для работы с календарными днями.
//
// Все вычисления ведутся в UTC, день представляется строкой вида 2006-01-02.
package day

import (
	"strings"
	"time"
)

// Layout — формат ключа календарного дня.
const Layout = "2006-01-02"

var layouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", Layout}

// Key возвращает ключ календарного дня для момента времени.
func Key(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Start возвращает полночь UTC дня, содержащего t.
func Start(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse разбирает дату в одном из поддерживаемых форматов.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Set строит множество ключей дней из строк. Некорректные строки пропускаются.
func Set(dates []string) map[string]struct{} {
	res := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		t, ok := Parse(d)
		if !ok {
			continue
		}
		res[Key(t)] = struct{}{}
	}
	return res
}

// SetOf строит множество ключей дней из моментов времени. Нулевые значения пропускаются.
func SetOf(times []time.Time) map[string]struct{} {
	res := make(map[string]struct{}, len(times))
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		res[Key(t)] = struct{}{}
	}
	return res
}

// Between возвращает количество календарных дней между днями from и to.
func Between(from, to time.Time) int {
	return int(Start(to).Sub(Start(from)) / (24 * time.Hour))
}
