// Package vow описывает обет пользователя: его инварианты, отметку дня
// и текстовую формулировку вида "I am X; therefore, I will Y.".
package vow

import (
	"errors"
	"strings"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/day"
)

// Status — состояние обета.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusBroken    Status = "broken"
)

var (
	// ErrInvalidDuration — длительность обета должна быть положительной.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrDayOverflow — текущий день больше длительности.
	ErrDayOverflow = errors.New("current day exceeds duration")
	// ErrStreakOverflow — серия больше текущего дня.
	ErrStreakOverflow = errors.New("current streak exceeds current day")
	// ErrNotActive — отмечать можно только активный обет.
	ErrNotActive = errors.New("vow is not active")
	// ErrAlreadyCompletedToday — день уже отмечен.
	ErrAlreadyCompletedToday = errors.New("day already completed today")
)

// Vow — обет пользователя.
type Vow struct {
	ID            string     `json:"id"`
	UserUID       string     `json:"user_uid"`
	Identity      string     `json:"identity"`
	Boundary      string     `json:"boundary"`
	Statement     string     `json:"statement"`
	Duration      int        `json:"duration"`
	CurrentDay    int        `json:"current_day"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
}

// Validate проверяет инварианты: currentDay ≤ duration, currentStreak ≤ currentDay.
func (v *Vow) Validate() error {
	if v.Duration <= 0 {
		return ErrInvalidDuration
	}
	if v.CurrentDay > v.Duration {
		return ErrDayOverflow
	}
	if v.CurrentStreak > v.CurrentDay {
		return ErrStreakOverflow
	}
	return nil
}

// New создаёт активный обет с формулировкой из identity и boundary.
func New(id, userUID, identity, boundary string, duration int, now time.Time) (*Vow, error) {
	v := &Vow{
		ID:        id,
		UserUID:   userUID,
		Identity:  identity,
		Boundary:  boundary,
		Statement: CreateStatement(identity, boundary),
		Duration:  duration,
		Status:    StatusActive,
		CreatedAt: now,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// CompleteDay отмечает выполнение дня. Если предыдущая отметка была не вчера
// и не сегодня, серия начинается заново. На последнем дне обет завершается.
func (v *Vow) CompleteDay(now time.Time) error {
	if v.Status != StatusActive {
		return ErrNotActive
	}
	today := day.Start(now)
	if v.LastCompleted != nil {
		last := day.Start(*v.LastCompleted)
		switch {
		case last.Equal(today):
			return ErrAlreadyCompletedToday
		case !last.AddDate(0, 0, 1).Equal(today):
			v.CurrentStreak = 0
		}
	}

	v.CurrentDay++
	v.CurrentStreak++
	if v.CurrentStreak > v.LongestStreak {
		v.LongestStreak = v.CurrentStreak
	}
	completed := now
	v.LastCompleted = &completed
	if v.CurrentDay >= v.Duration {
		v.CurrentDay = v.Duration
		v.Status = StatusCompleted
	}
	return v.Validate()
}

const (
	statementPrefix = "I am "
	statementJoin   = "; therefore, I will "
	statementEnd    = "."
)

// CreateStatement формирует текст обета.
func CreateStatement(identity, boundary string) string {
	return statementPrefix + identity + statementJoin + boundary + statementEnd
}

// ParseStatement извлекает identity и boundary из текста обета.
// Граница обета заканчивается на первой точке после связки.
func ParseStatement(s string) (identity, boundary string, ok bool) {
	rest, found := strings.CutPrefix(s, statementPrefix)
	if !found {
		return "", "", false
	}
	identity, rest, found = strings.Cut(rest, statementJoin)
	if !found {
		return "", "", false
	}
	boundary, _, found = strings.Cut(rest, statementEnd)
	if !found {
		return "", "", false
	}
	return identity, boundary, true
}
