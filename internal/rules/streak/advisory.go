package streak

import (
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/day"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

// AtRiskAfter — время без активности, после которого серия считается под угрозой.
const AtRiskAfter = 18 * time.Hour

// HoursSince возвращает число полных часов с последней активности.
func HoursSince(last, now time.Time) int {
	d := now.Sub(last)
	if d < 0 {
		return 0
	}
	return int(d / time.Hour)
}

// AtRisk сообщает, что с последней активности прошло не меньше 18 часов.
// Нулевой last означает отсутствие активности, такая серия не под угрозой.
func AtRisk(last, now time.Time) bool {
	if last.IsZero() {
		return false
	}
	return now.Sub(last) >= AtRiskAfter
}

// DaysMissed возвращает число пропущенных дней между днём последней активности
// и сегодняшним днём. Сегодняшний день пропуском не считается.
func DaysMissed(last, now time.Time) int {
	if last.IsZero() {
		return 0
	}
	n := day.Between(last, now) - 1
	if n < 0 {
		return 0
	}
	return n
}

// Advisory — рекомендательное состояние серии, не влияющее на доступ.
type Advisory struct {
	AtRisk         bool   `json:"at_risk"`
	HoursSince     int    `json:"hours_since_activity"`
	DaysMissed     int    `json:"days_missed"`
	GraceRemaining int    `json:"grace_remaining"`
	GraceExpiring  bool   `json:"grace_expiring"`
	Message        string `json:"message,omitempty"`
}

// Advise собирает Advisory по последней активности и использованным льготным дням.
func Advise(t tier.Tier, st State, last, now time.Time) Advisory {
	a := Advisory{
		AtRisk:         AtRisk(last, now),
		HoursSince:     HoursSince(last, now),
		DaysMissed:     DaysMissed(last, now),
		GraceRemaining: GraceRemaining(t, st.GraceUsed),
	}
	a.GraceExpiring = MaxGrace(t) > 0 && a.GraceRemaining == 0 && a.DaysMissed > 0

	switch {
	case a.GraceExpiring:
		a.Message = "You've used all your grace days. Check in today to keep your streak alive."
	case a.AtRisk && st.Streak > 0:
		a.Message = "Your streak is at risk! Complete today's check-in to keep it going."
	case a.DaysMissed > 0 && a.GraceRemaining > 0:
		a.Message = "Grace period active. Your streak is protected for now."
	}
	return a
}
