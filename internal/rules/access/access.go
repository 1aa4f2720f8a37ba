// Package access вычисляет решение о доступе к продукту по снимку учётной записи.
//
// Решение не хранится и пересчитывается при каждом запросе. Неизвестный статус,
// отсутствующая учётная запись или истёкший пробный период всегда дают отказ.
package access

import (
	"math"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

// Status — статус подписки, полученный от платёжного провайдера.
type Status string

const (
	StatusTrial      Status = "trial"
	StatusActive     Status = "active"
	StatusPastDue    Status = "past_due"
	StatusCanceled   Status = "canceled"
	StatusCancelled  Status = "cancelled"
	StatusUnpaid     Status = "unpaid"
	StatusIncomplete Status = "incomplete"
	StatusExpired    Status = "expired"
)

// TrialDuration — длительность пробного периода от момента регистрации.
const TrialDuration = 2 * 24 * time.Hour

const day = 24 * time.Hour

// Reason — код причины отказа.
type Reason string

const (
	ReasonNoUser                Reason = "NO_USER"
	ReasonTrialExpired          Reason = "TRIAL_EXPIRED"
	ReasonSubscriptionCancelled Reason = "SUBSCRIPTION_CANCELLED"
	ReasonUnknownStatus         Reason = "UNKNOWN_STATUS"
)

var messages = map[Reason]string{
	ReasonNoUser:                "User not found",
	ReasonTrialExpired:          "Your free trial has ended. Subscribe to continue your journey.",
	ReasonSubscriptionCancelled: "Your subscription has been cancelled. Resubscribe to regain access.",
	ReasonUnknownStatus:         "Unable to verify subscription status",
}

// Message возвращает текст для пользователя по коду причины.
func (r Reason) Message() string {
	return messages[r]
}

// Account — снимок учётной записи, достаточный для вычисления доступа.
type Account struct {
	ID                 string
	CreatedAt          time.Time
	Status             Status
	Tier               *tier.Tier
	TrialEndDate       *time.Time
	RecoveryTokensUsed int
	XP                 int
}

// Decision — результат проверки доступа.
type Decision struct {
	HasAccess bool   `json:"has_access"`
	Reason    Reason `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
	IsTrial   bool   `json:"is_trial,omitempty"`
	DaysLeft  int    `json:"days_left,omitempty"`
	IsPaid    bool   `json:"is_paid,omitempty"`
}

func deny(r Reason) Decision {
	return Decision{HasAccess: false, Reason: r, Message: r.Message()}
}

// TrialEndFor возвращает окончание пробного периода для даты регистрации.
func TrialEndFor(createdAt time.Time) time.Time {
	return createdAt.Add(TrialDuration)
}

// TrialEnd возвращает сохранённую дату окончания пробного периода
// или вычисляет её от даты регистрации.
func (a *Account) TrialEnd() time.Time {
	if a.TrialEndDate != nil {
		return *a.TrialEndDate
	}
	return TrialEndFor(a.CreatedAt)
}

// EffectiveTier возвращает тариф учётной записи, trial если он не задан.
func (a *Account) EffectiveTier() tier.Tier {
	if a == nil || a.Tier == nil {
		return tier.Trial
	}
	return *a.Tier
}

// Evaluate вычисляет решение о доступе на момент now.
func Evaluate(acc *Account, now time.Time) Decision {
	if acc == nil {
		return deny(ReasonNoUser)
	}

	switch acc.Status {
	case StatusActive:
		return Decision{HasAccess: true, IsPaid: true}
	case StatusTrial:
		end := acc.TrialEnd()
		if now.Before(end) {
			return Decision{HasAccess: true, IsTrial: true, DaysLeft: TrialDaysLeft(end, now)}
		}
		return deny(ReasonTrialExpired)
	case StatusCanceled, StatusCancelled:
		return deny(ReasonSubscriptionCancelled)
	default:
		return deny(ReasonUnknownStatus)
	}
}

// TrialDaysLeft — число оставшихся дней для отображения, округлённое вверх.
func TrialDaysLeft(trialEnd, now time.Time) int {
	remaining := trialEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(day)))
}

// TrialDaysElapsed — число полных дней с момента регистрации.
func TrialDaysElapsed(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		return 0
	}
	return int(math.Floor(float64(elapsed) / float64(day)))
}

// TrialExpiredByDays — жёсткая проверка окончания пробного периода по полным дням.
func TrialExpiredByDays(createdAt, now time.Time) bool {
	return TrialDaysElapsed(createdAt, now) >= int(TrialDuration/day)
}

// TrialStatus — сводка по пробному периоду.
type TrialStatus struct {
	IsTrial     bool      `json:"is_trial"`
	TrialEnd    time.Time `json:"trial_end"`
	DaysElapsed int       `json:"days_elapsed"`
	DaysLeft    int       `json:"days_left"`
	Expired     bool      `json:"expired"`
}

// Trial собирает TrialStatus. Для непробных статусов IsTrial == false.
func Trial(acc *Account, now time.Time) TrialStatus {
	if acc == nil {
		return TrialStatus{}
	}
	end := acc.TrialEnd()
	return TrialStatus{
		IsTrial:     acc.Status == StatusTrial,
		TrialEnd:    end,
		DaysElapsed: TrialDaysElapsed(acc.CreatedAt, now),
		DaysLeft:    TrialDaysLeft(end, now),
		Expired:     TrialExpiredByDays(acc.CreatedAt, now),
	}
}

// IsPaying сообщает, платит ли пользователь: непробный тариф при активной подписке.
func IsPaying(acc *Account) bool {
	if acc == nil || acc.Tier == nil {
		return false
	}
	return *acc.Tier != tier.Trial && acc.Status == StatusActive
}

// FeatureTier возвращает тариф, по которому открываются функции: оплаченный
// тариф при активной подписке, иначе trial.
func FeatureTier(acc *Account) tier.Tier {
	if IsPaying(acc) {
		return *acc.Tier
	}
	return tier.Trial
}
