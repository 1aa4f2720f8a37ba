package streak

import (
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

// MaxRecoverableDays — максимальное число пропущенных дней, после которых серию ещё можно восстановить.
const MaxRecoverableDays = 3

// RecoveryError — код отказа в восстановлении серии.
type RecoveryError string

const (
	ErrRecoveryTrialTier      RecoveryError = "TRIAL_TIER"
	ErrRecoveryTooLate        RecoveryError = "TOO_MANY_DAYS_MISSED"
	ErrRecoveryTokenLimit     RecoveryError = "TOKEN_LIMIT_REACHED"
	ErrRecoveryInsufficientXP RecoveryError = "INSUFFICIENT_XP"
	ErrRecoveryNoUser         RecoveryError = "NO_USER"
)

var recoveryMessages = map[RecoveryError]string{
	ErrRecoveryTrialTier:      "Streak recovery is available on paid plans",
	ErrRecoveryTooLate:        "Streaks can only be recovered within 3 days",
	ErrRecoveryTokenLimit:     "You have used all recovery tokens for your plan",
	ErrRecoveryInsufficientXP: "Not enough XP to recover this streak",
	ErrRecoveryNoUser:         "User not found",
}

func (e RecoveryError) Error() string {
	return recoveryMessages[e]
}

var tokenCaps = map[tier.Tier]int{
	tier.Liberation: 5,
}

const defaultTokenCap = 3

var costs = []int{100, 250, 500, 1000}

// TokenCap возвращает пожизненный лимит жетонов восстановления для тарифа.
func TokenCap(t tier.Tier) int {
	if c, ok := tokenCaps[t]; ok {
		return c
	}
	return defaultTokenCap
}

// RecoveryCost возвращает стоимость следующего восстановления в XP.
func RecoveryCost(tokensUsed int) int {
	if tokensUsed < 0 {
		tokensUsed = 0
	}
	if tokensUsed >= len(costs) {
		return costs[len(costs)-1]
	}
	return costs[tokensUsed]
}

// CanRecover проверяет, допустимо ли восстановление серии.
func CanRecover(t tier.Tier, daysMissed, tokensUsed int) (bool, RecoveryError) {
	if t == tier.Trial {
		return false, ErrRecoveryTrialTier
	}
	if daysMissed > MaxRecoverableDays {
		return false, ErrRecoveryTooLate
	}
	if tokensUsed >= TokenCap(t) {
		return false, ErrRecoveryTokenLimit
	}
	return true, ""
}

// RecoveryResult — результат попытки восстановления.
// При Success == false вызывающая сторона не должна менять состояние учётной записи.
type RecoveryResult struct {
	Success    bool          `json:"success"`
	Error      RecoveryError `json:"error,omitempty"`
	Message    string        `json:"message,omitempty"`
	Cost       int           `json:"cost"`
	CurrentXP  int           `json:"current_xp"`
	NewXP      int           `json:"new_xp,omitempty"`
	TokensUsed int           `json:"tokens_used"`
}

func failure(e RecoveryError, cost, xp, used int) RecoveryResult {
	return RecoveryResult{Error: e, Message: e.Error(), Cost: cost, CurrentXP: xp, TokensUsed: used}
}

// Recover вычисляет итог восстановления серии. Учётная запись не изменяется.
func Recover(acc *access.Account, daysMissed int) RecoveryResult {
	if acc == nil {
		return failure(ErrRecoveryNoUser, 0, 0, 0)
	}
	used := acc.RecoveryTokensUsed
	cost := RecoveryCost(used)

	if ok, reason := CanRecover(acc.EffectiveTier(), daysMissed, used); !ok {
		return failure(reason, cost, acc.XP, used)
	}
	if acc.XP < cost {
		return failure(ErrRecoveryInsufficientXP, cost, acc.XP, used)
	}
	return RecoveryResult{
		Success:    true,
		Cost:       cost,
		CurrentXP:  acc.XP,
		NewXP:      acc.XP - cost,
		TokensUsed: used + 1,
	}
}
