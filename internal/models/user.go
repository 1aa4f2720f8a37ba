// Package models содержит доменные структуры, которые хранятся в базе данных
// и передаются между слоями сервиса.
package models

import (
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID               string     // Уникальный идентификатор пользователя
	Email              string     // Электронная почта
	Username           string     // Имя пользователя (уникальное)
	PasswordHash       string     // Хэш пароля пользователя
	Role               string     // Роль пользователя, admin или user
	CreatedAt          time.Time  // Дата регистрации
	TrialEndDate       *time.Time // Дата истечения пробного периода
	SubscriptionStatus string     // Статус подписки от платёжного провайдера
	SubscriptionTier   *string    // Тариф, nil до первой оплаты
	RecoveryTokensUsed int        // Использованные жетоны восстановления серии
	XP                 int        // Баланс опыта
}

// Account возвращает снимок учётной записи для вычисления доступа.
// Неизвестный тариф трактуется как отсутствие тарифа.
func (u *User) Account() *access.Account {
	if u == nil {
		return nil
	}
	acc := &access.Account{
		ID:                 u.UUID,
		CreatedAt:          u.CreatedAt,
		Status:             access.Status(u.SubscriptionStatus),
		TrialEndDate:       u.TrialEndDate,
		RecoveryTokensUsed: u.RecoveryTokensUsed,
		XP:                 u.XP,
	}
	if u.SubscriptionTier != nil {
		if t, ok := tier.ParseTier(*u.SubscriptionTier); ok {
			acc.Tier = &t
		}
	}
	return acc
}
