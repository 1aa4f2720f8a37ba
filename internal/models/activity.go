package models

import "time"

// Category — тип записи активности.
type Category string

const (
	CategoryReflection    Category = "reflection"
	CategoryTrigger       Category = "trigger"
	CategoryVowCompletion Category = "vow_completion"
)

// Activity — отдельное датированное действие пользователя.
type Activity struct {
	ID        string    `json:"id"`
	UserUID   string    `json:"user_uid"`
	VowID     *string   `json:"vow_id,omitempty"`
	Category  Category  `json:"category"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityStats — агрегаты активности, нужные для расчёта показателя соответствия.
type ActivityStats struct {
	Reflections []time.Time
	Triggers    int
}

// BillingEvent — изменение статуса подписки, пришедшее от платёжного провайдера.
type BillingEvent struct {
	UserUID string  `json:"user_uid"`
	Status  string  `json:"status"`
	Tier    *string `json:"tier,omitempty"`
}

// Notification — сообщение для очереди уведомлений.
type Notification struct {
	UserUID  string `json:"user_uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}
