package rabbitmq

// Обменники сервиса.
const (
	NotificationsExchange = "notifications"
	BillingExchange       = "billing"
)

// Ключи маршрутизации.
const (
	KeyStreakAtRisk  = "streak.at_risk"
	KeyTrialEnding   = "trial.ending"
	KeyBillingStatus = "billing.status"
)

// BillingQueue — очередь событий биллинга.
const BillingQueue = "billing.events"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues возвращает очереди уведомлений.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.streak_at_risk", RoutingKey: KeyStreakAtRisk},
		{QueueName: "notifications.trial_ending", RoutingKey: KeyTrialEnding},
	}
}

// BillingQueues возвращает очереди биллинга.
func BillingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: BillingQueue, RoutingKey: KeyBillingStatus},
	}
}
