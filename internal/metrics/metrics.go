// Package metrics содержит счётчики Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions — решения о доступе по результату и причине.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vow",
		Name:      "access_decisions_total",
		Help:      "Access decisions by outcome and reason.",
	}, []string{"outcome", "reason"})

	// StreakRecoveries — попытки восстановления серии по результату.
	StreakRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vow",
		Name:      "streak_recoveries_total",
		Help:      "Streak recovery attempts by result.",
	}, []string{"result"})

	// FeatureUsage — потреблённые единицы лимитированных функций.
	FeatureUsage = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vow",
		Name:      "feature_usage_total",
		Help:      "Metered feature usage by feature and outcome.",
	}, []string{"feature", "outcome"})

	// NotificationsPublished — опубликованные уведомления по типу.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vow",
		Name:      "notifications_published_total",
		Help:      "Notifications published to the broker by kind.",
	}, []string{"kind"})

	// BillingEvents — обработанные события биллинга по статусу.
	BillingEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vow",
		Name:      "billing_events_total",
		Help:      "Billing status events applied, by resulting status.",
	}, []string{"status"})
)

// Outcome возвращает метку результата для булева решения.
func Outcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
