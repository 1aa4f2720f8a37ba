package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
)

// AddActivity сохраняет рефлексию или триггер в соответствующую таблицу.
func (s *Storage) AddActivity(ctx context.Context, a models.Activity) error {
	const op = "storage.AddActivity"
	var table string
	switch a.Category {
	case models.CategoryReflection:
		table = "reflections"
	case models.CategoryTrigger:
		table = "triggers"
	default:
		return fmt.Errorf("%s: unsupported category %q", op, a.Category)
	}

	_, err := s.DB.ExecContext(ctx, `INSERT INTO `+table+` (id, user_uid, vow_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)`, a.ID, a.UserUID, a.VowID, a.Note, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivityTimes возвращает моменты всех действий пользователя начиная с since:
// отметки дней, рефлексии, триггеры и восстановленные дни.
func (s *Storage) ActivityTimes(ctx context.Context, userUID string, since time.Time) ([]time.Time, error) {
	const op = "storage.ActivityTimes"
	rows, err := s.DB.QueryContext(ctx, `
		SELECT created_at FROM vow_completions WHERE user_uid = $1 AND created_at >= $2
		UNION ALL SELECT created_at FROM reflections WHERE user_uid = $1 AND created_at >= $2
		UNION ALL SELECT created_at FROM triggers WHERE user_uid = $1 AND created_at >= $2
		UNION ALL SELECT day::timestamptz FROM recovered_days WHERE user_uid = $1 AND day >= $2::date
		ORDER BY created_at DESC`, userUID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ActivityStats возвращает моменты рефлексий начиная с since и общее число триггеров.
func (s *Storage) ActivityStats(ctx context.Context, userUID string, since time.Time) (models.ActivityStats, error) {
	const op = "storage.ActivityStats"
	var stats models.ActivityStats

	rows, err := s.DB.QueryContext(ctx,
		`SELECT created_at FROM reflections WHERE user_uid = $1 AND created_at >= $2`, userUID, since)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return stats, fmt.Errorf("%s: %w", op, err)
		}
		stats.Reflections = append(stats.Reflections, t)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM triggers WHERE user_uid = $1`, userUID).Scan(&stats.Triggers); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// CountReflections возвращает общее число рефлексий пользователя.
func (s *Storage) CountReflections(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountReflections"
	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM reflections WHERE user_uid = $1`, userUID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
