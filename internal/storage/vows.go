package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/vow"
)

const vowColumns = `id, user_uid, identity, boundary, statement, duration, current_day,
	current_streak, longest_streak, status, created_at, last_completed`

func scanVow(row scanner) (*vow.Vow, error) {
	var v vow.Vow
	err := row.Scan(&v.ID, &v.UserUID, &v.Identity, &v.Boundary, &v.Statement, &v.Duration,
		&v.CurrentDay, &v.CurrentStreak, &v.LongestStreak, &v.Status, &v.CreatedAt, &v.LastCompleted)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVow сохраняет новый обет.
func (s *Storage) CreateVow(ctx context.Context, v *vow.Vow) error {
	const op = "storage.CreateVow"
	_, err := s.DB.ExecContext(ctx, `INSERT INTO vows (`+vowColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		v.ID, v.UserUID, v.Identity, v.Boundary, v.Statement, v.Duration, v.CurrentDay,
		v.CurrentStreak, v.LongestStreak, v.Status, v.CreatedAt, v.LastCompleted)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetVow возвращает обет пользователя по ID.
func (s *Storage) GetVow(ctx context.Context, userUID, id string) (*vow.Vow, error) {
	const op = "storage.GetVow"
	v, err := scanVow(s.DB.QueryRowContext(ctx,
		`SELECT `+vowColumns+` FROM vows WHERE id = $1 AND user_uid = $2`, id, userUID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return v, nil
}

// ListVows возвращает все обеты пользователя, новые первыми.
func (s *Storage) ListVows(ctx context.Context, userUID string) ([]*vow.Vow, error) {
	const op = "storage.ListVows"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+vowColumns+` FROM vows WHERE user_uid = $1 ORDER BY created_at DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*vow.Vow
	for rows.Next() {
		v, err := scanVow(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveVows возвращает количество активных обетов пользователя.
func (s *Storage) CountActiveVows(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveVows"
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM vows WHERE user_uid = $1 AND status = $2`, userUID, vow.StatusActive).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CompleteVowDay сохраняет прогресс обета, запись об отметке дня и начисление XP
// в одной транзакции. prevDay — значение current_day до отметки.
func (s *Storage) CompleteVowDay(ctx context.Context, v *vow.Vow, prevDay, xp int) error {
	const op = "storage.CompleteVowDay"
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE vows
		SET current_day = $3, current_streak = $4, longest_streak = $5, status = $6, last_completed = $7
		WHERE id = $1 AND current_day = $2`,
		v.ID, prevDay, v.CurrentDay, v.CurrentStreak, v.LongestStreak, v.Status, v.LastCompleted)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO vow_completions (id, vow_id, user_uid, created_at)
		VALUES ($1, $2, $3, $4)`, uuid.NewString(), v.ID, v.UserUID, v.LastCompleted); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE users SET xp = xp + $2 WHERE uid = $1`, v.UserUID, xp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// VowTotals — суммарные длительность и пройденные дни всех обетов пользователя.
type VowTotals struct {
	TotalDays     int
	CompletedDays int
	MaxStreak     int
}

// SumVows считает суммарные показатели обетов пользователя.
func (s *Storage) SumVows(ctx context.Context, userUID string) (VowTotals, error) {
	const op = "storage.SumVows"
	var t VowTotals
	err := s.DB.QueryRowContext(ctx, `SELECT
			COALESCE(sum(duration), 0),
			COALESCE(sum(current_day), 0),
			COALESCE(max(current_streak), 0)
		FROM vows WHERE user_uid = $1`, userUID).Scan(&t.TotalDays, &t.CompletedDays, &t.MaxStreak)
	if err != nil {
		return VowTotals{}, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}
