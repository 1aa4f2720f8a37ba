package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, created_at, trial_end_date,
	subscription_status, subscription_tier, recovery_tokens_used, xp`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt,
		&u.TrialEndDate, &u.SubscriptionStatus, &u.SubscriptionTier, &u.RecoveryTokensUsed, &u.XP)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RegisterUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"

	query := `INSERT INTO users (uid, email, username, password_hash, role, created_at,
				trial_end_date, subscription_status, subscription_tier)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query, user.UUID, user.Email, user.Username, user.PasswordHash,
		user.Role, user.CreatedAt, user.TrialEndDate, user.SubscriptionStatus, user.SubscriptionTier).Scan(&uid)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = $1`, uid))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// UpdateSubscription сохраняет статус и тариф, пришедшие от платёжного провайдера.
// tier == nil оставляет текущий тариф без изменений.
func (s *Storage) UpdateSubscription(ctx context.Context, uid, status string, tier *string) error {
	const op = "storage.UpdateSubscription"
	res, err := s.DB.ExecContext(ctx, `UPDATE users
		SET subscription_status = $2,
		    subscription_tier = COALESCE($3, subscription_tier)
		WHERE uid = $1`, uid, status, tier)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, res.RowsAffected)
}

// ApplyRecovery списывает cost из XP, увеличивает счётчик жетонов и засчитывает
// пропущенные дни, если счётчик не изменился с момента чтения и XP хватает.
// Иначе возвращает ErrConflict и ничего не меняет.
func (s *Storage) ApplyRecovery(ctx context.Context, uid string, expectedTokens, newTokens, cost int, days []time.Time) error {
	const op = "storage.ApplyRecovery"
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE users
		SET recovery_tokens_used = $3, xp = xp - $4
		WHERE uid = $1 AND recovery_tokens_used = $2 AND xp >= $4`, uid, expectedTokens, newTokens, cost)
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

	for _, d := range days {
		if _, err = tx.ExecContext(ctx, `INSERT INTO recovered_days (user_uid, day)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, uid, d); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddXP начисляет опыт пользователю.
func (s *Storage) AddXP(ctx context.Context, uid string, delta int) error {
	const op = "storage.AddXP"
	res, err := s.DB.ExecContext(ctx, `UPDATE users SET xp = GREATEST(xp + $2, 0) WHERE uid = $1`, uid, delta)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(op, res.RowsAffected)
}

// UserActivity — пользователь и момент его последней активности.
type UserActivity struct {
	User         *models.User
	LastActivity *time.Time
}

// ListUsersWithLastActivity возвращает пользователей в статусах trial и active
// вместе с моментом последней активности, страницами по limit.
func (s *Storage) ListUsersWithLastActivity(ctx context.Context, limit, offset int) ([]UserActivity, error) {
	const op = "storage.ListUsersWithLastActivity"
	query := `SELECT ` + prefixed("u.", userColumns) + `,
			(SELECT max(a.created_at) FROM (
				SELECT created_at FROM vow_completions WHERE user_uid = u.uid
				UNION ALL SELECT created_at FROM reflections WHERE user_uid = u.uid
				UNION ALL SELECT created_at FROM triggers WHERE user_uid = u.uid
				UNION ALL SELECT day::timestamptz FROM recovered_days WHERE user_uid = u.uid
			) a) AS last_activity
		FROM users u
		WHERE u.subscription_status IN ('trial', 'active')
		ORDER BY u.created_at, u.uid
		LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []UserActivity
	for rows.Next() {
		var u models.User
		var last *time.Time
		if err := rows.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt,
			&u.TrialEndDate, &u.SubscriptionStatus, &u.SubscriptionTier, &u.RecoveryTokensUsed, &u.XP,
			&last); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, UserActivity{User: &u, LastActivity: last})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func expectOne(op string, rowsAffected func() (int64, error)) error {
	n, err := rowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
