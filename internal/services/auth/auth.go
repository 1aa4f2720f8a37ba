// Package services содержит логику регистрации, входа и проверки токенов.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/jwt"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/lib/password"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/models"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/access"
)

// ErrInvalidCredentials — неверное имя пользователя или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DefaultRole — роль нового пользователя.
const DefaultRole = "user"

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
}

// Register создает пользователя в статусе trial с пробным периодом от момента регистрации.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "services.auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	created := s.now().UTC()
	trialEnd := access.TrialEndFor(created)
	user := models.User{
		UUID:               uuid.NewString(),
		Email:              email,
		Username:           username,
		PasswordHash:       hashed,
		Role:               DefaultRole,
		CreatedAt:          created,
		TrialEndDate:       &trialEnd,
		SubscriptionStatus: string(access.StatusTrial),
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token string, err error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err = s.jwtMaker.GenerateToken(user.UUID, user.Username, user.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
