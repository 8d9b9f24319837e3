package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/yourusername/millionaire-api/internal/domain/entity"
	"github.com/yourusername/millionaire-api/internal/domain/repository"
	apperrors "github.com/yourusername/millionaire-api/internal/pkg/errors"
	"github.com/yourusername/millionaire-api/pkg/auth"
)

// ErrInvalidCredentials неверный email или пароль
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)

const minPasswordLength = 6

// AuthService предоставляет методы для регистрации и входа
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{userRepo: userRepo, jwtService: jwtService}, nil
}

// Register регистрирует нового пользователя и выдаёт ему токен
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, string, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if len(input.Username) < 3 || len(input.Username) > 50 {
		return nil, "", fmt.Errorf("%w: username must be 3..50 characters", apperrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if len(input.Password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}

	// Проверяем, существует ли пользователь с таким email
	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, "", fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email existence: %w", err)
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password, // хешируется в User.BeforeSave
		Role:     entity.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Printf("[AuthService.Register] Ошибка создания пользователя email=%s: %v", input.Email, err)
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService.Register] Зарегистрирован пользователь ID=%d", user.ID)
	return user, token, nil
}

// Login проверяет email и пароль и выдаёт токен
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.CheckPassword(password) {
		log.Printf("[AuthService.Login] Неверный пароль для пользователя ID=%d", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
