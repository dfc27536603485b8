package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/models"
	"github.com/terraincognita07/cyclesense/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength       = 8
	temporaryPasswordLength = 12
)

type AuthUserStore interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID uint) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string, mustChangePassword bool) error
	DeleteAccountAndRelatedData(ctx context.Context, userID uint) error
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

type AuthService struct {
	users AuthUserStore
}

func NewAuthService(users AuthUserStore) *AuthService {
	return &AuthService{users: users}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func (service *AuthService) Register(ctx context.Context, input RegisterInput, now time.Time) (models.User, error) {
	input.Email = NormalizeEmail(input.Email)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := validateInput(input); err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, input.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:               input.Email,
		PasswordHash:        string(passwordHash),
		DisplayName:         input.DisplayName,
		AverageCycleLength:  models.DefaultCycleLength,
		AveragePeriodLength: models.DefaultPeriodLength,
		ReminderDaysBefore:  models.DefaultReminderDaysBefore,
		CreatedAt:           now.UTC(),
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate answers ErrInvalidCredentials for both unknown emails and
// wrong passwords.
func (service *AuthService) Authenticate(ctx context.Context, email string, password string) (models.User, error) {
	user, err := service.users.FindByNormalizedEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func (service *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword string, newPassword string) error {
	user, err := service.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}
	if currentPassword == newPassword {
		return ErrPasswordUnchanged
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdatePassword(ctx, userID, string(passwordHash), false)
}

// ResetPassword replaces the password with a random temporary one that must
// be changed on next login.
func (service *AuthService) ResetPassword(ctx context.Context, email string) (string, error) {
	user, err := service.users.FindByNormalizedEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, db.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash temporary password: %w", err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, string(passwordHash), true); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}
	return temporaryPassword, nil
}

// DeleteAccount removes the user and every cycle and journal entry they own
// after confirming the current password.
func (service *AuthService) DeleteAccount(ctx context.Context, userID uint, password string) error {
	user, err := service.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	err = service.users.DeleteAccountAndRelatedData(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
