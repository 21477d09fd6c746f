package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maint-logbook/internal/database"
	"maint-logbook/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// UserRef is the public shape of a user in pickers.
type UserRef struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Register creates a member account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.Create(ctx, in, models.RoleMember)
}

func (s *UserService) Create(ctx context.Context, in RegisterInput, role models.UserRole) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalidInput("a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = email
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalidInput("email is already registered")
	}

	user, err := database.CreateUser(s.db.WithContext(ctx), email, fullName, in.Password, role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	database.CreateAuditLog(s.db.WithContext(ctx), user.ID, "user", user.ID, "create", "role "+string(role))
	return user, nil
}

func (s *UserService) emailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// Authenticate checks credentials. Unknown email and wrong password fail alike.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := resolveActor(ctx, s.db, Actor{UserID: id})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context) ([]UserRef, error) {
	users := []UserRef{}
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "email", "full_name").
		Order("full_name asc, id asc").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}
