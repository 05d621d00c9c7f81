package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sklad-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrNoMobileAccess = errors.New("mobile app access is not enabled for this user")
)

const (
	msgBadCredentials = "Неправильный логин или пароль."
	msgNoMobileAccess = "Этот пользователь не имеет доступа через мобильное приложение."
	msgLoginOK        = "Успешный вход!"
)

// Authenticate checks the password of an active user, then requires the
// mobile_app flag on the user's profile.
func Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var user models.User
	err := db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if !user.IsActive {
		return nil, ErrBadCredentials
	}

	if user.Profile == nil || !user.Profile.MobileApp {
		return nil, ErrNoMobileAccess
	}
	return &user, nil
}

type NewUser struct {
	Username  string
	Password  string
	MobileApp bool
	Inactive  bool
}

// CreateUser stores a user and its profile with a bcrypt password hash.
func CreateUser(ctx context.Context, db *gorm.DB, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, errors.New("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		IsActive:     !in.Inactive,
		Profile:      &models.UserProfile{MobileApp: in.MobileApp},
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("user %q already exists", in.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
