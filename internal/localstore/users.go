package localstore

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mvgarcia/taproom/pkg/db/models"
	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

// CreateUser registers a fallback account with a bcrypt-hashed password.
func (s *Store) CreateUser(ctx context.Context, name, email, password string, userType enums.UserType) (models.LocalUser, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return models.LocalUser{}, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}
	if len(password) < 6 {
		return models.LocalUser{}, pkgerrors.New(pkgerrors.CodeValidation, "password must have at least 6 characters")
	}
	if !userType.IsValid() {
		userType = enums.UserTypeOnline
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.LocalUser{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := models.LocalUser{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		UserType:     userType,
		Slug:         slugify(name),
		Active:       true,
	}
	if err := s.client.DB().WithContext(ctx).Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.LocalUser{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return models.LocalUser{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return user, nil
}

// Authenticate verifies credentials against the fallback accounts.
// Unknown emails and wrong passwords are indistinguishable to callers.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.LocalUser, error) {
	var user models.LocalUser
	err := s.client.DB().WithContext(ctx).
		Where("email = ? AND active = ?", strings.ToLower(email), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LocalUser{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return models.LocalUser{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.LocalUser{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return user, nil
}

// GetUserByEmail returns a fallback account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.LocalUser, error) {
	var user models.LocalUser
	err := s.client.DB().WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LocalUser{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return models.LocalUser{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}
