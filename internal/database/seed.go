package database

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"gorm.io/gorm"
)

// EnsureAdminUser creates the ADMIN account named by email when no account
// with that email exists. Empty credentials disable seeding.
func EnsureAdminUser(ctx context.Context, db *gorm.DB, email, password string, hasher *auth.Hasher, log *slog.Logger) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}

	log.Info("seeded admin account", "email", email)
	return nil
}
