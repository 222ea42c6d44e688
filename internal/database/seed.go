package database

import (
	"context"
	"fmt"

	"delipos/internal/model"
	"delipos/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the default admin account on an empty install. Does
// nothing once any user exists.
func SeedAdmin(db *gorm.DB, username, password string, log *zap.Logger) error {
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &model.User{Username: username, Password: string(hash), Role: "admin"}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Info("seeded default admin user", zap.String("username", username))
	return nil
}
