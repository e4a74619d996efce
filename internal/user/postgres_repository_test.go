//go:build integration

package user

import (
	"context"
	"os"
	"testing"

	"auth_service/internal/config"
	"auth_service/internal/db"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func TestPostgresRepository(t *testing.T) {
	ctx := context.Background()
	cfg := &config.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Name:     getEnv("DB_NAME", "auth_db_test"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	database, err := db.Init(ctx, cfg)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.EnsureSchema(ctx, database); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	runRepositoryContract(t, func(t *testing.T) UserRepositoryInterface {
		if _, err := database.ExecContext(ctx, "TRUNCATE TABLE users"); err != nil {
			t.Fatalf("Failed to truncate users: %v", err)
		}
		return NewPostgresRepository(database, nil)
	})
}
