package db

import (
	"testing"

	"auth_service/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&config.DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		Name:     "auth_db",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=auth_db sslmode=disable", dsn)
}
