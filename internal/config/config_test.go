package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, 8*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOGIN_RATE_LIMIT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.LoginRateLimit)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "dev", DBDriver: "sqlite", BcryptCost: 10}
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.JWTSecret)

	prod := &Config{Env: "prod", DBDriver: "postgres", BcryptCost: 12}
	assert.Error(t, prod.Validate())
	prod.JWTSecret = "s3cret"
	assert.NoError(t, prod.Validate())

	weak := &Config{Env: "dev", DBDriver: "postgres", BcryptCost: 4, JWTSecret: "x"}
	assert.Error(t, weak.Validate())

	odd := &Config{Env: "dev", DBDriver: "oracle", BcryptCost: 10, JWTSecret: "x"}
	assert.Error(t, odd.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "postgres", DBUser: "u", DBPassword: "p@ss", DBHost: "db", DBPort: "5432", DBName: "hoc", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/hoc?sslmode=disable", cfg.DSN())

	cfg.DBDriver = "mysql"
	assert.True(t, strings.HasPrefix(cfg.DSN(), "u:p@ss@tcp(db:5432)/hoc?"))

	cfg.DBDriver = "sqlite"
	assert.Equal(t, "hoc.db", cfg.DSN())

	cfg.DBURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}
