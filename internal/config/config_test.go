package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

// setEnv sets every variable Load reads, empty meaning unset
func setEnv(t *testing.T, values map[string]string) {
	keys := []string{
		"BOT_TOKEN", "LOG_LEVEL", "GAME_RETENTION_DAYS", "ALLOWED_CHATS",
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	}
	for _, key := range keys {
		t.Setenv(key, values[key])
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"BOT_TOKEN":   "test_token",
		"DB_PASSWORD": "test_db_password",
	})

	cfg, err := Load()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.RetentionDays)
	assert.Empty(t, cfg.AllowedChats)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "botticelli", cfg.Database.Name)
	assert.Equal(t, "botticelli", cfg.Database.User)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"BOT_TOKEN":           "test_token",
		"LOG_LEVEL":           "debug",
		"GAME_RETENTION_DAYS": "7",
		"ALLOWED_CHATS":       "-1001, 42,,",
		"DB_DRIVER":           "memory",
	})

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, []int64{-1001, 42}, cfg.AllowedChats)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectedError string
	}{
		{
			name:          "missing bot token",
			env:           map[string]string{"DB_PASSWORD": "pw"},
			expectedError: "BOT_TOKEN",
		},
		{
			name:          "missing db password",
			env:           map[string]string{"BOT_TOKEN": "token"},
			expectedError: "DB_PASSWORD",
		},
		{
			name:          "unknown driver",
			env:           map[string]string{"BOT_TOKEN": "token", "DB_DRIVER": "mysql"},
			expectedError: "DB_DRIVER",
		},
		{
			name:          "bad retention",
			env:           map[string]string{"BOT_TOKEN": "token", "DB_PASSWORD": "pw", "GAME_RETENTION_DAYS": "0"},
			expectedError: "GAME_RETENTION_DAYS",
		},
		{
			name:          "bad chat id",
			env:           map[string]string{"BOT_TOKEN": "token", "DB_PASSWORD": "pw", "ALLOWED_CHATS": "general"},
			expectedError: "ALLOWED_CHATS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}
