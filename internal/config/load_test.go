package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestLedger"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)

	// Everything not in the file comes from the defaults
	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "transfer_events", cfg.Kafka.EventTopic)
	assert.Equal(t, "transfer_events_dlq", cfg.Kafka.DLQTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "migrations/postgres", cfg.Postgres.MigrationsPath)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.Equal(t, 5*time.Second, cfg.Transfer.LockTimeout)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test_defaults")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("does_not_exist")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "localhost:9092", cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollingInterval)
	assert.Equal(t, 5, cfg.Outbox.MaxRetryAttempts)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test_env")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	require.NoError(t, os.Mkdir(tempConfigsSubDir, 0755))

	envFilePath := filepath.Join(tempConfigsSubDir, "test_override.env")
	require.NoError(t, os.WriteFile(envFilePath, []byte("SERVER_PORT=9090\n"), 0644))

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()
	require.NoError(t, os.Chdir(tempDir))

	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig("test_override")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("RejectsInvalidValues", func(t *testing.T) {
		cfg := &Config{}

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT must be greater than 0")
		assert.Contains(t, err.Error(), "POSTGRES_URL is required")
		assert.Contains(t, err.Error(), "MONGO_URI is required")
		assert.Contains(t, err.Error(), "KAFKA_BROKERS is required")
	})
}
