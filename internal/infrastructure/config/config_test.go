package config

import (
	"testing"
	"time"

	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "http://localhost:4452", cfg.Ccd.BaseURL)
	assert.Equal(t, 3, cfg.Payment.MaxRetry)
	assert.Equal(t, time.Second, cfg.Payment.RetryDelay)
	assert.True(t, cfg.Payment.Enabled)
	assert.Equal(t, "envelopes", cfg.Consumer.Stream)
	assert.Equal(t, "envelopes:dead-letter", cfg.Consumer.DeadLetterStream)
	assert.Equal(t, "envelopes:processed", cfg.Consumer.ProcessedStream)
	assert.Equal(t, "orchestrators", cfg.Consumer.ConsumerGroup)
	assert.Equal(t, int64(3), cfg.Consumer.MaxDeliveryCount)
	assert.Equal(t, 60*time.Second, cfg.Consumer.LockTTL)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CASEFLOW_SERVER_PORT", "9999")
	t.Setenv("CASEFLOW_DATABASE_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{Host: "localhost", Port: 5432},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Ccd:      CcdConfig{BaseURL: "http://localhost:4452"},
		Payment:  PaymentConfig{MaxRetry: 3},
		Consumer: ConsumerConfig{
			BatchSize:        10,
			MaxDeliveryCount: 3,
			LockTTL:          time.Minute,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid server port", func(c *Config) { c.Server.Port = 0 }},
		{"missing database host", func(c *Config) { c.Database.Host = "" }},
		{"missing ccd base url", func(c *Config) { c.Ccd.BaseURL = "" }},
		{"non-positive max retry", func(c *Config) { c.Payment.MaxRetry = 0 }},
		{"non-positive batch size", func(c *Config) { c.Consumer.BatchSize = 0 }},
		{"non-positive delivery cap", func(c *Config) { c.Consumer.MaxDeliveryCount = 0 }},
		{"non-positive lock ttl", func(c *Config) { c.Consumer.LockTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ServiceEntries(t *testing.T) {
	cfg := validConfig()
	cfg.Services = map[string]ServiceConfigItem{
		"bulkscan": {AutoCaseCreationEnabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "services.bulkscan.jurisdiction")
	assert.Contains(t, err.Error(), "transformation_url")

	cfg.Services = map[string]ServiceConfigItem{
		"bulkscan": {
			Jurisdiction:            "BULKSCAN",
			TransformationURL:       "http://transform",
			AutoCaseCreationEnabled: true,
		},
	}
	assert.NoError(t, cfg.Validate())
}

func TestServiceConfigProvider(t *testing.T) {
	provider := NewServiceConfigProvider(map[string]ServiceConfigItem{
		"BulkScan": {Jurisdiction: "BULKSCAN"},
	})

	svc, err := provider.Config("bulkscan")
	require.NoError(t, err)
	assert.Equal(t, "BULKSCAN", svc.Jurisdiction)

	svc, err = provider.Config("BULKSCAN")
	require.NoError(t, err)
	assert.Equal(t, "BULKSCAN", svc.Jurisdiction)

	_, err = provider.Config("unknown")
	assert.ErrorIs(t, err, domainerrors.ErrServiceNotConfigured)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "caseflow",
		Password: "secret",
		Database: "caseflow",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=caseflow password=secret dbname=caseflow sslmode=disable",
		db.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.RedisAddr())
}
