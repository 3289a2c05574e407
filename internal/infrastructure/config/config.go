package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domainerrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig                 `mapstructure:"server"`
	Database      DatabaseConfig               `mapstructure:"database"`
	Redis         RedisConfig                  `mapstructure:"redis"`
	Ccd           CcdConfig                    `mapstructure:"ccd"`
	Payment       PaymentConfig                `mapstructure:"payment"`
	Consumer      ConsumerConfig               `mapstructure:"consumer"`
	Observability ObservabilityConfig          `mapstructure:"observability"`
	Services      map[string]ServiceConfigItem `mapstructure:"services"`
	InstanceID    string                       `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SSLMode         string        `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	DB                int           `mapstructure:"db"`
	Password          string        `mapstructure:"password"`
	ConnectRetries    int           `mapstructure:"connect_retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"`
}

// CcdConfig locates the case data store.
type CcdConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
}

// PaymentConfig controls the scheduled payment posting tasks.
type PaymentConfig struct {
	ProcessorURL            string        `mapstructure:"processor_url"`
	MaxRetry                int           `mapstructure:"max_retry"`
	RetryDelay              time.Duration `mapstructure:"retry_delay"`
	NewPaymentsInterval     time.Duration `mapstructure:"new_payments_interval"`
	UpdatedPaymentsInterval time.Duration `mapstructure:"updated_payments_interval"`
	Enabled                 bool          `mapstructure:"enabled"`
}

// ConsumerConfig controls the envelope stream consumer.
type ConsumerConfig struct {
	Stream           string        `mapstructure:"stream"`
	DeadLetterStream string        `mapstructure:"dead_letter_stream"`
	ProcessedStream  string        `mapstructure:"processed_stream"`
	ConsumerGroup    string        `mapstructure:"consumer_group"`
	BatchSize        int64         `mapstructure:"batch_size"`
	BlockDuration    time.Duration `mapstructure:"block_duration"`
	MaxDeliveryCount int64         `mapstructure:"max_delivery_count"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
	ClaimMinIdle     time.Duration `mapstructure:"claim_min_idle"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

// ServiceConfigItem holds the per-service envelope handling settings, keyed by
// the envelope's container name.
type ServiceConfigItem struct {
	Jurisdiction            string `mapstructure:"jurisdiction"`
	TransformationURL       string `mapstructure:"transformation_url"`
	CaseUpdateURL           string `mapstructure:"case_update_url"`
	AutoCaseCreationEnabled bool   `mapstructure:"auto_case_creation_enabled"`
	AutoCaseUpdateEnabled   bool   `mapstructure:"auto_case_update_enabled"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CASEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/caseflow")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive"))
	}
	if c.Redis.Port <= 0 {
		errs = append(errs, fmt.Errorf("redis.port must be positive"))
	}
	if c.Ccd.BaseURL == "" {
		errs = append(errs, fmt.Errorf("ccd.base_url is required"))
	}
	if c.Payment.MaxRetry <= 0 {
		errs = append(errs, fmt.Errorf("payment.max_retry must be positive"))
	}
	if c.Consumer.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("consumer.batch_size must be positive"))
	}
	if c.Consumer.MaxDeliveryCount <= 0 {
		errs = append(errs, fmt.Errorf("consumer.max_delivery_count must be positive"))
	}
	if c.Consumer.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("consumer.lock_ttl must be positive"))
	}
	for name, svc := range c.Services {
		if svc.Jurisdiction == "" {
			errs = append(errs, fmt.Errorf("services.%s.jurisdiction is required", name))
		}
		if svc.AutoCaseCreationEnabled && svc.TransformationURL == "" {
			errs = append(errs, fmt.Errorf("services.%s.transformation_url required when auto case creation is enabled", name))
		}
		if svc.AutoCaseUpdateEnabled && svc.CaseUpdateURL == "" {
			errs = append(errs, fmt.Errorf("services.%s.case_update_url required when auto case update is enabled", name))
		}
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "caseflow")
	v.SetDefault("database.database", "caseflow")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.connect_retries", 5)
	v.SetDefault("redis.connect_retry_delay", "1s")

	// CCD defaults
	v.SetDefault("ccd.base_url", "http://localhost:4452")

	// Payment defaults
	v.SetDefault("payment.processor_url", "http://localhost:8583")
	v.SetDefault("payment.max_retry", 3)
	v.SetDefault("payment.retry_delay", "1s")
	v.SetDefault("payment.new_payments_interval", "30s")
	v.SetDefault("payment.updated_payments_interval", "30s")
	v.SetDefault("payment.enabled", true)

	// Consumer defaults
	v.SetDefault("consumer.stream", "envelopes")
	v.SetDefault("consumer.dead_letter_stream", "envelopes:dead-letter")
	v.SetDefault("consumer.processed_stream", "envelopes:processed")
	v.SetDefault("consumer.consumer_group", "orchestrators")
	v.SetDefault("consumer.batch_size", 10)
	v.SetDefault("consumer.block_duration", "1s")
	v.SetDefault("consumer.max_delivery_count", 3)
	v.SetDefault("consumer.lock_ttl", "60s")
	v.SetDefault("consumer.claim_min_idle", "5m")

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", true)

	// Instance ID
	v.SetDefault("instance_id", "caseflow-1")
}

func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServiceConfigProvider resolves per-service settings by container name.
type ServiceConfigProvider struct {
	services map[string]ServiceConfigItem
}

// NewServiceConfigProvider builds a provider over the configured services.
// Container names are matched case-insensitively.
func NewServiceConfigProvider(services map[string]ServiceConfigItem) *ServiceConfigProvider {
	normalized := make(map[string]ServiceConfigItem, len(services))
	for name, svc := range services {
		normalized[strings.ToLower(name)] = svc
	}
	return &ServiceConfigProvider{services: normalized}
}

// Config returns the settings for the given container, or
// ErrServiceNotConfigured when the container is unknown.
func (p *ServiceConfigProvider) Config(container string) (*ServiceConfigItem, error) {
	svc, ok := p.services[strings.ToLower(container)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrServiceNotConfigured, container)
	}
	return &svc, nil
}
