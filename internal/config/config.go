package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, перекрывающих config.toml,
// например TESTDRIVE_DATABASE_HOST или TESTDRIVE_HOLDS_TTL_SECONDS
const EnvPrefix = "TESTDRIVE"

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Holds          HoldsConfig          `toml:"holds"`
	Booking        BookingConfig        `toml:"booking"`
	Realtime       RealtimeConfig       `toml:"realtime"`
	CatalogService CatalogServiceConfig `toml:"catalog_service" envconfig:"CATALOG"`
	RabbitMQ       RabbitMQConfig       `toml:"rabbitmq" envconfig:"RABBITMQ"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true" validate:"required,min=1,max=65535"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true" validate:"min=0"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true" validate:"min=0"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true" validate:"min=0"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true" validate:"min=1"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" split_words:"true" validate:"required"`
	Port            int    `toml:"port" split_words:"true" validate:"required,min=1,max=65535"`
	User            string `toml:"user" split_words:"true" validate:"required"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true" validate:"required"`
	SSLMode         string `toml:"sslmode" split_words:"true" validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true" validate:"min=1"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true" validate:"min=0"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true" validate:"min=0"`
	AutoMigrate     bool   `toml:"auto_migrate" split_words:"true"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	File  string `toml:"file" split_words:"true"` // пусто: stdout
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true" validate:"required_if=Enabled true,omitempty,startswith=/"`
	ServiceName string `toml:"service_name" split_words:"true" validate:"required_if=Enabled true"`
}

type HoldsConfig struct {
	TTLSeconds int `toml:"ttl_seconds" split_words:"true" validate:"min=1"`
	Shards     int `toml:"shards" split_words:"true" validate:"min=1"`
}

func (h HoldsConfig) TTL() time.Duration {
	return time.Duration(h.TTLSeconds) * time.Second
}

type BookingConfig struct {
	MinNoticeMinutes   int `toml:"min_notice_minutes" split_words:"true" validate:"min=0"`
	AdvanceBookingDays int `toml:"advance_booking_days" split_words:"true" validate:"min=1"`
}

type RealtimeConfig struct {
	SendBuffer          int      `toml:"send_buffer" split_words:"true" validate:"min=1"`
	PingIntervalSeconds int      `toml:"ping_interval_seconds" split_words:"true" validate:"min=1"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds" split_words:"true" validate:"min=1"`
	AllowedOrigins      []string `toml:"allowed_origins" split_words:"true"`
}

type CatalogServiceConfig struct {
	Enabled bool   `toml:"enabled" split_words:"true"`
	URL     string `toml:"url" split_words:"true" validate:"required_if=Enabled true,omitempty,url"`
	Timeout int    `toml:"timeout" split_words:"true" validate:"min=0"`
}

type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled" split_words:"true"`
	URL      string `toml:"url" split_words:"true" validate:"required_if=Enabled true"`
	Exchange string `toml:"exchange" split_words:"true" validate:"required_if=Enabled true"`
}

// Default значения, которые действуют, если их нет ни в файле, ни в окружении
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "testdrive_service",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			AutoMigrate:     true,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "testdrive-service",
		},
		Holds: HoldsConfig{TTLSeconds: 180, Shards: 32},
		Booking: BookingConfig{
			MinNoticeMinutes:   60,
			AdvanceBookingDays: 30,
		},
		Realtime: RealtimeConfig{
			SendBuffer:          64,
			PingIntervalSeconds: 30,
			WriteTimeoutSeconds: 10,
		},
		CatalogService: CatalogServiceConfig{Timeout: 5},
		RabbitMQ:       RabbitMQConfig{Exchange: "testdrive.events"},
	}
}

// Load читает config.toml поверх значений по умолчанию и применяет переменные окружения.
// Отсутствующий файл не ошибка: сервис можно настроить только окружением.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
