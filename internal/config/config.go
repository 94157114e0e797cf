package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "VPNSHOP_"

type Config struct {
	Primary     Primary           `koanf:"primary"`
	Server      ServerConfig      `koanf:"server"`
	Telegram    TelegramConfig    `koanf:"telegram"`
	CryptoPay   CryptoPayConfig   `koanf:"cryptopay"`
	Idempotency IdempotencyConfig `koanf:"idempotency"`
	Database    DatabaseConfig    `koanf:"database"`
	Bot         BotConfig         `koanf:"bot"`
	Retry       RetryConfig       `koanf:"retry"`
	Logger      LoggerConfig      `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production"`
}

type ServerConfig struct {
	Port           string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	// InternalSecret guards /api/confirm_stars. Empty disables the check.
	InternalSecret string `koanf:"internal_secret"`
}

type TelegramConfig struct {
	BotToken    string        `koanf:"bot_token" validate:"required"`
	APIEndpoint string        `koanf:"api_endpoint" validate:"required"`
	Timeout     time.Duration `koanf:"timeout" validate:"required"`
	// RequireValidInitData turns a failed launch-data signature into a 403
	// instead of a soft "verified": false flag on the order response.
	RequireValidInitData bool          `koanf:"require_valid_init_data"`
	InitDataMaxAge       time.Duration `koanf:"init_data_max_age"`
}

type CryptoPayConfig struct {
	BaseURL  string        `koanf:"base_url" validate:"required,url"`
	APIToken string        `koanf:"api_token" validate:"required"`
	Asset    string        `koanf:"asset" validate:"required"`
	Timeout  time.Duration `koanf:"timeout" validate:"required"`
	// InvoiceExpiresIn is forwarded as expires_in; zero lets the gateway decide.
	InvoiceExpiresIn time.Duration `koanf:"invoice_expires_in"`
	WebhookToken     string        `koanf:"webhook_token"`
	VerifySignature  bool          `koanf:"verify_signature"`
}

type IdempotencyConfig struct {
	TTL           time.Duration `koanf:"ttl" validate:"required"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required"`
}

type BotConfig struct {
	HostURL        string        `koanf:"host_url"`
	ConfirmTimeout time.Duration `koanf:"confirm_timeout" validate:"required"`
	PollTimeout    int           `koanf:"poll_timeout" validate:"min=0"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int32         `koanf:"max_retries" validate:"min=1"`
}

type LoggerConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                      "development",
		"server.port":                      "8080",
		"server.read_timeout":              10 * time.Second,
		"server.write_timeout":             40 * time.Second,
		"server.idle_timeout":              60 * time.Second,
		"server.request_timeout":           35 * time.Second,
		"telegram.api_endpoint":            "https://api.telegram.org/bot%s/%s",
		"telegram.timeout":                 15 * time.Second,
		"telegram.require_valid_init_data": false,
		"telegram.init_data_max_age":       time.Duration(0),
		"cryptopay.base_url":               "https://pay.crypt.bot/api",
		"cryptopay.asset":                  "USDT",
		"cryptopay.timeout":                15 * time.Second,
		"idempotency.ttl":                  300 * time.Second,
		"idempotency.sweep_interval":       time.Minute,
		"database.enabled":                 false,
		"database.port":                    5432,
		"database.ssl_mode":                "disable",
		"database.max_open_conns":          10,
		"database.max_idle_conns":          2,
		"database.conn_max_lifetime":       time.Hour,
		"database.conn_max_idle_time":      30 * time.Minute,
		"bot.confirm_timeout":              15 * time.Second,
		"bot.poll_timeout":                 60,
		"retry.base_delay":                 time.Second,
		"retry.max_retries":                3,
		"logger.level":                     "info",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	if err := mainConfig.Validate(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs struct tag validation and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Database.Enabled {
		if err := c.Database.validateEnabled(); err != nil {
			return err
		}
	}

	if c.CryptoPay.VerifySignature && c.CryptoPay.APIToken == "" {
		return errors.New("cryptopay.verify_signature requires cryptopay.api_token")
	}

	return nil
}
