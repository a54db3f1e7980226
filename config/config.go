package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	Env        string `env:"ENVIRONMENT"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	ServerDNS  string `env:"SERVER_DNS" envDefault:"http://localhost:8080"`
	DBPath     string `env:"DB_PATH" envDefault:"newsdesk.sqlite"`
	JWTSecret  string `env:"JWT_SECRET"`

	Mailgun struct {
		Domain      string `env:"MAILGUN_DOMAIN"`
		APIKey      string `env:"MAILGUN_API_KEY"`
		SenderFrom  string `env:"MAILGUN_SENDER_FROM"`
		TimeoutSecs int    `env:"MAILGUN_TIMEOUT_SECS" envDefault:"10"`
	}

	Webhook struct {
		TimeoutSecs int `env:"WEBHOOK_TIMEOUT_SECS" envDefault:"10"`
	}

	Dispatch struct {
		IntervalSecs    int `env:"DISPATCH_INTERVAL_SECS" envDefault:"5"`
		BatchSize       int `env:"DISPATCH_BATCH_SIZE" envDefault:"20"`
		MaxAttempts     int `env:"DISPATCH_MAX_ATTEMPTS" envDefault:"5"`
		BackoffBaseSecs int `env:"DISPATCH_BACKOFF_BASE_SECS" envDefault:"30"`
	}

	log *zap.Logger
}

func NewConfig(lc fx.Lifecycle, log *zap.Logger) *Config {
	cfg := &Config{log: log}
	env.Parse(cfg)

	if err := cfg.validateSecrets(); err != nil {
		if cfg.Env == "development" || cfg.Env == "" {
			cfg.log.Sugar().Infof("%s (falling back to insecure defaults in development env)", err)
			if cfg.JWTSecret == "" {
				cfg.JWTSecret = "development-secret"
			}
		} else {
			cfg.log.Sugar().Panic(err)
		}
	}

	return cfg
}

func (cfg *Config) validateSecrets() error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET envvar must be populated")
	}
	if cfg.Mailgun.Domain == "" || cfg.Mailgun.APIKey == "" {
		return errors.New("MAILGUN_DOMAIN and MAILGUN_API_KEY envvars must be populated")
	}
	return nil
}
