// Package config собирает конфигурацию сервиса из значений по умолчанию,
// JSON-файла, флагов командной строки и переменных окружения.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
)

// Значения по умолчанию.
const (
	DefaultServerAddress      = ":8080"
	DefaultBaseURL            = "http://localhost:8080"
	DefaultSecretKey          = "change-me-in-production"
	DefaultTLSCertFile        = "server.crt"
	DefaultTLSKeyFile         = "server.key"
	DefaultSlugLength         = 6
	DefaultSessionTTL         = 24 * time.Hour
	DefaultRedisTTL           = 10 * time.Minute
	DefaultClickFlushInterval = 2 * time.Second
	DefaultClickBatchSize     = 100
)

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress   string `env:"SERVER_ADDRESS"`    // Адрес HTTP-сервера
	BaseURL         string `env:"BASE_URL"`          // Базовый адрес коротких ссылок
	FileStoragePath string `env:"FILE_STORAGE_PATH"` // Файловое хранилище
	DatabaseDSN     string `env:"DATABASE_DSN"`      // PostgreSQL
	SQLitePath      string `env:"SQLITE_PATH"`       // SQLite
	ConfigPath      string `env:"CONFIG"`            // JSON-файл конфигурации

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	RedisTTL      time.Duration `env:"REDIS_TTL"`

	SecretKey  string        `env:"SECRET_KEY"`
	SessionTTL time.Duration `env:"SESSION_TTL"`

	// Любое непустое значение включает HTTPS.
	EnableHTTPS string `env:"ENABLE_HTTPS"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	SlugLength         int           `env:"SLUG_LENGTH"`
	ClickFlushInterval time.Duration `env:"CLICK_FLUSH_INTERVAL"`
	ClickBatchSize     int           `env:"CLICK_BATCH_SIZE"`

	Debug bool `env:"DEBUG"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		ServerAddress:      DefaultServerAddress,
		BaseURL:            DefaultBaseURL,
		SecretKey:          DefaultSecretKey,
		SessionTTL:         DefaultSessionTTL,
		RedisTTL:           DefaultRedisTTL,
		TLSCertFile:        DefaultTLSCertFile,
		TLSKeyFile:         DefaultTLSKeyFile,
		SlugLength:         DefaultSlugLength,
		ClickFlushInterval: DefaultClickFlushInterval,
		ClickBatchSize:     DefaultClickBatchSize,
	}
}

// Load разбирает конфигурацию. Приоритет источников по возрастанию:
// значения по умолчанию, JSON-файл, флаги, переменные окружения.
func Load(args []string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("shortenit", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "базовый адрес коротких ссылок (env: BASE_URL)")
	fs.StringVar(&cfg.FileStoragePath, "f", cfg.FileStoragePath, "путь к файловому хранилищу (env: FILE_STORAGE_PATH)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к PostgreSQL (env: DATABASE_DSN)")
	fs.StringVar(&cfg.SQLitePath, "s", cfg.SQLitePath, "путь к базе SQLite (env: SQLITE_PATH)")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "адрес Redis для кэша (env: REDIS_ADDR)")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "ключ подписи сессий (env: SECRET_KEY)")
	fs.StringVar(&cfg.ConfigPath, "c", cfg.ConfigPath, "путь к JSON-файлу конфигурации (env: CONFIG)")
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "путь к JSON-файлу конфигурации (env: CONFIG)")
	fs.BoolFunc("e", "включить HTTPS (env: ENABLE_HTTPS)", func(v string) error {
		if v == "false" {
			cfg.EnableHTTPS = ""
			return nil
		}
		cfg.EnableHTTPS = "true"
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	path := cfg.ConfigPath
	if p, ok := os.LookupEnv("CONFIG"); ok && p != "" {
		path = p
	}
	jc, err := loadJSONConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.applyJSONConfig(jc, set)

	// Переменные окружения имеют наивысший приоритет
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsHTTPSEnabled сообщает, нужно ли поднимать HTTPS-сервер.
func (c *Config) IsHTTPSEnabled() bool {
	return c.EnableHTTPS != "" && c.EnableHTTPS != "false"
}
