package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONConfig структура JSON-файла конфигурации.
// Указатели позволяют отличить отсутствующее поле от нулевого значения.
type JSONConfig struct {
	ServerAddress      *string `json:"server_address"`
	BaseURL            *string `json:"base_url"`
	FileStoragePath    *string `json:"file_storage_path"`
	DatabaseDSN        *string `json:"database_dsn"`
	SQLitePath         *string `json:"sqlite_path"`
	RedisAddr          *string `json:"redis_addr"`
	RedisTTL           *string `json:"redis_ttl"`
	SecretKey          *string `json:"secret_key"`
	SessionTTL         *string `json:"session_ttl"`
	EnableHTTPS        *bool   `json:"enable_https"`
	TLSCertFile        *string `json:"tls_cert_file"`
	TLSKeyFile         *string `json:"tls_key_file"`
	SlugLength         *int    `json:"slug_length"`
	ClickFlushInterval *string `json:"click_flush_interval"`
	ClickBatchSize     *int    `json:"click_batch_size"`
}

// loadJSONConfig читает JSON-файл конфигурации. Пустой путь дает пустую конфигурацию.
func loadJSONConfig(path string) (*JSONConfig, error) {
	jc := &JSONConfig{}
	if path == "" {
		return jc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, jc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := jc.validateDurations(); err != nil {
		return nil, err
	}
	return jc, nil
}

func (jc *JSONConfig) validateDurations() error {
	for name, v := range map[string]*string{
		"redis_ttl":            jc.RedisTTL,
		"session_ttl":          jc.SessionTTL,
		"click_flush_interval": jc.ClickFlushInterval,
	} {
		if v == nil {
			continue
		}
		if _, err := time.ParseDuration(*v); err != nil {
			return fmt.Errorf("config field %s: %w", name, err)
		}
	}
	return nil
}

// applyJSONConfig переносит значения из файла, не трогая поля,
// заданные флагами командной строки.
func (c *Config) applyJSONConfig(jc *JSONConfig, flagsSet map[string]bool) {
	setString := func(dst *string, src *string, flagName string) {
		if src != nil && !flagsSet[flagName] {
			*dst = *src
		}
	}
	setDuration := func(dst *time.Duration, src *string) {
		if src == nil {
			return
		}
		if d, err := time.ParseDuration(*src); err == nil {
			*dst = d
		}
	}

	setString(&c.ServerAddress, jc.ServerAddress, "a")
	setString(&c.BaseURL, jc.BaseURL, "b")
	setString(&c.FileStoragePath, jc.FileStoragePath, "f")
	setString(&c.DatabaseDSN, jc.DatabaseDSN, "d")
	setString(&c.SQLitePath, jc.SQLitePath, "s")
	setString(&c.RedisAddr, jc.RedisAddr, "r")
	setString(&c.SecretKey, jc.SecretKey, "k")
	setString(&c.TLSCertFile, jc.TLSCertFile, "")
	setString(&c.TLSKeyFile, jc.TLSKeyFile, "")

	if jc.EnableHTTPS != nil && !flagsSet["e"] {
		if *jc.EnableHTTPS {
			c.EnableHTTPS = "true"
		} else {
			c.EnableHTTPS = ""
		}
	}
	if jc.SlugLength != nil {
		c.SlugLength = *jc.SlugLength
	}
	if jc.ClickBatchSize != nil {
		c.ClickBatchSize = *jc.ClickBatchSize
	}
	setDuration(&c.RedisTTL, jc.RedisTTL)
	setDuration(&c.SessionTTL, jc.SessionTTL)
	setDuration(&c.ClickFlushInterval, jc.ClickFlushInterval)
}
