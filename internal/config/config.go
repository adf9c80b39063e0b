// Package config loads the bigform runtime configuration from YAML, .env
// files and BIGFORM_* environment variables.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Flash   FlashConfig   `mapstructure:"flash"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Logging LoggingConfig `mapstructure:"logging"`
	Build   BuildConfig   `mapstructure:"build"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	OpenBrowser bool   `mapstructure:"open_browser"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL is the address the browser is pointed at on startup.
func (s ServerConfig) URL() string {
	return fmt.Sprintf("http://%s/", s.Addr())
}

type SessionConfig struct {
	// Secret signs the session cookie. Empty means a random per-process key.
	Secret       string        `mapstructure:"secret"`
	TTL          time.Duration `mapstructure:"ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type FlashConfig struct {
	Backend string        `mapstructure:"backend"` // memory | redis
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BuildConfig struct {
	Version string `mapstructure:"version"`
	Commit  string `mapstructure:"commit"`
}

const (
	FlashBackendMemory = "memory"
	FlashBackendRedis  = "redis"
)
