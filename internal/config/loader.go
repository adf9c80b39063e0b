package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "BIGFORM"

// Load reads config.yaml from ./configs or the working directory (both
// optional), applies BIGFORM_* environment overrides and validates the result.
func Load() (*Config, error) {
	loadEnvFile(".env")

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}
	return finish(v)
}

// LoadFromFile loads configuration from an explicit YAML path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key, which also makes each one overridable by
// its environment variable during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.open_browser", true)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.cookie_name", "bigform_session")
	v.SetDefault("session.secure_cookie", false)

	v.SetDefault("flash.backend", FlashBackendMemory)
	v.SetDefault("flash.ttl", "10m")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("upload.max_bytes", 10<<20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("build.version", "dev")
	v.SetDefault("build.commit", "unknown")
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	// Existing environment variables win over the file.
	_ = godotenv.Load(path)
}
