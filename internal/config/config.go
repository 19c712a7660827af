package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix              = "BOOKFRIENDS"
	defaultHTTPAddress     = "127.0.0.1:8080"
	defaultStoreDriver     = StoreDriverSQLite
	defaultDatabasePath    = "bookfriends.db"
	defaultRedisAddress    = "127.0.0.1:6379"
	defaultRedisKeyPrefix  = "bookfriends:"
	defaultCodeMaxAttempts = 1000
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
)

// Supported store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress     string
	StoreDriver     string
	DatabasePath    string
	RedisAddress    string
	RedisDB         int
	RedisPassword   string
	RedisKeyPrefix  string
	CodeMaxAttempts int
	LogLevel        string
	LogFormat       string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("store.driver", defaultStoreDriver)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("redis.address", defaultRedisAddress)
	configViper.SetDefault("redis.db", 0)
	configViper.SetDefault("redis.password", "")
	configViper.SetDefault("redis.key_prefix", defaultRedisKeyPrefix)
	configViper.SetDefault("groups.code_max_attempts", defaultCodeMaxAttempts)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     configViper.GetString("http.address"),
		StoreDriver:     strings.ToLower(strings.TrimSpace(configViper.GetString("store.driver"))),
		DatabasePath:    configViper.GetString("database.path"),
		RedisAddress:    configViper.GetString("redis.address"),
		RedisDB:         configViper.GetInt("redis.db"),
		RedisPassword:   configViper.GetString("redis.password"),
		RedisKeyPrefix:  configViper.GetString("redis.key_prefix"),
		CodeMaxAttempts: configViper.GetInt("groups.code_max_attempts"),
		LogLevel:        configViper.GetString("log.level"),
		LogFormat:       configViper.GetString("log.format"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	switch c.StoreDriver {
	case StoreDriverSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("database.path is required for the sqlite store")
		}
	case StoreDriverRedis:
		if strings.TrimSpace(c.RedisAddress) == "" {
			return fmt.Errorf("redis.address is required for the redis store")
		}
		if c.RedisDB < 0 {
			return fmt.Errorf("redis.db must not be negative")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("store.driver %q is not supported", c.StoreDriver)
	}
	if c.CodeMaxAttempts <= 0 {
		return fmt.Errorf("groups.code_max_attempts must be positive")
	}
	return nil
}
