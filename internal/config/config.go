// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	PostgresURL     string `mapstructure:"postgres_url"`
	UseMemoryStore  bool   `mapstructure:"use_memory_store"`
	Workers         int    `mapstructure:"workers"`
	EventBufferSize int    `mapstructure:"event_buffer_size"`
	TasksFile       string `mapstructure:"tasks_file"`
	RouterName      string `mapstructure:"router_name"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
	LogFile         string `mapstructure:"log_file"`
}

const (
	DefaultWorkers         = 5
	DefaultEventBufferSize = 256
	DefaultTasksFile       = "data/tasks.yaml"
	DefaultRouterName      = "uniswap-v2"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"workers":           DefaultWorkers,
		"event_buffer_size": DefaultEventBufferSize,
		"tasks_file":        DefaultTasksFile,
		"router_name":       DefaultRouterName,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if !cfg.UseMemoryStore {
		if cfg.PostgresURL == "" {
			return errors.New("missing postgres_url in configuration")
		}
		if err := validateURLWithCache(cfg.PostgresURL, "postgres"); err != nil {
			return errors.New("invalid postgres_url protocol")
		}
	}
	if cfg.TasksFile == "" {
		return errors.New("tasks_file is empty")
	}
	if cfg.RouterName == "" {
		return errors.New("router_name is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Workers <= 0 {
		return errors.New("invalid workers count")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("invalid event_buffer_size")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envPostgres := v.GetString("POSTGRES_URL")
	if envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}

	envTasks := v.GetString("TASKS_FILE")
	if envTasks != "" {
		cfg.TasksFile = envTasks
	}
	return nil
}
