package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         App        `mapstructure:"app"`
	DatabaseURL string     `mapstructure:"database_url"`
	Retry       Retry      `mapstructure:"retry"`
	Discussion  Discussion `mapstructure:"discussion"`
}

type App struct {
	Port            string        `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MigrationDir    string        `mapstructure:"migration_dir"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     string        `mapstructure:"backoff"`
	Base        time.Duration `mapstructure:"base"`
	Factor      float64       `mapstructure:"factor"`
	Max         time.Duration `mapstructure:"max"`
	Jitter      float64       `mapstructure:"jitter"`
}

// Discussion tunes the thread engine: page size and the two UI-smoothing
// windows.
type Discussion struct {
	PageSize            int           `mapstructure:"page_size"`
	InitialLoadTimeout  time.Duration `mapstructure:"initial_load_timeout"`
	FirstCommentTimeout time.Duration `mapstructure:"first_comment_timeout"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", 10*time.Second)
	v.SetDefault("app.migration_dir", "migrations")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("discussion.page_size", 10)
	v.SetDefault("discussion.initial_load_timeout", 5*time.Second)
	v.SetDefault("discussion.first_comment_timeout", 2*time.Second)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}

	return cfg, nil
}
