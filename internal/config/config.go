// Package config loads toolkit configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Case    CaseConfig    `yaml:"case" mapstructure:"case"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CaseConfig configures where ingested log tables live.
type CaseConfig struct {
	// Driver selects the case database backend: sqlite or postgres.
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the SQLite database file for the sqlite driver.
	Path string `yaml:"path" mapstructure:"path"`
	// DatabaseURL is the connection string for the postgres driver.
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// HistoryConfig configures the investigation outcome store.
type HistoryConfig struct {
	// Path is the SQLite file holding field usage history. Empty disables
	// historical scoring (the dimension stays neutral).
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("case.driver", "sqlite")
	v.SetDefault("case.path", "case.db")
	v.SetDefault("history.path", "field_history.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks driver selection and required connection settings.
func (c *Config) Validate() error {
	switch c.Case.Driver {
	case "sqlite":
		if c.Case.Path == "" {
			return eris.New("config: case.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Case.DatabaseURL == "" {
			return eris.New("config: case.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown case driver %q (want sqlite or postgres)", c.Case.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
