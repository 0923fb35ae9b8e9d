package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Output  OutputConfig  `mapstructure:"output"`
	Process ProcessConfig `mapstructure:"process"`
}

type DatasetConfig struct {
	Driver    string      `mapstructure:"driver" validate:"oneof=sqlite mysql"`
	Path      string      `mapstructure:"path"`
	SourceURL string      `mapstructure:"source_url" validate:"omitempty,url"`
	MySQL     MySQLConfig `mapstructure:"mysql"`
}

type MySQLConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type OutputConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type ProcessConfig struct {
	MaxWorkers int   `mapstructure:"max_workers" validate:"gte=0"`
	UserFrom   int64 `mapstructure:"user_from" validate:"gte=1"`
	UserTo     int64 `mapstructure:"user_to" validate:"gtefield=UserFrom"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/revstats")
	}

	v.SetDefault("dataset.driver", "sqlite")
	v.SetDefault("dataset.path", "anki-revlogs-10k.db")
	v.SetDefault("dataset.mysql.host", "localhost")
	v.SetDefault("dataset.mysql.port", 3306)
	v.SetDefault("output.path", "results.jsonl")
	v.SetDefault("process.max_workers", 0)
	v.SetDefault("process.user_from", 1)
	v.SetDefault("process.user_to", 10000)

	// Credentials come from the environment only, never from the config file
	if err := v.BindEnv("dataset.mysql.username", "REVSTATS_MYSQL_USERNAME"); err != nil {
		return nil, fmt.Errorf("failed to bind REVSTATS_MYSQL_USERNAME environment variable: %w", err)
	}
	if err := v.BindEnv("dataset.mysql.password", "REVSTATS_MYSQL_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind REVSTATS_MYSQL_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
