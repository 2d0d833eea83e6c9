package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type Config struct {
	Environment   string
	ServerAddress string
	DB            DBConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment:   v.GetString("APP_ENV"),
		ServerAddress: v.GetString("SERVER_ADDRESS"),
		DB: DBConfig{
			DSN:          v.GetString("POSTGRES_CONN"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = "0.0.0.0:8080"
	}

	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_CONN is required")
	}
	return cfg, nil
}
