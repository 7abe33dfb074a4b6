package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, when present, a
// config.yaml in the working directory. Environment variables take precedence
// over file values. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.env", "development")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.bcrypt_cost", 0)

	// Optionally read config.yaml from the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// A missing config file is fine; environment variables suffice.
	}

	// Configure environment variables with the TASKBOARD_ prefix
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind critical environment variables. AutomaticEnv alone does
	// not surface env-only keys through Unmarshal.
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"server.port", "TASKBOARD_SERVER_PORT"},
		{"server.log_level", "TASKBOARD_SERVER_LOG_LEVEL"},
		{"server.env", "TASKBOARD_SERVER_ENV"},
		{"database.url", "TASKBOARD_DATABASE_URL"},
		{"auth.jwt_secret", "TASKBOARD_AUTH_JWT_SECRET"},
		{"auth.token_lifetime_minutes", "TASKBOARD_AUTH_TOKEN_LIFETIME_MINUTES"},
		{"auth.refresh_token_lifetime_minutes", "TASKBOARD_AUTH_REFRESH_TOKEN_LIFETIME_MINUTES"},
		{"auth.bcrypt_cost", "TASKBOARD_AUTH_BCRYPT_COST"},
	}
	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
