package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// defaultFrontendURL is the deployed frontend; it always seeds the
// allow-list unless FRONTEND_URL overrides it.
const defaultFrontendURL = "https://yaarfetch.vercel.app"

// localOrigins are always allowed so the frontend works against a local
// gateway without configuration.
var localOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// Load reads configuration from an optional config file and the
// environment, applies defaults, and validates the result once.
func Load(logger *slog.Logger, fileName string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.logLevel", "info")
	v.SetDefault("server.maxBodyBytes", 10<<20)
	v.SetDefault("server.jwtSecret", "")
	v.SetDefault("cors.frontendURL", defaultFrontendURL)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("transport.writeTimeout", "10s")
	v.SetDefault("transport.pingInterval", "30s")
	v.SetDefault("transport.sendBuffer", 256)

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// The deployment environment speaks PORT / FRONTEND_URL / APP_ENV.
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "APP_ENV")
	v.BindEnv("server.logLevel", "LOG_LEVEL")
	v.BindEnv("server.jwtSecret", "JWT_SECRET")
	v.BindEnv("cors.frontendURL", "FRONTEND_URL")
	v.BindEnv("uploads.dir", "UPLOADS_DIR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		logger.Debug("No config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.CORS.AllowedOrigins = buildAllowList(cfg.CORS.FrontendURL)

	logger.Info("Configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("environment", cfg.Server.Environment),
		slog.Any("allowedOrigins", cfg.CORS.AllowedOrigins),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.CORS.FrontendURL) == "" {
		return fmt.Errorf("frontend URL must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body size must be positive: %d", c.Server.MaxBodyBytes)
	}
	if c.Transport.SendBuffer <= 0 {
		return fmt.Errorf("transport send buffer must be positive: %d", c.Transport.SendBuffer)
	}
	return nil
}

// buildAllowList merges the fixed local origins with the frontend URL,
// preserving order and dropping duplicates and trailing slashes.
func buildAllowList(frontendURL string) []string {
	origins := make([]string, 0, len(localOrigins)+1)
	seen := make(map[string]struct{}, len(localOrigins)+1)
	for _, o := range append(append([]string{}, localOrigins...), frontendURL) {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		origins = append(origins, o)
	}
	return origins
}
