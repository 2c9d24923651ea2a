package config

import (
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Uploads   UploadsConfig
	Transport TransportConfig
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	// Maximum accepted request body size in bytes.
	MaxBodyBytes int64  `mapstructure:"maxBodyBytes"`
	JWTSecret    string `mapstructure:"jwtSecret"`
}

type CORSConfig struct {
	FrontendURL string `mapstructure:"frontendURL"`
	// Full allow-list: the fixed local-dev origins plus FrontendURL,
	// de-duplicated. Computed by Load; immutable afterwards.
	AllowedOrigins []string `mapstructure:"-"`
}

type UploadsConfig struct {
	Dir string `mapstructure:"dir"`
}

type TransportConfig struct {
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	PingInterval time.Duration `mapstructure:"pingInterval"`
	SendBuffer   int           `mapstructure:"sendBuffer"`
}

func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}
