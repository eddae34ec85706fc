package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		ExternalAPI struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"externalAPI"`
		Prometheus struct {
			Port      string `mapstructure:"port"`
			CertFile  string `mapstructure:"certFile"`
			KeyFile   string `mapstructure:"keyFile"`
			EnableTLS bool   `mapstructure:"enableTLS"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres PostgresConfig `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT  JWTConfig  `mapstructure:"jwt"`
	CORS CORSConfig `mapstructure:"cors"`
}

type PostgresConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	DB             string        `mapstructure:"db"`
	SSLMode        string        `mapstructure:"sslmode"`
	MaxConns       int32         `mapstructure:"maxConns"`
	MinConns       int32         `mapstructure:"minConns"`
	AcquireTimeout time.Duration `mapstructure:"acquireTimeout"`
}

// JWTConfig holds the signing configuration for both token kinds.
// RefreshSecretKey is optional; ResolveSecrets falls back to SecretKey.
type JWTConfig struct {
	SecretKey        string        `mapstructure:"secretKey"`
	RefreshSecretKey string        `mapstructure:"refreshSecretKey"`
	AccessTokenTTL   time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL  time.Duration `mapstructure:"refreshTokenTTL"`
	Issuer           string        `mapstructure:"issuer"`
	Audience         string        `mapstructure:"audience"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// ResolveSecrets applies the refresh-secret fallback. Running with a shared
// secret for both token kinds is a weaker posture, so the fallback is logged
// rather than applied silently.
func (c *JWTConfig) ResolveSecrets(logger *slog.Logger) {
	if c.RefreshSecretKey == "" {
		logger.Warn("JWT refresh secret not configured, falling back to access-token secret")
		c.RefreshSecretKey = c.SecretKey
	}
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets come from the environment, never from the yml file.
	v.SetEnvPrefix("CREATORHUB")
	v.AutomaticEnv()
	if err := v.BindEnv("jwt.secretKey", "JWT_SECRET"); err != nil {
		return Config{}, fmt.Errorf("failed to bind JWT_SECRET: %w", err)
	}
	if err := v.BindEnv("jwt.refreshSecretKey", "JWT_REFRESH_SECRET"); err != nil {
		return Config{}, fmt.Errorf("failed to bind JWT_REFRESH_SECRET: %w", err)
	}
	if err := v.BindEnv("repositories.postgres.password", "POSTGRES_PASSWORD"); err != nil {
		return Config{}, fmt.Errorf("failed to bind POSTGRES_PASSWORD: %w", err)
	}

	// Defaults match the original deployment: short-lived access tokens,
	// week-long refresh tokens.
	v.SetDefault("jwt.accessTokenTTL", "15m")
	v.SetDefault("jwt.refreshTokenTTL", "168h")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
