// Package config loads the server configuration from config.yaml with
// environment-variable overrides.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string `mapstructure:"http_addr"`
	ServiceName string `mapstructure:"service_name"`
	Database    struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Redis struct {
		Addr string        `mapstructure:"addr"`
		TTL  time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Auth struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"auth"`
	Otel struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"otel"`
	Timeouts struct {
		Request      time.Duration `mapstructure:"request"`
		Collaborator time.Duration `mapstructure:"collaborator"`
	} `mapstructure:"timeouts"`
}

func Load() (Config, error) {
	viper.SetDefault("http_addr", ":8080")
	viper.SetDefault("service_name", "ordercore")
	viper.SetDefault("database.path", "./data/ordercore.db")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.ttl", 30*time.Second)
	viper.SetDefault("otel.endpoint", "localhost:4317")
	viper.SetDefault("timeouts.request", 15*time.Second)
	viper.SetDefault("timeouts.collaborator", 3*time.Second)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("http_addr", "HTTP_ADDR")
	_ = viper.BindEnv("service_name", "SERVICE_NAME")
	_ = viper.BindEnv("database.path", "DATABASE_PATH")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("auth.secret", "AUTH_SECRET")
	_ = viper.BindEnv("otel.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
