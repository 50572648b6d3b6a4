package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string        `mapstructure:"env"`
	HTTPPort           int           `mapstructure:"http_port"`
	MetricsPort        int           `mapstructure:"metrics_port"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
	StoragePath        string        `mapstructure:"storage_path"` // sqlite file, local env only
	PostgresAddr       string        `mapstructure:"postgres_addr"`
	RedisAddr          string        `mapstructure:"redis_addr"`
	KafkaBrokers       []string      `mapstructure:"kafka_brokers"`
	KafkaTopic         string        `mapstructure:"kafka_topic"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	TokenSecret        string        `mapstructure:"token_secret"`
	RecaptchaSecret    string        `mapstructure:"recaptcha_secret"`
	RecaptchaVerifyURL string        `mapstructure:"recaptcha_verify_url"` // empty = Google siteverify
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/calyclub/")
	viper.AddConfigPath(".")

	viper.SetDefault("env", "local")
	viper.SetDefault("http_port", 8080)
	viper.SetDefault("metrics_port", 9090)
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("storage_path", "./calyclub.db")
	viper.SetDefault("redis_addr", "localhost:6379")
	viper.SetDefault("kafka_brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka_topic", "security_events")
	viper.SetDefault("token_ttl", "1h")
	viper.SetDefault("recaptcha_verify_url", "")

	viper.SetEnvPrefix("CALYCLUB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// MustLoad panics on a broken configuration; the service cannot run without
// its secrets and addresses.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}
