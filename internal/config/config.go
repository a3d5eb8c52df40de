package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type APICfg struct {
	BaseURL                string `mapstructure:"base_url"`
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`
	RetryMaxElapsedSeconds int    `mapstructure:"retry_max_elapsed_seconds"`
	RatePerSecond          int    `mapstructure:"rate_per_second"`
	BreakerMaxFailures     uint32 `mapstructure:"breaker_max_failures"`
	BreakerTimeoutSeconds  int    `mapstructure:"breaker_timeout_seconds"`
}

type AuthCfg struct {
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token_file"`
}

type RedisCfg struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type StubCfg struct {
	Port          int    `mapstructure:"port"`
	JWTPublicKey  string `mapstructure:"jwt_public_key_path"`
	SeedFixtures  bool   `mapstructure:"seed_fixtures"`
	CurrentUserID int    `mapstructure:"current_user_id"`
}

type Config struct {
	API   APICfg   `mapstructure:"api"`
	Auth  AuthCfg  `mapstructure:"auth"`
	Redis RedisCfg `mapstructure:"redis"`
	Kafka KafkaCfg `mapstructure:"kafka"`
	Stub  StubCfg  `mapstructure:"stub"`
	Dev   bool     `mapstructure:"dev"`

	// Derived
	Timeout         time.Duration
	RetryMaxElapsed time.Duration
	BreakerTimeout  time.Duration
	CacheTTL        time.Duration
}

// Load reads the config file at path and applies env overrides
// (RENAIX_API_BASE_URL etc.). Missing file is not an error when env
// supplies everything needed.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("RENAIX")
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8084/api/v1"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 15
	}
	if cfg.API.RetryMaxElapsedSeconds == 0 {
		cfg.API.RetryMaxElapsedSeconds = 20
	}
	if cfg.API.RatePerSecond == 0 {
		cfg.API.RatePerSecond = 10
	}
	if cfg.API.BreakerMaxFailures == 0 {
		cfg.API.BreakerMaxFailures = 5
	}
	if cfg.API.BreakerTimeoutSeconds == 0 {
		cfg.API.BreakerTimeoutSeconds = 30
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 60
	}
	if cfg.Stub.Port == 0 {
		cfg.Stub.Port = 8084
	}

	cfg.Timeout = time.Duration(cfg.API.TimeoutSeconds) * time.Second
	cfg.RetryMaxElapsed = time.Duration(cfg.API.RetryMaxElapsedSeconds) * time.Second
	cfg.BreakerTimeout = time.Duration(cfg.API.BreakerTimeoutSeconds) * time.Second
	cfg.CacheTTL = time.Duration(cfg.Redis.TTLSeconds) * time.Second
	return &cfg, nil
}
