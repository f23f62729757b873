package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/rafaeelnunesf/api-bate-papo-uol/pkg/config"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Redis    RedisConfig
	Presence PresenceConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	// Driver selects the persistence backend: "redis" or "memory".
	Driver string
}

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PresenceConfig struct {
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	StalenessThreshold time.Duration `mapstructure:"staleness_threshold"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "chat:")
	v.SetDefault("presence.sweep_interval", "15s")
	v.SetDefault("presence.staleness_threshold", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("presence.sweep_interval", "SWEEP_INTERVAL")
	v.BindEnv("presence.staleness_threshold", "STALENESS_THRESHOLD")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Presence.SweepInterval = parseDuration(v, "presence.sweep_interval", 15*time.Second)
	cfg.Presence.StalenessThreshold = parseDuration(v, "presence.staleness_threshold", 10*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return defaultVal
	}
	return d
}
