package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Match   MatchConfig   `yaml:"match" mapstructure:"match"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// APIConfig points at the Lost & Found backend.
type APIConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Token     string  `yaml:"token" mapstructure:"token"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// MatchConfig tunes recommendation aggregation.
type MatchConfig struct {
	MinScore       float64 `yaml:"min_score" mapstructure:"min_score"`
	FanoutCap      int     `yaml:"fanout_cap" mapstructure:"fanout_cap"`
	CandidateLimit int     `yaml:"candidate_limit" mapstructure:"candidate_limit"`
}

// RefreshConfig sets the polling intervals per view family.
type RefreshConfig struct {
	UserIntervalSecs  int `yaml:"user_interval_secs" mapstructure:"user_interval_secs"`
	AdminIntervalSecs int `yaml:"admin_interval_secs" mapstructure:"admin_interval_secs"`
}

// CacheConfig configures the local snapshot cache.
type CacheConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the snapshot HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOSTFOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	// Token has no useful default, but registering the key lets
	// LOSTFOUND_API_TOKEN bind through AutomaticEnv.
	v.SetDefault("api.token", "")
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("match.min_score", 0.5)
	v.SetDefault("match.fanout_cap", 6)
	v.SetDefault("match.candidate_limit", 5)
	v.SetDefault("refresh.user_interval_secs", 30)
	v.SetDefault("refresh.admin_interval_secs", 60)
	v.SetDefault("cache.path", "lostfound.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
