// Package config loads pathwise settings from an optional YAML file and
// PATHWISE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/pathwise/internal/recommend"
	"github.com/abhisek/pathwise/internal/session"
	"github.com/abhisek/pathwise/internal/store"
)

// EnvPrefix is prepended to every environment override, e.g.
// PATHWISE_REDIS_ADDR for redis.addr.
const EnvPrefix = "PATHWISE"

// Config is the full application configuration.
type Config struct {
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig configures the device-scoped backend. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	SeenTTL  time.Duration `mapstructure:"seen_ttl"`
}

// CatalogConfig points at a content directory. Empty uses the embedded content.
type CatalogConfig struct {
	Dir string `mapstructure:"dir"`
}

type AssessmentConfig struct {
	QuestionsPerAttempt int    `mapstructure:"questions_per_attempt"`
	TopTraits           int    `mapstructure:"top_traits"`
	MaxRecommendations  int    `mapstructure:"max_recommendations"`
	Normalization       string `mapstructure:"normalization"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultSeenTTL bounds how long an anonymous device's registry survives.
const DefaultSeenTTL = 180 * 24 * time.Hour

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.seen_ttl", DefaultSeenTTL)
	v.SetDefault("catalog.dir", "")
	v.SetDefault("assessment.questions_per_attempt", session.DefaultQuestionsPerAttempt)
	v.SetDefault("assessment.top_traits", session.DefaultTopTraits)
	v.SetDefault("assessment.max_recommendations", recommend.DefaultLimit)
	v.SetDefault("assessment.normalization", string(recommend.NormalizationCosine))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("metrics.addr", "")
}

// Load reads configuration. path names a YAML file; when empty, pathwise.yaml
// is looked up in the working directory and $XDG_CONFIG_HOME/pathwise and a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pathwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$XDG_CONFIG_HOME/pathwise")
		v.AddConfigPath("$HOME/.config/pathwise")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string
	if c.Assessment.QuestionsPerAttempt <= 0 {
		errs = append(errs, fmt.Sprintf("assessment.questions_per_attempt must be > 0, got %d", c.Assessment.QuestionsPerAttempt))
	}
	if c.Assessment.TopTraits <= 0 {
		errs = append(errs, fmt.Sprintf("assessment.top_traits must be > 0, got %d", c.Assessment.TopTraits))
	}
	if c.Assessment.MaxRecommendations <= 0 {
		errs = append(errs, fmt.Sprintf("assessment.max_recommendations must be > 0, got %d", c.Assessment.MaxRecommendations))
	}
	if _, err := recommend.ParseNormalization(c.Assessment.Normalization); err != nil {
		errs = append(errs, "assessment.normalization: "+err.Error())
	}
	if c.Redis.SeenTTL < 0 {
		errs = append(errs, fmt.Sprintf("redis.seen_ttl must not be negative, got %s", c.Redis.SeenTTL))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// DBPath resolves the SQLite path: the configured value, else the default
// data-directory location. The parent directory is created either way.
func (c *Config) DBPath() (string, error) {
	if c.DB.Path != "" {
		return c.DB.Path, store.EnsureDir(c.DB.Path)
	}
	return store.DefaultDBPath()
}

// EngineConfig maps assessment settings onto the engine configuration.
func (c *Config) EngineConfig() session.Config {
	cfg := session.DefaultConfig()
	cfg.QuestionsPerAttempt = c.Assessment.QuestionsPerAttempt
	cfg.TopTraits = c.Assessment.TopTraits
	cfg.Ranking.Limit = c.Assessment.MaxRecommendations
	if n, err := recommend.ParseNormalization(c.Assessment.Normalization); err == nil {
		cfg.Ranking.Normalization = n
	}
	return cfg
}
