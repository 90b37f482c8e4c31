// Package config loads segdata configuration from file and environment.
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
	Project ProjectConfig `yaml:"project" mapstructure:"project"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	RunLog  RunLogConfig  `yaml:"runlog" mapstructure:"runlog"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ProjectConfig configures the data directory layout.
type ProjectConfig struct {
	RawDir     string `yaml:"raw_dir" mapstructure:"raw_dir"`
	StagingDir string `yaml:"staging_dir" mapstructure:"staging_dir"`
	FinalDir   string `yaml:"final_dir" mapstructure:"final_dir"`
}

// FetchConfig configures the raw-file downloader.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MinFileSize int64   `yaml:"min_file_size" mapstructure:"min_file_size"`
}

// RunLogConfig configures the SQLite run log.
type RunLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from segdata.yaml and SEGDATA_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("segdata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SEGDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("project.raw_dir", "dados_brutos")
	v.SetDefault("project.staging_dir", "dados_tratados")
	v.SetDefault("project.final_dir", "dados_finais")
	v.SetDefault("fetch.user_agent", "segdata/1.0 (+https://github.com/dadosbr/segdata)")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.concurrency", 2)
	v.SetDefault("fetch.rate_per_sec", 1.0)
	v.SetDefault("fetch.min_file_size", 1024)
	v.SetDefault("runlog.path", ".segdata/runlog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
