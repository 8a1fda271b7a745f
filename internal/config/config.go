// Package config loads the command line tool's configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"upload-mapper/internal/automapper"
	"upload-mapper/internal/logger"
	"upload-mapper/internal/match"
	"upload-mapper/internal/navigator"
)

// EnvPrefix prefixes every environment override, e.g. UPLOAD_MAPPER_LOG_LEVEL.
const EnvPrefix = "UPLOAD_MAPPER"

// Config holds all configuration.
type Config struct {
	Log        LogConfig
	Automapper AutomapperConfig
	Schema     SchemaConfig
	Synonyms   SynonymsConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Format string `validate:"oneof=json console"`
	Output string `validate:"required"`
}

// AutomapperConfig holds the automapper tuning parameters.
type AutomapperConfig struct {
	MaxDepth              int     `validate:"min=1,max=16"`
	MaxNodes              int     `validate:"min=1"`
	MinScore              float64 `validate:"gt=0,lte=1"`
	SuggestionMinScore    float64 `validate:"gt=0,lte=1"`
	SuggestionLimit       int     `validate:"min=1"`
	AllowMultipleMappings bool
}

// SchemaConfig locates the schema description.
type SchemaConfig struct {
	Path string
}

// SynonymsConfig locates an extra synonyms file, merged over the built-in table.
type SynonymsConfig struct {
	Path string
}

var configValidator = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("automapper.max_depth", navigator.DefaultMaxDepth)
	v.SetDefault("automapper.max_nodes", navigator.DefaultMaxNodes)
	v.SetDefault("automapper.min_score", match.DefaultMinScore)
	v.SetDefault("automapper.suggestion_min_score", match.DefaultSuggestionMinScore)
	v.SetDefault("automapper.suggestion_limit", match.DefaultSuggestionLimit)
	v.SetDefault("automapper.allow_multiple_mappings", false)

	v.SetDefault("schema.path", "")
	v.SetDefault("synonyms.path", "")
}

// Load reads the configuration.
//
// Priority (highest to lowest):
// 1. Environment variables with the UPLOAD_MAPPER_ prefix
// 2. The file at path, or upload-mapper.yaml in the working directory when path is empty
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("upload-mapper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Automapper: AutomapperConfig{
			MaxDepth:              v.GetInt("automapper.max_depth"),
			MaxNodes:              v.GetInt("automapper.max_nodes"),
			MinScore:              v.GetFloat64("automapper.min_score"),
			SuggestionMinScore:    v.GetFloat64("automapper.suggestion_min_score"),
			SuggestionLimit:       v.GetInt("automapper.suggestion_limit"),
			AllowMultipleMappings: v.GetBool("automapper.allow_multiple_mappings"),
		},
		Schema: SchemaConfig{
			Path: v.GetString("schema.path"),
		},
		Synonyms: SynonymsConfig{
			Path: v.GetString("synonyms.path"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the declared constraints.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// Logger returns the logger configuration.
func (c LogConfig) Logger() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Output = c.Output

	return cfg
}

// Config returns the automapper configuration.
func (c AutomapperConfig) Config() automapper.Config {
	return automapper.Config{
		MaxDepth:              c.MaxDepth,
		MaxNodes:              c.MaxNodes,
		MinScore:              c.MinScore,
		SuggestionMinScore:    c.SuggestionMinScore,
		SuggestionLimit:       c.SuggestionLimit,
		AllowMultipleMappings: c.AllowMultipleMappings,
	}
}
