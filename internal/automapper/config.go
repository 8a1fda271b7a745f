package automapper

import (
	"go.uber.org/zap"

	"upload-mapper/internal/match"
	"upload-mapper/internal/navigator"
)

// Config tunes the automapper. Zero values fall back to the defaults.
type Config struct {
	// MaxDepth is the number of relationship hops a traversal branch may take.
	MaxDepth int
	// MaxNodes caps the fields and relationships visited per traversal.
	MaxNodes int
	// MinScore is the lowest score full mode accepts.
	MinScore float64
	// SuggestionMinScore is the lowest score offered as a suggestion.
	SuggestionMinScore float64
	// SuggestionLimit is the number of suggestions per header.
	SuggestionLimit int
	// AllowMultipleMappings lets several headers map to one path in full mode.
	AllowMultipleMappings bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:           navigator.DefaultMaxDepth,
		MaxNodes:           navigator.DefaultMaxNodes,
		MinScore:           match.DefaultMinScore,
		SuggestionMinScore: match.DefaultSuggestionMinScore,
		SuggestionLimit:    match.DefaultSuggestionLimit,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if c.MaxDepth <= 0 {
		c.MaxDepth = def.MaxDepth
	}

	if c.MaxNodes <= 0 {
		c.MaxNodes = def.MaxNodes
	}

	if c.MinScore <= 0 {
		c.MinScore = def.MinScore
	}

	if c.SuggestionMinScore <= 0 {
		c.SuggestionMinScore = def.SuggestionMinScore
	}

	if c.SuggestionLimit <= 0 {
		c.SuggestionLimit = def.SuggestionLimit
	}

	return c
}

// Option configures an Automapper.
type Option func(*Automapper)

// WithConfig sets the tuning parameters.
func WithConfig(cfg Config) Option {
	return func(a *Automapper) {
		a.cfg = cfg.withDefaults()
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Automapper) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSynonyms replaces the synonym table (DefaultSynonyms by default).
func WithSynonyms(s match.Synonyms) Option {
	return func(a *Automapper) {
		a.synonyms = s
	}
}

// WithCache shares a traversal cache. It must only be shared by automappers
// over the same schema and synonyms.
func WithCache(c *Cache) Option {
	return func(a *Automapper) {
		if c != nil {
			a.cache = c
		}
	}
}

// WithMetrics records cache and result metrics.
func WithMetrics(m *Metrics) Option {
	return func(a *Automapper) {
		a.metrics = m
	}
}
