// Package cleaner is the public entry point of the tweet normalizer.
//
// A Cleaner runs text through a fixed sequence of stages: mention and
// retweet stripping, punctuation removal, lower casing, digit removal,
// stopword removal, lemmatization, repeated word collapsing and trimming.
// Every optional stage is enabled by default and can be switched off with
// the With* options.
package cleaner

import (
	"context"
	"errors"
	"io"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/normalizer"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/stream"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/metrics"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
	"github.com/baditaflorin/go_cyberbullying/internal/warmup"
	"github.com/baditaflorin/l"
)

// Table is a set of named, equally long columns with a "text" column.
type Table = domain.Table

// Options toggles the optional cleaning stages.
type Options = cleaning.Options

// LineStats summarizes a cleaned stream.
type LineStats = stream.Stats

// LineConfig controls stream cleaning.
type LineConfig = stream.Config

// TextColumn is the column cleaned by CleanTable.
const TextColumn = domain.TextColumn

// Placeholder replaces empty and missing cells after batch cleaning.
const Placeholder = cleaning.Placeholder

// NewTable creates an empty table.
func NewTable() *Table {
	return domain.NewTable()
}

// NewTextTable creates a table whose text column holds values.
func NewTextTable(values []any) *Table {
	return domain.NewTextTable(values)
}

// Cleaner normalizes tweets.
type Cleaner struct {
	pipeline *cleaning.Pipeline
	logger   ports.Logger
	metrics  *metrics.Metrics
	warmed   bool
}

// Option defines a functional option for configuring a Cleaner.
type Option func(*cleanerConfig)

type cleanerConfig struct {
	Options      cleaning.Options
	Logger       ports.Logger
	Metrics      *metrics.Metrics
	WarmUp       bool
	WarmUpConfig warmup.Config
}

// WithOptions replaces all stage toggles at once.
func WithOptions(options Options) Option {
	return func(cfg *cleanerConfig) {
		cfg.Options = options
	}
}

// WithoutPunctuationRemoval keeps non-letter characters.
func WithoutPunctuationRemoval() Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.RemovePunctuation = false
	}
}

// WithoutLowercase keeps the original case.
func WithoutLowercase() Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.LowerText = false
	}
}

// WithoutNumberRemoval keeps digits.
func WithoutNumberRemoval() Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.RemoveNumbers = false
	}
}

// WithoutStopwordRemoval keeps stopwords.
func WithoutStopwordRemoval() Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.RemoveStopwords = false
	}
}

// WithoutLemmatization skips the lemmatization stage.
func WithoutLemmatization() Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.Lemmatize = false
	}
}

// WithLanguage selects the stopword language.
func WithLanguage(language string) Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.Language = language
	}
}

// WithTokenWiseLemmatization lemmatizes whole words instead of single characters.
func WithTokenWiseLemmatization() Option {
	return func(cfg *cleanerConfig) {
		cfg.Options.LemmatizeMode = cleaning.LemmatizeTokens
	}
}

// WithLogger sets a custom logger.
func WithLogger(l l.Logger) Option {
	return func(cfg *cleanerConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithQuietLogger discards all log output.
func WithQuietLogger() Option {
	return func(cfg *cleanerConfig) {
		cfg.Logger = logger.NewNopLogger()
	}
}

// WithMetrics counts normalizations and placeholders in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *cleanerConfig) {
		cfg.Metrics = m
	}
}

// WithWarmUp enables warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *cleanerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration and enables warm-up.
func WithWarmUpConfig(config warmup.Config) Option {
	return func(cfg *cleanerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a Cleaner.
func New(opts ...Option) (*Cleaner, error) {
	config := &cleanerConfig{
		Options:      cleaning.DefaultOptions(),
		WarmUpConfig: warmup.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}

	pipeline, err := normalizer.NewPipeline(config.Options, config.Logger)
	if err != nil {
		return nil, err
	}

	c := &Cleaner{
		pipeline: pipeline,
		logger:   config.Logger,
		metrics:  config.Metrics,
	}
	if config.WarmUp {
		c.WarmUp(context.Background(), config.WarmUpConfig)
	}
	return c, nil
}

// Options returns the effective stage toggles.
func (c *Cleaner) Options() Options {
	return c.pipeline.Options()
}

// Stages returns the names of the active stages in execution order.
func (c *Cleaner) Stages() []string {
	return c.pipeline.Stages()
}

// Clean normalizes a single value. Non-string values are stringified first,
// so nil becomes "None" before cleaning.
func (c *Cleaner) Clean(v any) string {
	if c.metrics != nil {
		c.metrics.Normalizations.Inc()
	}
	return c.pipeline.Clean(v)
}

// Normalize implements the normalizer contract used by the models.
func (c *Cleaner) Normalize(text string) string {
	return c.Clean(text)
}

// CleanTable cleans the text column of raw, which may be a string, a slice or
// a *Table. Empty, missing, NaN and infinite cells of every column become
// Placeholder. The input is not modified.
func (c *Cleaner) CleanTable(raw any) (*Table, error) {
	table, replaced, err := c.pipeline.CleanTableCount(raw)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.Normalizations.Add(float64(table.Len()))
		c.metrics.Placeholders.Add(float64(replaced))
	}
	return table, nil
}

// CleanTexts cleans a list of texts; empty results become Placeholder.
func (c *Cleaner) CleanTexts(texts []string) []string {
	out := c.pipeline.CleanTexts(texts)
	if c.metrics != nil {
		c.metrics.Normalizations.Add(float64(len(texts)))
		for _, s := range out {
			if s == Placeholder {
				c.metrics.Placeholders.Inc()
			}
		}
	}
	return out
}

// CleanLines cleans r line by line and writes one cleaned line per input line to w.
func (c *Cleaner) CleanLines(ctx context.Context, r io.Reader, w io.Writer, config LineConfig) (LineStats, error) {
	if r == nil || w == nil {
		return LineStats{}, errors.New("reader and writer are required")
	}
	lines, err := stream.NewLineCleaner(c.pipeline, c.logger, config)
	if err != nil {
		return LineStats{}, err
	}
	stats, err := lines.CleanLines(ctx, r, w)
	if c.metrics != nil {
		c.metrics.Normalizations.Add(float64(stats.Lines))
		c.metrics.Placeholders.Add(float64(stats.Placeholders))
	}
	return stats, err
}

// WarmUp runs the pipeline over sample tweets.
func (c *Cleaner) WarmUp(ctx context.Context, config warmup.Config) {
	if c.warmed {
		c.logger.Debug("Cleaner already warmed up, skipping")
		return
	}

	manager, err := warmup.NewManager(c.logger, config)
	if err != nil {
		c.logger.Warn("Warm-up skipped", "error", err)
		return
	}
	manager.RegisterNormalizer(c.pipeline)
	manager.WarmUp(ctx)
	c.warmed = true
}

// Close releases the logger.
func (c *Cleaner) Close() error {
	return c.logger.Close()
}
