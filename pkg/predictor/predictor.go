// Package predictor is the public entry point of the two-stage cyberbullying
// classifier: a binary gate decides whether a phrase is bullying and, only
// when it is, a type classifier names the kind of bullying.
package predictor

import (
	"context"
	"errors"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/models"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/modelstore"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/normalizer"
	"github.com/baditaflorin/go_cyberbullying/internal/core/dispatch"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/metrics"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
	"github.com/baditaflorin/go_cyberbullying/internal/warmup"
	"github.com/baditaflorin/l"
)

// Result is the outcome of a prediction.
type Result = domain.PredictionResult

// Model contracts, for callers bringing their own loader.
type (
	BinaryModel = ports.BinaryPredictor
	TypeModel   = ports.TypeClassifier
	Loader      = ports.ModelLoader
)

// Artifact is a stored model.
type Artifact = modelstore.Artifact

// Artifact payloads.
type (
	Kind          = modelstore.Kind
	LinearSpec    = modelstore.LinearSpec
	RemoteSpec    = modelstore.RemoteSpec
	LinearWeights = models.LinearWeights
	ClassWeights  = models.ClassWeights
)

// Artifact kinds.
const (
	KindLinearBinary     = modelstore.KindLinearBinary
	KindLinearMulticlass = modelstore.KindLinearMulticlass
	KindRemoteBinary     = modelstore.KindRemoteBinary
	KindRemoteClassifier = modelstore.KindRemoteClassifier
)

// NewArtifact returns an artifact with default cleaning options.
func NewArtifact(name string, kind Kind) *Artifact {
	return modelstore.NewArtifact(name, kind)
}

// Bullying types with special handling.
const (
	TypeOther      = domain.TypeOther
	TypeAggression = domain.TypeAggression
)

// Predictor classifies phrases.
type Predictor struct {
	dispatcher *dispatch.Dispatcher
	store      *modelstore.FileStore
	cache      *modelstore.CachingLoader
	logger     ports.Logger
	metrics    *metrics.Metrics
	warmed     bool
}

// Option defines a functional option for configuring a Predictor.
type Option func(*predictorConfig)

type predictorConfig struct {
	ModelDir        string
	BinaryModel     string
	ClassifierModel string
	Loader          ports.ModelLoader
	CacheSize       int
	CacheTTL        time.Duration
	Cache           bool
	Logger          ports.Logger
	Metrics         *metrics.Metrics
	WarmUp          bool
	WarmUpConfig    warmup.Config
}

// WithModelDir reads artifacts from dir instead of the installation directory.
func WithModelDir(dir string) Option {
	return func(cfg *predictorConfig) {
		cfg.ModelDir = dir
	}
}

// WithModelNames selects the binary and classifier artifacts.
func WithModelNames(binary, classifier string) Option {
	return func(cfg *predictorConfig) {
		cfg.BinaryModel = binary
		cfg.ClassifierModel = classifier
	}
}

// WithLoader replaces the artifact loader.
func WithLoader(loader ports.ModelLoader) Option {
	return func(cfg *predictorConfig) {
		cfg.Loader = loader
	}
}

// WithModelCache keeps loaded models in memory. Without it every prediction
// reloads both artifacts.
func WithModelCache(size int, ttl time.Duration) Option {
	return func(cfg *predictorConfig) {
		cfg.Cache = true
		cfg.CacheSize = size
		cfg.CacheTTL = ttl
	}
}

// WithLogger sets a custom logger.
func WithLogger(l l.Logger) Option {
	return func(cfg *predictorConfig) {
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithQuietLogger discards all log output.
func WithQuietLogger() Option {
	return func(cfg *predictorConfig) {
		cfg.Logger = logger.NewNopLogger()
	}
}

// WithMetrics records predictions and model loads in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *predictorConfig) {
		cfg.Metrics = m
	}
}

// WithWarmUp enables warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *predictorConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration and enables warm-up.
func WithWarmUpConfig(config warmup.Config) Option {
	return func(cfg *predictorConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a Predictor. Models are loaded lazily by Predict.
func New(opts ...Option) (*Predictor, error) {
	config := &predictorConfig{
		BinaryModel:     dispatch.DefaultBinaryModel,
		ClassifierModel: dispatch.DefaultClassifierModel,
		WarmUpConfig:    warmup.DefaultConfig(),
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

	p := &Predictor{logger: config.Logger, metrics: config.Metrics}

	loader := config.Loader
	if loader == nil {
		registry, err := normalizer.NewRegistry(config.Logger)
		if err != nil {
			return nil, err
		}
		p.store = modelstore.NewFileStore(config.ModelDir)
		fileLoader, err := modelstore.NewLoader(p.store, registry.Normalizer, config.Logger)
		if err != nil {
			return nil, err
		}
		if config.Metrics != nil {
			fileLoader.WithObserver(config.Metrics.ObserveModelLoad)
		}
		loader = fileLoader
	}

	if config.Cache {
		cache, err := modelstore.NewCachingLoader(loader, config.CacheSize, config.CacheTTL)
		if err != nil {
			return nil, err
		}
		p.cache = cache
		loader = cache
	}

	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{
		BinaryModel:     config.BinaryModel,
		ClassifierModel: config.ClassifierModel,
	}, loader, config.Logger)
	if err != nil {
		return nil, err
	}
	p.dispatcher = dispatcher

	if config.WarmUp {
		p.WarmUp(context.Background(), config.WarmUpConfig)
	}
	return p, nil
}

// Predict classifies phrase. Type is nil for non-bullying phrases; the
// classifier's OTHER label is reported as AGGRESSION.
func (p *Predictor) Predict(ctx context.Context, phrase string) (*Result, error) {
	result, err := p.dispatcher.Predict(ctx, phrase)
	if p.metrics != nil {
		var typ *string
		if result != nil {
			typ = result.Type
		}
		p.metrics.ObservePrediction(typ, err)
	}
	return result, err
}

// ModelDir returns the artifact directory, empty when a custom loader is used.
func (p *Predictor) ModelDir() string {
	if p.store == nil {
		return ""
	}
	return p.store.Dir()
}

// SaveModel stores an artifact in the model directory and drops cached models.
func (p *Predictor) SaveModel(ctx context.Context, artifact *Artifact) error {
	if p.store == nil {
		return errors.New("predictor has no model store")
	}
	if err := p.store.Save(ctx, artifact); err != nil {
		return err
	}
	if p.cache != nil {
		p.cache.Clear()
	}
	p.logger.Info("Model saved", "model", artifact.Name, "kind", string(artifact.Kind))
	return nil
}

// WarmUp loads both models and runs sample predictions.
func (p *Predictor) WarmUp(ctx context.Context, config warmup.Config) {
	if p.warmed {
		p.logger.Debug("Predictor already warmed up, skipping")
		return
	}

	manager, err := warmup.NewManager(p.logger, config)
	if err != nil {
		p.logger.Warn("Warm-up skipped", "error", err)
		return
	}
	manager.RegisterPredictor(func(ctx context.Context, text string) error {
		_, err := p.dispatcher.Predict(ctx, text)
		return err
	})
	manager.WarmUp(ctx)
	p.warmed = true
}

// Close releases the logger.
func (p *Predictor) Close() error {
	return p.logger.Close()
}
