// Package dispatch runs the two-stage cyberbullying prediction: a binary gate
// followed, for positive phrases only, by the bullying type classifier.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// Default model names in the artifact store.
const (
	DefaultBinaryModel     = "model_prediction"
	DefaultClassifierModel = "model_classifier"
)

// Config names the models the dispatcher loads.
type Config struct {
	BinaryModel     string
	ClassifierModel string
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		BinaryModel:     DefaultBinaryModel,
		ClassifierModel: DefaultClassifierModel,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.BinaryModel == "" {
		return errors.New("binary model name is required")
	}
	if c.ClassifierModel == "" {
		return errors.New("classifier model name is required")
	}
	return nil
}

// Dispatcher executes the two-stage classification over a single phrase.
type Dispatcher struct {
	config Config
	loader ports.ModelLoader
	logger ports.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(config Config, loader ports.ModelLoader, logger ports.Logger) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, errors.New("model loader is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Dispatcher{
		config: config,
		loader: loader,
		logger: logger,
	}, nil
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

// Predict classifies phrase. Both models are loaded before any prediction so
// a missing artifact fails the call regardless of the phrase.
func (d *Dispatcher) Predict(ctx context.Context, phrase string) (*domain.PredictionResult, error) {
	binary, err := d.loader.LoadBinary(ctx, d.config.BinaryModel)
	if err != nil {
		return nil, fmt.Errorf("load binary model %q: %w", d.config.BinaryModel, err)
	}
	classifier, err := d.loader.LoadClassifier(ctx, d.config.ClassifierModel)
	if err != nil {
		return nil, fmt.Errorf("load classifier model %q: %w", d.config.ClassifierModel, err)
	}

	result, err := binary.PredictPhrase(ctx, phrase)
	if err != nil {
		return nil, fmt.Errorf("binary prediction: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("binary prediction: %w: no result", domain.ErrInvalidPrediction)
	}

	d.logger.Debug("Binary prediction computed",
		"phrase", phrase,
		"prediction", result.Prediction,
	)

	switch result.Prediction {
	case 0:
		result.Type = nil
		return result, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidPrediction, result.Prediction)
	}

	labels, err := classifier.Predict(ctx, phrase)
	if err != nil {
		return nil, fmt.Errorf("type classification: %w", err)
	}
	if len(labels) == 0 {
		return nil, domain.ErrEmptyClassification
	}

	result.SetType(RelabelType(labels[0]))

	d.logger.Debug("Bullying type classified",
		"phrase", phrase,
		"raw_label", labels[0],
		"type", *result.Type,
	)

	return result, nil
}

// RelabelType upper-cases a classifier label and folds OTHER into AGGRESSION.
func RelabelType(label string) string {
	t := strings.ToUpper(label)
	if t == domain.TypeOther {
		return domain.TypeAggression
	}
	return t
}
