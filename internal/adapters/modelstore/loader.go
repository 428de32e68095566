package modelstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/models"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// NormalizerFactory builds the cleaning pipeline a model was trained with.
type NormalizerFactory func(options cleaning.Options) (ports.Normalizer, error)

// LoadObserver is notified of every load attempt.
type LoadObserver func(name string, err error)

// Loader turns stored artifacts into predictors.
type Loader struct {
	store       *FileStore
	normalizers NormalizerFactory
	logger      ports.Logger
	observe     LoadObserver
}

// NewLoader creates a loader reading from store.
func NewLoader(store *FileStore, normalizers NormalizerFactory, logger ports.Logger) (*Loader, error) {
	if store == nil {
		return nil, errors.New("model store is required")
	}
	if normalizers == nil {
		return nil, errors.New("normalizer factory is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Loader{store: store, normalizers: normalizers, logger: logger}, nil
}

// WithObserver sets a callback invoked after every load.
func (l *Loader) WithObserver(observe LoadObserver) *Loader {
	l.observe = observe
	return l
}

// Store returns the underlying artifact store.
func (l *Loader) Store() *FileStore {
	return l.store
}

// LoadBinary implements ports.ModelLoader.
func (l *Loader) LoadBinary(ctx context.Context, name string) (ports.BinaryPredictor, error) {
	predictor, err := l.loadBinary(ctx, name)
	l.report(name, err)
	return predictor, err
}

// LoadClassifier implements ports.ModelLoader.
func (l *Loader) LoadClassifier(ctx context.Context, name string) (ports.TypeClassifier, error) {
	classifier, err := l.loadClassifier(ctx, name)
	l.report(name, err)
	return classifier, err
}

func (l *Loader) loadBinary(ctx context.Context, name string) (ports.BinaryPredictor, error) {
	artifact, err := l.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !artifact.Kind.IsBinary() {
		return nil, fmt.Errorf("%w: %s is %s, want a binary model", domain.ErrModelKind, name, artifact.Kind)
	}

	switch artifact.Kind {
	case KindRemoteBinary:
		timeout, _ := artifact.Remote.ParsedTimeout()
		return models.NewRemoteBinary(artifact.Remote.URL, timeout)
	default:
		normalizer, err := l.normalizers(artifact.Cleaning)
		if err != nil {
			return nil, fmt.Errorf("model %s cleaning: %w", name, err)
		}
		return models.NewLinearBinary(artifact.Linear.LinearWeights, artifact.Linear.Threshold, normalizer)
	}
}

func (l *Loader) loadClassifier(ctx context.Context, name string) (ports.TypeClassifier, error) {
	artifact, err := l.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !artifact.Kind.IsClassifier() {
		return nil, fmt.Errorf("%w: %s is %s, want a classifier", domain.ErrModelKind, name, artifact.Kind)
	}

	switch artifact.Kind {
	case KindRemoteClassifier:
		timeout, _ := artifact.Remote.ParsedTimeout()
		return models.NewRemoteClassifier(artifact.Remote.URL, timeout)
	default:
		normalizer, err := l.normalizers(artifact.Cleaning)
		if err != nil {
			return nil, fmt.Errorf("model %s cleaning: %w", name, err)
		}
		return models.NewLinearClassifier(artifact.Classes, normalizer)
	}
}

func (l *Loader) report(name string, err error) {
	if err != nil {
		l.logger.Error("Failed to load model", "model", name, "dir", l.store.Dir(), "error", err)
	} else {
		l.logger.Debug("Model loaded", "model", name)
	}
	if l.observe != nil {
		l.observe(name, err)
	}
}
