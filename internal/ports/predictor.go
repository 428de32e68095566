package ports

import (
	"context"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
)

// BinaryPredictor decides whether a phrase is cyberbullying.
// The returned result carries at least the prediction field (0 or 1).
type BinaryPredictor interface {
	PredictPhrase(ctx context.Context, text string) (*domain.PredictionResult, error)
}

// TypeClassifier labels a phrase with an ordered sequence of bullying types,
// most likely first.
type TypeClassifier interface {
	Predict(ctx context.Context, text string) ([]string, error)
}

// ModelLoader resolves trained models by name.
type ModelLoader interface {
	LoadBinary(ctx context.Context, name string) (BinaryPredictor, error)
	LoadClassifier(ctx context.Context, name string) (TypeClassifier, error)
}
