// Package models provides the predictors behind the binary and type
// classification contracts.
package models

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// DefaultThreshold is the probability at or above which a phrase is positive.
const DefaultThreshold = 0.5

// LinearWeights is a bag-of-words linear scorer.
type LinearWeights struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// score sums the bias and the weight of every token.
func (w LinearWeights) score(tokens []string) float64 {
	s := w.Bias
	for _, tok := range tokens {
		s += w.Weights[tok]
	}
	return s
}

// LinearBinary scores a phrase with logistic regression over its cleaned tokens.
type LinearBinary struct {
	weights    LinearWeights
	threshold  float64
	normalizer ports.Normalizer
}

// NewLinearBinary creates a binary predictor. A zero threshold selects DefaultThreshold.
func NewLinearBinary(weights LinearWeights, threshold float64, normalizer ports.Normalizer) (*LinearBinary, error) {
	if normalizer == nil {
		return nil, errors.New("linear binary model needs a normalizer")
	}
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.New("threshold must be between 0 and 1")
	}
	return &LinearBinary{weights: weights, threshold: threshold, normalizer: normalizer}, nil
}

// PredictPhrase cleans text, scores it and reports the prediction together
// with the probability and the cleaned text.
func (m *LinearBinary) PredictPhrase(ctx context.Context, text string) (*domain.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := m.normalizer.Normalize(text)
	probability := sigmoid(m.weights.score(strings.Fields(cleaned)))

	prediction := 0
	if probability >= m.threshold {
		prediction = 1
	}

	return &domain.PredictionResult{
		Prediction: prediction,
		Extra: map[string]interface{}{
			"probability": math.Round(probability*1000) / 1000,
			"clean_text":  cleaned,
		},
	}, nil
}

// ClassWeights are the weights of one label of a multi-class model.
type ClassWeights struct {
	Label string `json:"label"`
	LinearWeights
}

// LinearClassifier ranks bullying types by their linear score.
type LinearClassifier struct {
	classes    []ClassWeights
	normalizer ports.Normalizer
}

// NewLinearClassifier creates a type classifier.
func NewLinearClassifier(classes []ClassWeights, normalizer ports.Normalizer) (*LinearClassifier, error) {
	if normalizer == nil {
		return nil, errors.New("linear classifier needs a normalizer")
	}
	if len(classes) == 0 {
		return nil, errors.New("linear classifier needs at least one class")
	}
	return &LinearClassifier{classes: classes, normalizer: normalizer}, nil
}

// Predict returns every label ordered from most to least likely. Ties keep
// the declaration order.
func (m *LinearClassifier) Predict(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := strings.Fields(m.normalizer.Normalize(text))

	type ranked struct {
		label string
		score float64
	}
	scores := make([]ranked, len(m.classes))
	for i, c := range m.classes {
		scores[i] = ranked{label: c.Label, score: c.score(tokens)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	labels := make([]string, len(scores))
	for i, s := range scores {
		labels[i] = s.label
	}
	return labels, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
