package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

type stubBinary struct {
	result *domain.PredictionResult
	err    error
	calls  int
	seen   []string
}

func (s *stubBinary) PredictPhrase(_ context.Context, text string) (*domain.PredictionResult, error) {
	s.calls++
	s.seen = append(s.seen, text)
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	return &r, nil
}

type stubClassifier struct {
	labels []string
	err    error
	calls  int
}

func (s *stubClassifier) Predict(_ context.Context, _ string) ([]string, error) {
	s.calls++
	return s.labels, s.err
}

type stubLoader struct {
	binary        ports.BinaryPredictor
	classifier    ports.TypeClassifier
	binaryErr     error
	classifierErr error
	requested     []string
}

func (s *stubLoader) LoadBinary(_ context.Context, name string) (ports.BinaryPredictor, error) {
	s.requested = append(s.requested, name)
	return s.binary, s.binaryErr
}

func (s *stubLoader) LoadClassifier(_ context.Context, name string) (ports.TypeClassifier, error) {
	s.requested = append(s.requested, name)
	return s.classifier, s.classifierErr
}

func newDispatcher(t *testing.T, loader ports.ModelLoader) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DefaultConfig(), loader, logger.NewNopLogger())
	require.NoError(t, err)
	return d
}

func TestPredictShortCircuitsOnNegative(t *testing.T) {
	binary := &stubBinary{result: &domain.PredictionResult{Prediction: 0}}
	classifier := &stubClassifier{labels: []string{"age"}}
	d := newDispatcher(t, &stubLoader{binary: binary, classifier: classifier})

	result, err := d.Predict(context.Background(), "have a nice day")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Prediction)
	assert.Nil(t, result.Type)
	assert.Equal(t, 1, binary.calls)
	assert.Equal(t, 0, classifier.calls, "type classifier must not run for negative phrases")
}

func TestPredictRelabelsOther(t *testing.T) {
	binary := &stubBinary{result: &domain.PredictionResult{Prediction: 1}}
	classifier := &stubClassifier{labels: []string{"other", "age"}}
	d := newDispatcher(t, &stubLoader{binary: binary, classifier: classifier})

	result, err := d.Predict(context.Background(), "you are worthless")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Prediction)
	require.NotNil(t, result.Type)
	assert.Equal(t, domain.TypeAggression, *result.Type)
	assert.Equal(t, 1, classifier.calls)
}

func TestPredictUppercasesLabel(t *testing.T) {
	binary := &stubBinary{result: &domain.PredictionResult{
		Prediction: 1,
		Extra:      map[string]interface{}{"probability": 0.93},
	}}
	classifier := &stubClassifier{labels: []string{"religion"}}
	d := newDispatcher(t, &stubLoader{binary: binary, classifier: classifier})

	result, err := d.Predict(context.Background(), "raw Phrase!")

	require.NoError(t, err)
	assert.Equal(t, "RELIGION", result.TypeOrEmpty())
	assert.Equal(t, 0.93, result.Extra["probability"], "stage one fields are preserved")
	assert.Equal(t, []string{"raw Phrase!"}, binary.seen, "predictors receive the raw phrase")
}

func TestPredictLoadsNamedModels(t *testing.T) {
	loader := &stubLoader{
		binary:     &stubBinary{result: &domain.PredictionResult{Prediction: 0}},
		classifier: &stubClassifier{},
	}
	d, err := NewDispatcher(Config{BinaryModel: "gate", ClassifierModel: "types"}, loader, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = d.Predict(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []string{"gate", "types"}, loader.requested)
}

func TestPredictErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		loader  *stubLoader
		wantErr error
	}{
		{
			name:    "binary model missing",
			loader:  &stubLoader{binaryErr: domain.ErrModelNotFound},
			wantErr: domain.ErrModelNotFound,
		},
		{
			name: "classifier model missing fails even for negative phrases",
			loader: &stubLoader{
				binary:        &stubBinary{result: &domain.PredictionResult{Prediction: 0}},
				classifierErr: domain.ErrModelNotFound,
			},
			wantErr: domain.ErrModelNotFound,
		},
		{
			name: "binary predictor fails",
			loader: &stubLoader{
				binary:     &stubBinary{err: boom},
				classifier: &stubClassifier{},
			},
			wantErr: boom,
		},
		{
			name: "prediction out of range",
			loader: &stubLoader{
				binary:     &stubBinary{result: &domain.PredictionResult{Prediction: 2}},
				classifier: &stubClassifier{},
			},
			wantErr: domain.ErrInvalidPrediction,
		},
		{
			name: "empty label sequence",
			loader: &stubLoader{
				binary:     &stubBinary{result: &domain.PredictionResult{Prediction: 1}},
				classifier: &stubClassifier{labels: []string{}},
			},
			wantErr: domain.ErrEmptyClassification,
		},
		{
			name: "classifier fails",
			loader: &stubLoader{
				binary:     &stubBinary{result: &domain.PredictionResult{Prediction: 1}},
				classifier: &stubClassifier{err: boom},
			},
			wantErr: boom,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newDispatcher(t, tc.loader)
			result, err := d.Predict(context.Background(), "text")
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRelabelType(t *testing.T) {
	assert.Equal(t, domain.TypeAggression, RelabelType("Other"))
	assert.Equal(t, "GENDER", RelabelType("gender"))
	assert.Equal(t, "OTHERS", RelabelType("others"))
}

func TestNewDispatcherValidation(t *testing.T) {
	_, err := NewDispatcher(Config{BinaryModel: "only"}, &stubLoader{}, logger.NewNopLogger())
	assert.Error(t, err)

	_, err = NewDispatcher(DefaultConfig(), nil, logger.NewNopLogger())
	assert.Error(t, err)
}
