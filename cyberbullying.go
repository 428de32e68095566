// Package cyberbullying normalizes tweets and classifies them as
// cyberbullying with a two-stage model.
//
// The package-level helpers use default settings and models installed in
// the default model directory. Use pkg/cleaner and pkg/predictor for
// configurable instances.
//
//	cleaned := cyberbullying.CleanText("RT @user1 I HATE you!!! 123") // "user hate"
//	result, err := cyberbullying.Predict(ctx, "you are an idiot")
package cyberbullying

import (
	"context"
	"sync"

	"github.com/baditaflorin/go_cyberbullying/pkg/cleaner"
	"github.com/baditaflorin/go_cyberbullying/pkg/predictor"
)

var (
	cleanerOnce    sync.Once
	defaultCleaner *cleaner.Cleaner

	predictorOnce    sync.Once
	defaultPredictor *predictor.Predictor
	predictorErr     error
)

func getCleaner() *cleaner.Cleaner {
	cleanerOnce.Do(func() {
		logger, err := createDefaultLogger()
		if err != nil {
			panic(err)
		}
		defaultCleaner, err = cleaner.New(cleaner.WithLogger(logger))
		if err != nil {
			panic(err)
		}
	})
	return defaultCleaner
}

func getPredictor() (*predictor.Predictor, error) {
	predictorOnce.Do(func() {
		logger, err := createDefaultLogger()
		if err != nil {
			predictorErr = err
			return
		}
		defaultPredictor, predictorErr = predictor.New(predictor.WithLogger(logger))
	})
	return defaultPredictor, predictorErr
}

// CleanText normalizes a single value with every cleaning stage enabled.
func CleanText(v any) string {
	return getCleaner().Clean(v)
}

// CleanDF cleans the text column of raw (a string, a slice or a
// *cleaner.Table) and replaces empty or missing cells with "a".
func CleanDF(raw any) (*cleaner.Table, error) {
	return getCleaner().CleanTable(raw)
}

// Predict classifies phrase with the models of the default model directory.
func Predict(ctx context.Context, phrase string) (*predictor.Result, error) {
	p, err := getPredictor()
	if err != nil {
		return nil, err
	}
	return p.Predict(ctx, phrase)
}
