// Package warmup exercises pipelines and predictors before traffic arrives so
// lazily built resources and buffer pools are ready.
package warmup

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// Config defines configuration for warming up the system.
type Config struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of sample tweets cycled through
	SampleTweets int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultConfig returns the default warmup configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency:  runtime.NumCPU(),
		Iterations:   200,
		SampleTweets: 32,
		Duration:     5 * time.Second,
		ForceGC:      true,
	}
}

// PredictFunc runs a full prediction.
type PredictFunc func(ctx context.Context, text string) error

// Report summarizes a warmup run.
type Report struct {
	Normalizations int64
	Predictions    int64
	Failures       int64
	Duration       time.Duration
}

// Manager handles system warmup operations.
type Manager struct {
	logger      ports.Logger
	normalizers []ports.Normalizer
	predictors  []PredictFunc
	config      Config
}

// NewManager creates a new warmup manager.
func NewManager(logger ports.Logger, config Config) (*Manager, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.Iterations <= 0 {
		config.Iterations = 1
	}
	if config.SampleTweets <= 0 {
		config.SampleTweets = len(sampleTweets)
	}
	return &Manager{logger: logger, config: config}, nil
}

// RegisterNormalizer adds a normalizer to be warmed up.
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// RegisterPredictor adds a prediction path to be warmed up.
func (wm *Manager) RegisterPredictor(predict PredictFunc) {
	wm.predictors = append(wm.predictors, predict)
}

// WarmUp runs the warmup process for all registered components.
func (wm *Manager) WarmUp(ctx context.Context) Report {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.normalizers)+len(wm.predictors),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	samples := GenerateSampleTweets(wm.config.SampleTweets)
	var report Report

	if len(wm.normalizers) > 0 {
		wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))
		report.Normalizations = wm.run(warmupCtx, func(text string) error {
			for _, normalizer := range wm.normalizers {
				_ = normalizer.Normalize(text)
			}
			return nil
		}, samples, &report.Failures)
	}

	if len(wm.predictors) > 0 {
		wm.logger.Debug("Warming up predictors", "count", len(wm.predictors))
		report.Predictions = wm.run(warmupCtx, func(text string) error {
			var firstErr error
			for _, predict := range wm.predictors {
				if err := predict(warmupCtx, text); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		}, samples, &report.Failures)
	}

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	report.Duration = time.Since(startTime)
	wm.logger.Info("System warmup completed",
		"duration", report.Duration,
		"normalizations", report.Normalizations,
		"predictions", report.Predictions,
		"failures", report.Failures,
	)
	return report
}

// run calls fn for the samples from Concurrency goroutines and returns the
// number of completed calls.
func (wm *Manager) run(ctx context.Context, fn func(string) error, samples []string, failures *int64) int64 {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		calls int64
	)
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func(routineID int) {
			defer wg.Done()

			var done, failed int64
			for j := 0; j < wm.config.Iterations; j++ {
				if ctx.Err() != nil {
					break
				}
				if err := fn(samples[(routineID+j)%len(samples)]); err != nil {
					failed++
				}
				done++
			}

			mu.Lock()
			calls += done
			*failures += failed
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if *failures > 0 {
		wm.logger.Warn("Warmup calls failed", "failures", *failures)
	}
	return calls
}

// sampleTweets mix mentions, retweets, digits and repeated words so every
// cleaning stage does work.
var sampleTweets = []string{
	"RT @user1 I HATE you!!! 123",
	"@alice hello world",
	"you are so so stupid lol",
	"Go back to school kid, nobody likes you",
	"what a lovely day at the beach :)",
	"RT @news Breaking: 42 people attend the game",
	"stop stop please please please",
	"You IDIOT!!! #loser",
	"i don't think that's what she meant",
	"the children were playing with the dogs",
}

// GenerateSampleTweets returns n sample tweets, cycling through a fixed corpus.
func GenerateSampleTweets(n int) []string {
	if n <= 0 {
		n = len(sampleTweets)
	}
	out := make([]string, n)
	for i := range out {
		tweet := sampleTweets[i%len(sampleTweets)]
		if round := i / len(sampleTweets); round > 0 {
			tweet += strings.Repeat(" again", round)
		}
		out[i] = tweet
	}
	return out
}
