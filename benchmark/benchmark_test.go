package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/normalizer"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/pkg/cleaner"
	"github.com/baditaflorin/go_cyberbullying/pkg/predictor"
)

// generateTweet creates a tweet-like text of roughly the specified size
func generateTweet(size int) string {
	if size <= 0 {
		return ""
	}

	sample := "RT @someone you are SUCH a loser loser, go back to school!!! 100% #sad "
	var sb strings.Builder
	sb.Grow(size + len(sample))
	for sb.Len() < size {
		sb.WriteString(sample)
	}
	return sb.String()[:size]
}

// BenchmarkPipeline compares stage configurations over growing inputs.
func BenchmarkPipeline(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"140B", 140},
		{"1KB", 1024},
		{"10KB", 10 * 1024},
	}

	tokenMode := cleaning.DefaultOptions()
	tokenMode.LemmatizeMode = cleaning.LemmatizeTokens
	noStopwords := cleaning.DefaultOptions()
	noStopwords.RemoveStopwords = false

	configs := []struct {
		name    string
		options cleaning.Options
	}{
		{"Default", cleaning.DefaultOptions()},
		{"TokenLemmas", tokenMode},
		{"NoStopwords", noStopwords},
		{"MentionsOnly", cleaning.Options{}},
	}

	for _, cfg := range configs {
		pipeline, err := normalizer.NewPipeline(cfg.options, logger.NewNopLogger())
		if err != nil {
			b.Fatal(err)
		}
		for _, size := range sizes {
			input := generateTweet(size.size)
			b.Run(cfg.name+"-"+size.name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(input)))
				for i := 0; i < b.N; i++ {
					_ = pipeline.Normalize(input)
				}
			})
		}
	}
}

// BenchmarkCleanTable measures batch cleaning with sanitization.
func BenchmarkCleanTable(b *testing.B) {
	c, err := cleaner.New(cleaner.WithQuietLogger())
	if err != nil {
		b.Fatal(err)
	}

	for _, rows := range []int{10, 1000} {
		values := make([]any, rows)
		for i := range values {
			if i%10 == 0 {
				values[i] = nil
				continue
			}
			values[i] = generateTweet(140)
		}
		table := cleaner.NewTextTable(values)

		b.Run(fmt.Sprintf("Rows-%d", rows), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := c.CleanTable(table); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPredict compares reloading artifacts per call with the model cache.
func BenchmarkPredict(b *testing.B) {
	dir := b.TempDir()
	installer, err := predictor.New(predictor.WithModelDir(dir), predictor.WithQuietLogger())
	if err != nil {
		b.Fatal(err)
	}

	gate := predictor.NewArtifact("model_prediction", predictor.KindLinearBinary)
	gate.Linear = &predictor.LinearSpec{LinearWeights: predictor.LinearWeights{
		Bias:    -1,
		Weights: map[string]float64{"loser": 3, "school": 2},
	}}
	classifier := predictor.NewArtifact("model_classifier", predictor.KindLinearMulticlass)
	classifier.Classes = []predictor.ClassWeights{
		{Label: "other", LinearWeights: predictor.LinearWeights{Bias: 0.5}},
		{Label: "age", LinearWeights: predictor.LinearWeights{Weights: map[string]float64{"school": 2}}},
	}
	for _, artifact := range []*predictor.Artifact{gate, classifier} {
		if err := installer.SaveModel(context.Background(), artifact); err != nil {
			b.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tweet := generateTweet(140)

	b.Run("Reload", func(b *testing.B) {
		p, _ := predictor.New(predictor.WithModelDir(dir), predictor.WithQuietLogger())
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := p.Predict(ctx, tweet); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Cached", func(b *testing.B) {
		p, _ := predictor.New(
			predictor.WithModelDir(dir),
			predictor.WithModelCache(2, time.Hour),
			predictor.WithQuietLogger(),
		)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := p.Predict(ctx, tweet); err != nil {
				b.Fatal(err)
			}
		}
	})
}
