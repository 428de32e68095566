// Package normalizer assembles cleaning pipelines from the default language
// resources and shares them between callers.
package normalizer

import (
	"errors"
	"strings"
	"sync"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/linguistic"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// Resources returns the default tokenizer, lemmatizer and the stopword set
// of language. An empty language selects English.
func Resources(language string) (cleaning.Resources, error) {
	if strings.TrimSpace(language) == "" {
		language = linguistic.English
	}
	stopwords, err := linguistic.Stopwords(language)
	if err != nil {
		return cleaning.Resources{}, err
	}
	return cleaning.Resources{
		Tokenizer:  linguistic.NewTreebankTokenizer(),
		Stopwords:  stopwords,
		Lemmatizer: linguistic.EnglishLemmatizer(),
	}, nil
}

// NewPipeline builds a cleaning pipeline backed by the default resources.
// The language is checked even when stopword removal is off, and token-wise
// lemmatization loads the lemma dictionary up front.
func NewPipeline(options cleaning.Options, logger ports.Logger) (*cleaning.Pipeline, error) {
	resources, err := Resources(options.Language)
	if err != nil {
		return nil, err
	}
	if options.Lemmatize && options.LemmatizeMode == cleaning.LemmatizeTokens {
		if err := linguistic.EnglishLemmatizer().Load(); err != nil {
			return nil, err
		}
	}
	return cleaning.NewPipeline(options, resources, logger)
}

// Registry hands out one shared pipeline per distinct set of options.
// It is safe for concurrent use.
type Registry struct {
	logger ports.Logger

	mu        sync.Mutex
	pipelines map[cleaning.Options]*cleaning.Pipeline
}

// NewRegistry creates an empty registry.
func NewRegistry(logger ports.Logger) (*Registry, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Registry{
		logger:    logger,
		pipelines: make(map[cleaning.Options]*cleaning.Pipeline),
	}, nil
}

// Pipeline returns the pipeline for options, building it on first use.
// Options are validated before the lookup and keyed in canonical form, so
// only valid and distinct configurations are cached.
func (r *Registry) Pipeline(options cleaning.Options) (*cleaning.Pipeline, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if _, err := Resources(options.Language); err != nil {
		return nil, err
	}
	key := options.Canonical()

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pipelines[key]; ok {
		return p, nil
	}
	p, err := NewPipeline(key, r.logger)
	if err != nil {
		return nil, err
	}
	r.pipelines[key] = p
	return p, nil
}

// Normalizer adapts Pipeline to the model loader's factory signature.
func (r *Registry) Normalizer(options cleaning.Options) (ports.Normalizer, error) {
	p, err := r.Pipeline(options)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Len returns the number of distinct pipelines built so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelines)
}
