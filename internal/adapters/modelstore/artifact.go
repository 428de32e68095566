// Package modelstore persists trained model artifacts by name and turns them
// into predictors.
package modelstore

import (
	"fmt"
	"time"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/models"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
)

// Kind identifies the predictor an artifact describes.
type Kind string

const (
	KindLinearBinary     Kind = "linear_binary"
	KindLinearMulticlass Kind = "linear_multiclass"
	KindRemoteBinary     Kind = "remote_binary"
	KindRemoteClassifier Kind = "remote_classifier"
)

// IsBinary reports whether the kind provides the binary gate capability.
func (k Kind) IsBinary() bool {
	return k == KindLinearBinary || k == KindRemoteBinary
}

// IsClassifier reports whether the kind provides the type classification capability.
func (k Kind) IsClassifier() bool {
	return k == KindLinearMulticlass || k == KindRemoteClassifier
}

// LinearSpec holds the parameters of a linear binary model.
type LinearSpec struct {
	models.LinearWeights
	Threshold float64 `json:"threshold,omitempty"`
}

// RemoteSpec points at a model sidecar.
type RemoteSpec struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout,omitempty"`
}

// ParsedTimeout returns the timeout, zero when unset.
func (r RemoteSpec) ParsedTimeout() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(r.Timeout)
}

// Artifact is the persisted form of a trained model.
type Artifact struct {
	Name     string                 `json:"name"`
	Kind     Kind                   `json:"kind"`
	Version  string                 `json:"version,omitempty"`
	Cleaning cleaning.Options       `json:"cleaning"`
	Linear   *LinearSpec            `json:"linear,omitempty"`
	Classes  []models.ClassWeights  `json:"classes,omitempty"`
	Remote   *RemoteSpec            `json:"remote,omitempty"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

// NewArtifact returns an artifact with default cleaning options.
func NewArtifact(name string, kind Kind) *Artifact {
	return &Artifact{
		Name:     name,
		Kind:     kind,
		Cleaning: cleaning.DefaultOptions(),
	}
}

// Validate checks that the artifact carries the payload its kind needs.
func (a *Artifact) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: missing name", domain.ErrInvalidArtifact)
	}
	switch a.Kind {
	case KindLinearBinary:
		if a.Linear == nil {
			return fmt.Errorf("%w: %s needs a linear section", domain.ErrInvalidArtifact, a.Kind)
		}
	case KindLinearMulticlass:
		if len(a.Classes) == 0 {
			return fmt.Errorf("%w: %s needs classes", domain.ErrInvalidArtifact, a.Kind)
		}
	case KindRemoteBinary, KindRemoteClassifier:
		if a.Remote == nil || a.Remote.URL == "" {
			return fmt.Errorf("%w: %s needs a remote url", domain.ErrInvalidArtifact, a.Kind)
		}
		if _, err := a.Remote.ParsedTimeout(); err != nil {
			return fmt.Errorf("%w: remote timeout: %w", domain.ErrInvalidArtifact, err)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidArtifact, a.Kind)
	}
	if err := a.Cleaning.Validate(); err != nil {
		return fmt.Errorf("%w: cleaning: %w", domain.ErrInvalidArtifact, err)
	}
	return nil
}
