package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Field names of a serialized prediction.
const (
	FieldPrediction = "prediction"
	FieldType       = "type"
)

// Bullying type labels produced by the dispatcher.
const (
	TypeOther      = "OTHER"
	TypeAggression = "AGGRESSION"
)

// PredictionResult holds the outcome of a phrase prediction.
// It serializes as a flat JSON object: the extra fields reported by the binary
// predictor plus "prediction" and "type" (null when absent).
type PredictionResult struct {
	// Prediction is 1 when the phrase is cyberbullying, 0 otherwise.
	Prediction int
	// Type is the bullying subtype, nil when the phrase is not cyberbullying.
	Type *string
	// Extra holds any additional fields reported by the binary predictor.
	Extra map[string]interface{}
}

// IsBullying reports whether the binary gate fired.
func (r *PredictionResult) IsBullying() bool {
	return r.Prediction == 1
}

// TypeOrEmpty returns the subtype, or an empty string when it is absent.
func (r *PredictionResult) TypeOrEmpty() string {
	if r.Type == nil {
		return ""
	}
	return *r.Type
}

// SetType assigns the subtype label.
func (r *PredictionResult) SetType(label string) {
	r.Type = &label
}

// MarshalJSON flattens Extra alongside the prediction and type fields.
func (r PredictionResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Extra)+2)
	for k, v := range r.Extra {
		out[k] = v
	}
	out[FieldPrediction] = r.Prediction
	if r.Type != nil {
		out[FieldType] = *r.Type
	} else {
		out[FieldType] = nil
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat prediction object. Unknown fields land in Extra.
func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pred, ok := raw[FieldPrediction]
	if !ok {
		return fmt.Errorf("%w: missing %q field", ErrInvalidPrediction, FieldPrediction)
	}
	num, ok := pred.(float64)
	if !ok || num != math.Trunc(num) {
		return fmt.Errorf("%w: %q is not an integer: %v", ErrInvalidPrediction, FieldPrediction, pred)
	}
	r.Prediction = int(num)
	delete(raw, FieldPrediction)

	r.Type = nil
	if t, ok := raw[FieldType]; ok {
		if s, isString := t.(string); isString {
			r.SetType(s)
		}
		delete(raw, FieldType)
	}

	r.Extra = nil
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}
