// Package confidence interprets the extraction service's loosely shaped
// output: any node may be a plain value or a {value, confidence} object,
// nested to arbitrary depth inside objects and arrays.
package confidence

import (
	"marklens/internal/domain"
)

// Banding thresholds for qualitative confidence labels.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.6
)

// Unwrap resolves a decoded JSON node into its effective value and
// confidence. A JSON object owning a "value" key is confidence-wrapped; its
// confidence, when numeric, is clamped to [0,1]. Anything else is a raw
// value with no confidence. Unwrap never fails; nil input yields a zero
// Field that presenters render as "not available".
func Unwrap(x any) domain.Field {
	m, ok := x.(map[string]any)
	if !ok {
		return domain.Field{Value: x}
	}
	value, wrapped := m["value"]
	if !wrapped {
		return domain.Field{Value: x}
	}

	f := domain.Field{Value: value}
	if c, ok := toFloat(m["confidence"]); ok {
		c = clamp(c)
		f.Confidence = &c
	}
	return f
}

// Mean walks a result tree and returns the arithmetic mean of every
// confidence score found at a wrapped field, or 0 if none exist. The walk is
// schema-agnostic: objects and arrays are descended recursively, wrapped
// fields contribute one sample each and are not descended further, and
// scalar leaves contribute nothing.
func Mean(node any) float64 {
	samples := collect(node, nil)
	return mean(samples)
}

// SubjectMean returns the mean of the confidences present among the four
// subject fields. Fields without a confidence contribute to neither
// numerator nor denominator; 0 if none are wrapped.
func SubjectMean(s domain.Subject) float64 {
	var samples []float64
	for _, v := range []any{s.Subject, s.ObtainedMarks, s.MaxMarks, s.Grade} {
		if f := Unwrap(v); f.HasConfidence() {
			samples = append(samples, *f.Confidence)
		}
	}
	return mean(samples)
}

// BandFor maps a score to its qualitative label: High at or above 0.8,
// Medium at or above 0.6, Low below.
func BandFor(score float64) domain.ConfidenceBand {
	switch {
	case score >= HighThreshold:
		return domain.BandHigh
	case score >= MediumThreshold:
		return domain.BandMedium
	default:
		return domain.BandLow
	}
}

func collect(node any, samples []float64) []float64 {
	switch v := node.(type) {
	case map[string]any:
		if _, wrapped := v["value"]; wrapped {
			if c, ok := toFloat(v["confidence"]); ok {
				samples = append(samples, clamp(c))
			}
			return samples
		}
		for _, member := range v {
			samples = collect(member, samples)
		}
	case []any:
		for _, member := range v {
			samples = collect(member, samples)
		}
	}
	return samples
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func clamp(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func toFloat(x any) (float64, bool) {
	switch v := x.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
