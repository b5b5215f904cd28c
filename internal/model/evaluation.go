// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluation is the backend's self-assessment of one answer.
// All scores are normalized to [0,1].
type Evaluation struct {
	SpecAccuracy       float64            `json:"spec_accuracy"`
	PricingAccuracy    float64            `json:"pricing_accuracy"`
	HallucinationCheck float64            `json:"hallucination_check"`
	OverallScore       float64            `json:"overall_score"`
	Details            *EvaluationDetails `json:"details,omitempty"`
}

// EvaluationDetails carries the evaluators' free-text comments.
type EvaluationDetails struct {
	SpecComment          string `json:"spec_comment,omitempty"`
	PricingComment       string `json:"pricing_comment,omitempty"`
	HallucinationComment string `json:"hallucination_comment,omitempty"`
	Error                string `json:"error,omitempty"`
}

// Normalize returns a copy with every score clamped to [0,1].
func (e Evaluation) Normalize() Evaluation {
	e.SpecAccuracy = clampScore(e.SpecAccuracy)
	e.PricingAccuracy = clampScore(e.PricingAccuracy)
	e.HallucinationCheck = clampScore(e.HallucinationCheck)
	e.OverallScore = clampScore(e.OverallScore)
	return e
}

// =============================================================================
// METRICS
// =============================================================================

// Metrics is an aggregate quality snapshot. It is replaced wholesale on every
// poll; snapshots are never merged.
type Metrics struct {
	TotalQueries          int     `json:"total_queries"`
	AvgSpecAccuracy       float64 `json:"avg_spec_accuracy"`
	AvgPricingAccuracy    float64 `json:"avg_pricing_accuracy"`
	AvgHallucinationCheck float64 `json:"avg_hallucination_check"`
	AvgOverallScore       float64 `json:"avg_overall_score"`

	// RecentMetrics holds the backend's last few per-query scores, newest last.
	RecentMetrics []ScoreSample `json:"recent_metrics,omitempty"`
}

// ScoreSample is one per-query entry of Metrics.RecentMetrics.
type ScoreSample struct {
	Timestamp          string  `json:"timestamp"`
	SpecAccuracy       float64 `json:"spec_accuracy"`
	PricingAccuracy    float64 `json:"pricing_accuracy"`
	HallucinationCheck float64 `json:"hallucination_check"`
	OverallScore       float64 `json:"overall_score"`
}

// Time parses the sample timestamp. The backend emits ISO-8601 without a zone.
func (s ScoreSample) Time() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clampScore(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
