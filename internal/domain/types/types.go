// Package types contains common types used across the application
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidThresholds is returned when classification thresholds are out of order or range.
var ErrInvalidThresholds = errors.New("invalid classification thresholds")

// ErrUnknownClassification is returned when a label does not name a classification.
var ErrUnknownClassification = errors.New("unknown classification")

// Classification is the credibility tier of a review.
type Classification string

const (
	ClassBot       Classification = "bot"
	ClassLowEffort Classification = "low_effort"
	ClassHuman     Classification = "human"
)

// AllClassifications lists every label in a fixed order.
var AllClassifications = [...]Classification{ClassBot, ClassLowEffort, ClassHuman}

func (c Classification) String() string { return string(c) }

// ParseClassification validates a label.
func ParseClassification(s string) (Classification, error) {
	switch c := Classification(strings.ToLower(strings.TrimSpace(s))); c {
	case ClassBot, ClassLowEffort, ClassHuman:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownClassification, s)
	}
}

// Thresholds maps a credibility score to a Classification.
// A single value is shared by the credibility scorer and the adaptive learner.
type Thresholds struct {
	Bot       float64 `json:"bot"`
	LowEffort float64 `json:"low_effort"`
}

// DefaultThresholds are the production cut-offs.
var DefaultThresholds = Thresholds{Bot: 0.3, LowEffort: 0.6}

// Validate reports whether the thresholds are usable.
func (t Thresholds) Validate() error {
	if t.Bot < 0 || t.LowEffort > 1 || t.Bot >= t.LowEffort {
		return fmt.Errorf("%w: bot=%v low_effort=%v", ErrInvalidThresholds, t.Bot, t.LowEffort)
	}
	return nil
}

// Classify returns bot below Bot, low_effort below LowEffort, human otherwise.
func (t Thresholds) Classify(score float64) Classification {
	switch {
	case score < t.Bot:
		return ClassBot
	case score < t.LowEffort:
		return ClassLowEffort
	default:
		return ClassHuman
	}
}
