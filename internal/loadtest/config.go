// Package loadtest drives a running TrueRate server with generated reviews
// and feedback, then checks the responses for consistency.
package loadtest

import (
	"time"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/internal/domain/types"
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumReviews     int           // Number of reviews to generate
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	FeedbackRatio  float64       // Share of analyzed reviews that get a vote
	DuplicateRatio float64       // Share of votes sent twice with the same feedback id
	OutputFile     string        // JSONL file for generated reviews; empty skips it
	Verbose        bool          // Log every failed request
}

// Sample is a generated review and the class its template was written to
// resemble.
type Sample struct {
	Review service.Review
	Kind   types.Classification
}

// Outcome is the server's answer for one sample.
type Outcome struct {
	Sample   Sample
	Analysis service.Analysis
	Err      error
}

// Stats holds run statistics.
type Stats struct {
	ReviewsGenerated   int
	ReviewsAnalyzed    int
	ReviewsFailed      int
	FeedbackSubmitted  int
	FeedbackAccepted   int
	FeedbackDuplicate  int
	FeedbackLimited    int
	FeedbackFailed     int
	Matches            map[types.Classification]int
	Totals             map[types.Classification]int
	InvariantFailures  int
	LearnerUpdatesSeen int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// HTTP status code constants.
const (
	statusOK              = 200
	statusTooManyRequests = 429
)

// Run configuration constants.
const (
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
	directoryPermission     = 0o750
)
