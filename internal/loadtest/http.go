package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "truerate-loadtest")
	return c.client.Do(req)
}

// getJSON decodes a 200 response from url into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	return decodeResponse(resp, v)
}

func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != statusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.Unmarshal(body, v)
}

// analyzeSamples posts every sample to /analyze with a worker pool.
func analyzeSamples(ctx context.Context, cfg *Config, samples []Sample, stats *Stats) []Outcome {
	log := logger.Get()
	log.Info(ctx, "submitting reviews", logger.Int("reviews", len(samples)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/analyze"
	outcomes := make([]Outcome, len(samples))

	var failed int64
	jobs := make(chan int, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out := Outcome{Sample: samples[i]}
				resp, err := client.Post(ctx, url, samples[i].Review)
				if err == nil {
					err = decodeResponse(resp, &out.Analysis)
				}
				if err != nil {
					out.Err = err
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "analyze failed", logger.Int("index", i), logger.Error(err))
					}
				}
				outcomes[i] = out
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range samples {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	stats.ReviewsFailed = int(atomic.LoadInt64(&failed))
	stats.ReviewsAnalyzed = len(samples) - stats.ReviewsFailed
	return outcomes
}

// voteFor agrees when the server's class matches the template's class.
func voteFor(o Outcome) service.Feedback {
	vote := -1
	if o.Analysis.Credibility.Classification == o.Sample.Kind {
		vote = 1
	}
	score := o.Analysis.Credibility.Score
	return service.Feedback{
		FeedbackID:     uuid.NewString(),
		Text:           o.Sample.Review.Text,
		Stars:          o.Sample.Review.Stars,
		PredictedClass: string(o.Analysis.Credibility.Classification),
		PredictedScore: &score,
		UserVote:       vote,
	}
}

// submitFeedback votes on a share of the analyzed outcomes. A share of the
// votes is sent twice to exercise duplicate detection.
func submitFeedback(ctx context.Context, cfg *Config, outcomes []Outcome, stats *Stats) {
	var votes []service.Feedback
	for _, o := range outcomes {
		if o.Err != nil || randomFloat() >= cfg.FeedbackRatio {
			continue
		}
		fb := voteFor(o)
		votes = append(votes, fb)
		if randomFloat() < cfg.DuplicateRatio {
			votes = append(votes, fb)
		}
	}
	logger.Get().Info(ctx, "submitting feedback", logger.Int("votes", len(votes)))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/feedback"

	var accepted, duplicate, limited, failed int64
	jobs := make(chan service.Feedback, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fb := range jobs {
				switch submitOne(ctx, client, url, fb) {
				case "accepted":
					atomic.AddInt64(&accepted, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				case "limited":
					atomic.AddInt64(&limited, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}
	// A repeat may race its original; whichever lands second is the duplicate.
	go func() {
		defer close(jobs)
		for _, fb := range votes {
			select {
			case <-ctx.Done():
				return
			case jobs <- fb:
			}
		}
	}()
	wg.Wait()

	stats.FeedbackSubmitted = len(votes)
	stats.FeedbackAccepted = int(accepted)
	stats.FeedbackDuplicate = int(duplicate)
	stats.FeedbackLimited = int(limited)
	stats.FeedbackFailed = int(failed)
}

func submitOne(ctx context.Context, client *HTTPClient, url string, fb service.Feedback) string {
	resp, err := client.Post(ctx, url, fb)
	if err != nil {
		return "failed"
	}
	if resp.StatusCode == statusTooManyRequests {
		_ = resp.Body.Close()
		return "limited"
	}
	var ack service.FeedbackAck
	if err := decodeResponse(resp, &ack); err != nil {
		return "failed"
	}
	if ack.Duplicate {
		return "duplicate"
	}
	return "accepted"
}
