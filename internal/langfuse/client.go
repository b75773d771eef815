// Package langfuse is a small client for the Langfuse ingestion API, used to
// attach user feedback scores to insight traces. Without credentials the
// client is a no-op.
package langfuse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	requestTimeout = 5 * time.Second
	ingestionPath  = "/api/public/ingestion"

	// ScoreUserRating is the score name used for 1-5 insight ratings.
	ScoreUserRating = "user_rating"
)

// ErrIngestion is returned when Langfuse rejects a score.
var ErrIngestion = errors.New("langfuse ingestion failed")

// Client is the interface for Langfuse operations.
type Client interface {
	// IsEnabled returns true if Langfuse is configured and enabled.
	IsEnabled() bool
	// CreateScore attaches a numeric score to an existing trace.
	CreateScore(ctx context.Context, in ScoreInput) error
}

// ScoreInput contains the data for creating a score.
type ScoreInput struct {
	TraceID string // OTel trace ID returned with the insight
	Name    string
	Value   float64
	Comment string
}

// Config holds Langfuse client configuration.
type Config struct {
	BaseURL     string
	PublicKey   string
	SecretKey   string
	Environment string
	// HTTPClient overrides the default client with a 5s timeout.
	HTTPClient *http.Client
}

type client struct {
	endpoint    string
	publicKey   string
	secretKey   string
	environment string
	httpClient  *http.Client
	now         func() time.Time
}

type disabled struct{}

func (disabled) IsEnabled() bool                               { return false }
func (disabled) CreateScore(context.Context, ScoreInput) error { return nil }

// NewClient creates a new Langfuse client. If the base URL or either key is
// empty the returned client does nothing.
func NewClient(cfg Config) Client {
	if cfg.BaseURL == "" || cfg.PublicKey == "" || cfg.SecretKey == "" {
		log.Debug().Msg("langfuse feedback disabled")
		return disabled{}
	}
	log.Info().Str("base_url", cfg.BaseURL).Str("env", cfg.Environment).Msg("langfuse feedback enabled")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &client{
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + ingestionPath,
		publicKey:   cfg.PublicKey,
		secretKey:   cfg.SecretKey,
		environment: cfg.Environment,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

func (c *client) IsEnabled() bool {
	return true
}

func (c *client) CreateScore(ctx context.Context, in ScoreInput) error {
	if in.TraceID == "" {
		return fmt.Errorf("%w: trace id is required", ErrIngestion)
	}
	name := in.Name
	if name == "" {
		name = ScoreUserRating
	}

	event := ingestionEvent{
		ID:        uuid.NewString(),
		Type:      "score-create",
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		Body: scoreBody{
			ID:          uuid.NewString(),
			TraceID:     in.TraceID,
			Name:        name,
			Value:       in.Value,
			DataType:    "NUMERIC",
			Comment:     in.Comment,
			Environment: c.environment,
		},
	}
	return c.ingest(ctx, []ingestionEvent{event})
}

// ingest posts a batch. Langfuse answers 207 with per-event errors, so a 2xx
// status alone does not mean every event was accepted.
func (c *client) ingest(ctx context.Context, events []ingestionEvent) error {
	body, err := json.Marshal(batchPayload{Batch: events})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrIngestion, resp.StatusCode)
	}

	var result ingestionResult
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	if len(result.Errors) > 0 {
		first := result.Errors[0]
		return fmt.Errorf("%w: event %s: status %d: %s", ErrIngestion, first.ID, first.Status, first.Message)
	}
	return nil
}

type batchPayload struct {
	Batch []ingestionEvent `json:"batch"`
}

type ingestionEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

type scoreBody struct {
	ID          string  `json:"id"`
	TraceID     string  `json:"traceId"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	DataType    string  `json:"dataType"`
	Comment     string  `json:"comment,omitempty"`
	Environment string  `json:"environment,omitempty"`
}

type ingestionResult struct {
	Errors []struct {
		ID      string `json:"id"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"errors"`
}
