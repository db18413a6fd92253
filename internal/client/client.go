// Package client is a Go client for the platform's content generation API.
// It starts pipeline runs and polls their status until a terminal state,
// relaying each snapshot to caller-supplied callbacks.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

const (
	// DefaultPollInterval is the fixed delay between status polls.
	DefaultPollInterval = 2 * time.Second

	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 30 * time.Second

	// MaxStartRetries bounds how many times a failed start may be retried.
	MaxStartRetries = 3
)

// Error type tags carried on APIError, derived from the server's error codes.
const (
	ErrTypeSubscriptionRequired = "subscription_required"
	ErrTypePrerequisiteMissing  = "prerequisite_missing"
	ErrTypeAPI                  = "api_error"
)

// ErrMaxRetries is returned once the start retry bound is exhausted.
var ErrMaxRetries = errors.New("maximum retries reached")

// APIError is a semantic error surfaced by the backend, distinguished from
// transport errors by carrying the server's error code.
type APIError struct {
	Type       string
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: %s (HTTP %d)", e.Code, e.StatusCode)
}

// PipelineJob identifies a started content generation run.
type PipelineJob struct {
	RunID   string
	Subject string
	Status  types.PipelineStatusValue
}

// Callbacks receives status snapshots from PollStatus. OnUpdate fires for
// every non-terminal snapshot; exactly one of OnComplete or OnError fires,
// after which no further callbacks occur.
type Callbacks struct {
	OnUpdate   func(types.PipelineStatus)
	OnComplete func(types.PipelineStatus)
	OnError    func(error)
}

// RetryState tracks user-driven retries of a failed start. Owned by a single
// caller context; a successful start resets it.
type RetryState struct {
	Count   int
	LastErr error
}

// Retryable reports whether another start attempt is allowed.
func (r *RetryState) Retryable() bool {
	return r.Count < MaxStartRetries
}

// Poller drives the start/poll lifecycle of content generation runs.
type Poller struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration
	token      string
}

// NewPoller creates a poller for the API at baseURL.
func NewPoller(baseURL string) *Poller {
	return &Poller{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		interval:   DefaultPollInterval,
	}
}

// SetPollInterval overrides the polling cadence. Intervals below 100ms are
// clamped so a misconfigured caller cannot hammer the backend.
func (p *Poller) SetPollInterval(d time.Duration) {
	if d < 100*time.Millisecond {
		d = 100 * time.Millisecond
	}
	p.interval = d
}

// SetToken sets the bearer token attached to every request.
func (p *Poller) SetToken(token string) {
	p.token = token
}

func (p *Poller) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	return req, nil
}

// Start requests a new generation run for the user and subject. Semantic
// failures return an *APIError carrying the server's error code; transport
// failures return the underlying error.
func (p *Poller) Start(ctx context.Context, userID uuid.UUID, subject string) (*PipelineJob, error) {
	url := fmt.Sprintf("%s/users/%s/subjects/%s/lessons/generate", p.baseURL, userID, subject)
	req, err := p.newRequest(ctx, http.MethodPost, url)
	if err != nil {
		return nil, fmt.Errorf("failed to build start request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("start request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, parseAPIError(resp)
	}

	var started types.StartPipelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return nil, fmt.Errorf("failed to decode start response: %w", err)
	}

	return &PipelineJob{
		RunID:   started.RunID,
		Subject: started.Subject,
		Status:  started.Status,
	}, nil
}

// StartWithRetry wraps Start with the bounded retry policy. Each failed
// attempt increments state.Count; once the bound is reached, ErrMaxRetries
// is returned without issuing a request. A successful start resets the state.
func (p *Poller) StartWithRetry(ctx context.Context, userID uuid.UUID, subject string, state *RetryState) (*PipelineJob, error) {
	if !state.Retryable() {
		return nil, ErrMaxRetries
	}

	job, err := p.Start(ctx, userID, subject)
	if err != nil {
		state.Count++
		state.LastErr = err
		return nil, err
	}

	state.Count = 0
	state.LastErr = nil
	return job, nil
}

// PollStatus polls the run's status at a fixed interval until a terminal
// snapshot arrives, invoking cb for each observation. Polls are sequential:
// the next request is scheduled only after the previous one resolves. Fire
// and forget; the loop runs in its own goroutine. Cancel via ctx: after
// cancellation no callback fires, and an in-flight response is discarded.
func (p *Poller) PollStatus(ctx context.Context, userID uuid.UUID, subject, runID string, cb Callbacks) {
	go p.pollLoop(ctx, userID, subject, runID, cb)
}

func (p *Poller) pollLoop(ctx context.Context, userID uuid.UUID, subject, runID string, cb Callbacks) {
	for {
		status, err := p.fetchStatus(ctx, userID, subject, runID)

		// A response that arrives after cancellation is discarded.
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			if cb.OnError != nil {
				cb.OnError(err)
			}
			return
		}

		switch {
		case status.Status == types.PipelineCompleted:
			if cb.OnComplete != nil {
				cb.OnComplete(*status)
			}
			return
		case status.Status == types.PipelineFailed:
			if cb.OnError != nil {
				cb.OnError(fmt.Errorf("pipeline failed: %s", failureMessage(status)))
			}
			return
		default:
			if cb.OnUpdate != nil {
				cb.OnUpdate(*status)
			}
		}

		// Next poll is scheduled only after this one resolved, so requests
		// never overlap even when the backend is slow.
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// fetchStatus retrieves one status snapshot.
func (p *Poller) fetchStatus(ctx context.Context, userID uuid.UUID, subject, runID string) (*types.PipelineStatus, error) {
	url := fmt.Sprintf("%s/users/%s/subjects/%s/pipeline/%s/status", p.baseURL, userID, subject, runID)
	req, err := p.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp)
	}

	var status types.PipelineStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &status, nil
}

func failureMessage(status *types.PipelineStatus) string {
	if status.Message != "" {
		return status.Message
	}
	return string(status.CurrentStage)
}

// parseAPIError converts a non-success response into an *APIError, reading
// the server's error envelope when present.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Type:       ErrTypeAPI,
		StatusCode: resp.StatusCode,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
	}

	switch {
	case apiErr.Code == "SUBSCRIPTION_REQUIRED" || resp.StatusCode == http.StatusPaymentRequired:
		apiErr.Type = ErrTypeSubscriptionRequired
	case apiErr.Code == "PREREQUISITE_MISSING":
		apiErr.Type = ErrTypePrerequisiteMissing
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with HTTP %d", resp.StatusCode)
	}
	return apiErr
}
