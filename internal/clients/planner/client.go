package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mediccompanion/backend/internal/domain"
	"github.com/mediccompanion/backend/internal/pkg/ctxutil"
	"github.com/mediccompanion/backend/internal/pkg/httpx"
	"github.com/mediccompanion/backend/internal/platform/envutil"
	"github.com/mediccompanion/backend/internal/platform/logger"
)

// Client talks to the external planning service that turns free-text
// prescriptions into a proposed reminder schedule. Its output is never
// trusted as-is; the guardrail validator runs on every response.
type Client interface {
	ProposeSchedule(ctx context.Context, input domain.PlanInput) ([]*domain.ProposedScheduleItem, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:    strings.TrimSpace(os.Getenv("PLANNER_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("PLANNER_API_KEY")),
		Timeout:    time.Duration(envutil.Int("PLANNER_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries: envutil.Int("PLANNER_MAX_RETRIES", 3),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing PLANNER_BASE_URL")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &client{
		log:        log.With("client", "PlannerClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type proposeRequest struct {
	RawText string            `json:"raw_text,omitempty"`
	Meds    []domain.MedInput `json:"meds,omitempty"`

	Continue   bool                           `json:"continue,omitempty"`
	UserPrompt string                         `json:"user_prompt,omitempty"`
	Previous   []*domain.ProposedScheduleItem `json:"previous,omitempty"`
}

type proposeResponse struct {
	Schedule []*domain.ProposedScheduleItem `json:"schedule"`
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "planner: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("planner http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) ProposeSchedule(ctx context.Context, input domain.PlanInput) ([]*domain.ProposedScheduleItem, error) {
	raw, err := c.do(ctx, proposeRequest{
		RawText:    input.RawText,
		Meds:       input.Meds,
		Continue:   input.Continue,
		UserPrompt: input.UserPrompt,
		Previous:   input.Previous,
	})
	if err != nil {
		return nil, err
	}

	var out proposeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		// Some deployments return the schedule array bare.
		var items []*domain.ProposedScheduleItem
		if err2 := json.Unmarshal(raw, &items); err2 == nil {
			return items, nil
		}
		return nil, fmt.Errorf("planner: undecodable response: %w", err)
	}
	return out.Schedule, nil
}

func (c *client) do(ctx context.Context, body any) ([]byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		raw, resp, err := c.doOnce(ctx, body)
		if err == nil {
			return raw, nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 15*time.Second))
		c.log.Warn("Planner request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}
}

func (c *client) doOnce(ctx context.Context, body any) ([]byte, *http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), "POST", c.cfg.BaseURL+"/v1/plan", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp, nil
}
