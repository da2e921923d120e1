/*
Package executor forwards code to an external Piston-compatible execution service.

A single attempt is made per request, bounded by a hard timeout. The provider's JSON
response is passed through untouched so clients see exactly what the sandbox returned.
*/
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"coderoom/internal/pkg/logx"
)

const (
	// DefaultEndpoint is the public Piston execute API.
	DefaultEndpoint = "https://emkc.org/api/v2/piston/execute"

	// DefaultTimeout bounds one execution round trip.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of the provider body is read.
	maxResponseBytes = 1 << 20
)

// Request is one execution job.
type Request struct {
	Code     string
	Language string
	Version  string
	Stdin    string
}

// Result is the provider response and its extracted run output.
type Result struct {
	Raw    json.RawMessage
	Output string
}

type pistonFile struct {
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
	Stdin    string       `json:"stdin"`
}

type pistonResponse struct {
	Run struct {
		Output string `json:"output"`
	} `json:"run"`
}

// Client talks to the execution service.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// New returns a Client for endpoint. A non-positive timeout selects DefaultTimeout.
func New(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		endpoint:   endpoint,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logx.With("executor"),
	}
}

// Execute submits req and waits at most the configured timeout for the result.
func (c *Client) Execute(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(pistonRequest{
		Language: req.Language,
		Version:  req.Version,
		Files:    []pistonFile{{Content: req.Code}},
		Stdin:    req.Stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("encode execution request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execution request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("timeout of %s exceeded", c.timeout)
		}
		return nil, fmt.Errorf("execution service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read execution response: %w", err)
	}

	c.logger.Debug().
		Str("language", req.Language).
		Int("status", httpResp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Execution service responded")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed with status code %d", httpResp.StatusCode)
	}

	var parsed pistonResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode execution response: %w", err)
	}

	return &Result{Raw: json.RawMessage(raw), Output: parsed.Run.Output}, nil
}

// ErrorResponse builds the response shape clients expect for a failed execution.
func ErrorResponse(err error) json.RawMessage {
	payload := map[string]map[string]string{
		"run": {"output": "Error: " + err.Error()},
	}
	data, _ := json.Marshal(payload)
	return data
}
