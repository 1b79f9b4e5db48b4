// Package backend talks to the image-generation web server. Every endpoint
// answers with a JSON envelope carrying a "status" field; the client turns
// anything other than "success"/"processing" into a KindServer error holding
// the server's message, and transport or decode failures into KindNetwork.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	pErrors "github.com/zhubert/imagine/internal/errors"
	"github.com/zhubert/imagine/internal/logger"
)

const (
	httpTimeout = 120 * time.Second
	// maxResponseBytes bounds a single response; a /generate answer carries
	// up to four base64 PNGs.
	maxResponseBytes = 256 << 20
)

// Client is an HTTP client for one backend session. The session is tracked
// by the server through a cookie, so a Client must be reused for the
// lifetime of the UI.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a Client for baseURL with its own cookie jar.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Jar:     jar,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewWithClient creates a Client with a custom HTTP client (for testing).
func NewWithClient(client *http.Client, baseURL string) *Client {
	if client.Jar == nil {
		client.Jar, _ = cookiejar.New(nil)
	}
	return &Client{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the server address this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Generate submits a generation request. A 200 answer carries the images;
// a 202 answer carries a task to poll with CheckTask.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	const op = pErrors.Op("backend.Generate")
	if req.ReferenceImages == nil {
		req.ReferenceImages = []string{}
	}

	env, code, err := c.do(ctx, op, http.MethodPost, "/generate", req)
	if err != nil {
		return nil, err
	}
	if code == http.StatusAccepted || env.Status == StatusProcessing {
		if env.TaskID == "" {
			return nil, pErrors.Transport(op, fmt.Errorf("processing response without task_id"))
		}
		return &GenerateResult{Task: &Task{ID: env.TaskID, Position: env.position()}}, nil
	}
	return &GenerateResult{Images: env.Images}, nil
}

// CheckTask fetches the status of a queued task. A server-reported failure
// is returned as a TaskStatus with Status "error", not as an error; err is
// only set when the status itself could not be obtained.
func (c *Client) CheckTask(ctx context.Context, taskID string) (*TaskStatus, error) {
	const op = pErrors.Op("backend.CheckTask")

	env, err := c.roundTrip(ctx, op, http.MethodGet, "/check_task/"+url.PathEscape(taskID), nil)
	if pErrors.Is(err, pErrors.KindServer) {
		return &TaskStatus{Status: StatusError, Position: -1, Message: pErrors.UserMessage(err)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &TaskStatus{
		Status:   env.Status,
		Position: env.position(),
		Images:   env.Images,
		Message:  env.Message,
	}, nil
}

// UpdateSettings patches the backend session.
func (c *Client) UpdateSettings(ctx context.Context, patch SettingsPatch) error {
	_, _, err := c.do(ctx, "backend.UpdateSettings", http.MethodPost, "/update_session_settings", patch)
	return err
}

// AddReference uploads a data URI and returns the server's full list.
func (c *Client) AddReference(ctx context.Context, dataURI string) ([]string, error) {
	env, _, err := c.do(ctx, "backend.AddReference", http.MethodPost, "/add_reference_image",
		map[string]string{"image": dataURI})
	if err != nil {
		return nil, err
	}
	return nonNil(env.ReferenceImages), nil
}

// RemoveReference deletes the reference at index and returns the server's full list.
func (c *Client) RemoveReference(ctx context.Context, index int) ([]string, error) {
	env, _, err := c.do(ctx, "backend.RemoveReference", http.MethodPost,
		fmt.Sprintf("/remove_reference_image/%d", index), nil)
	if err != nil {
		return nil, err
	}
	return nonNil(env.ReferenceImages), nil
}

// ClearResults resets the server-side session.
func (c *Client) ClearResults(ctx context.Context) error {
	_, _, err := c.do(ctx, "backend.ClearResults", http.MethodPost, "/clear_session_results", nil)
	return err
}

// ImprovePrompt asks the backend to rewrite prompt.
func (c *Client) ImprovePrompt(ctx context.Context, prompt string) (string, error) {
	env, _, err := c.do(ctx, "backend.ImprovePrompt", http.MethodPost, "/improve_prompt",
		map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}
	return env.ImprovedPrompt, nil
}

// MagicPrompt asks the backend for a random prompt.
func (c *Client) MagicPrompt(ctx context.Context) (string, error) {
	env, _, err := c.do(ctx, "backend.MagicPrompt", http.MethodPost, "/generate_magic_prompt", struct{}{})
	if err != nil {
		return "", err
	}
	return env.MagicPrompt, nil
}

// roundTrip is do without the status code.
func (c *Client) roundTrip(ctx context.Context, op pErrors.Op, method, path string, body any) (*envelope, error) {
	env, _, err := c.do(ctx, op, method, path, body)
	return env, err
}

// do performs one JSON request and classifies the outcome.
func (c *Client) do(ctx context.Context, op pErrors.Op, method, path string, body any) (*envelope, int, error) {
	log := logger.WithComponent("backend")
	reqID := uuid.NewString()[:8]

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, pErrors.E(op, pErrors.KindInvalid, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, pErrors.Transport(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "req", reqID, "method", method, "path", path, "error", err)
		return nil, 0, pErrors.Transport(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, pErrors.Transport(op, err)
	}
	log.Debug("response", "req", reqID, "method", method, "path", path,
		"status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start))

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, resp.StatusCode, pErrors.Transport(op,
			fmt.Errorf("HTTP %d with unparseable body: %w", resp.StatusCode, err))
	}
	if env.Status == "" && env.Success == nil {
		return nil, resp.StatusCode, pErrors.Transport(op, fmt.Errorf("HTTP %d without status", resp.StatusCode))
	}
	if !env.ok() || resp.StatusCode >= 300 {
		log.Info("server rejected request", "req", reqID, "path", path, "message", env.Message)
		return nil, resp.StatusCode, pErrors.ServerRejected(op, env.Message)
	}
	return &env, resp.StatusCode, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
