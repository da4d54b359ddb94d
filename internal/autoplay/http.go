package autoplay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/oche/internal/domain/types"
)

// HTTPClient talks to the game API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// apiError is a non-2xx answer from the service.
type apiError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s: %s", e.Status, e.Code, e.Message)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return fmt.Errorf("%s %s: %w", method, path, apiErr)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// Health checks that the service answers.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// CreateGame creates a drag game.
func (c *HTTPClient) CreateGame(ctx context.Context, players int) (types.Game, error) {
	var g types.Game
	err := c.do(ctx, http.MethodPost, "/games", types.NewGame{Players: players, Variant: "drag"}, &g)
	return g, err
}

// Game reads a game.
func (c *HTTPClient) Game(ctx context.Context, id string) (types.Game, error) {
	var g types.Game
	err := c.do(ctx, http.MethodGet, "/games/"+id, nil, &g)
	return g, err
}

// Pointer sends one pointer event.
func (c *HTTPClient) Pointer(ctx context.Context, id string, ev types.PointerEvent) (types.AimResult, error) {
	var res types.AimResult
	err := c.do(ctx, http.MethodPost, "/games/"+id+"/aim/pointer", ev, &res)
	return res, err
}

// Ranking reads the ranking of a game.
func (c *HTTPClient) Ranking(ctx context.Context, id string) ([]types.Entry, error) {
	var entries []types.Entry
	err := c.do(ctx, http.MethodGet, "/games/"+id+"/ranking", nil, &entries)
	return entries, err
}
