// internal/remote/client.go
//
// HTTP implementation of the remote ports against the account/data service.
// Base URL comes from DATA_API_BASE. All calls are bounded by the request
// context plus a client-level timeout; errors are returned to the caller,
// which decides whether the condition is degraded-but-playable (clock sync,
// score persistence) or fatal (no dictionary at all).

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the external data service over HTTP.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a Client for the service at base.
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

var (
	_ Rounds     = (*Client)(nil)
	_ Dictionary = (*Client)(nil)
	_ Scores     = (*Client)(nil)
)

func (c *Client) CurrentWord(ctx context.Context, cadenceMinutes int) (WordRound, error) {
	var out WordRound
	err := c.getJSON(ctx, "/rounds/word?cadence="+strconv.Itoa(cadenceMinutes), &out)
	return out, err
}

func (c *Client) SubmitAnswer(ctx context.Context, playerID string, cadenceMinutes int, answer string) (SubmitResult, error) {
	body := map[string]any{
		"playerId": playerID,
		"cadence":  cadenceMinutes,
		"answer":   answer,
	}
	var out SubmitResult
	err := c.postJSON(ctx, "/rounds/submit", body, &out)
	return out, err
}

func (c *Client) ListWords(ctx context.Context, gameMode string) ([]string, error) {
	var out struct {
		Words []string `json:"words"`
	}
	if err := c.getJSON(ctx, "/dictionary?mode="+url.QueryEscape(gameMode), &out); err != nil {
		return nil, err
	}
	return out.Words, nil
}

func (c *Client) RecordScore(ctx context.Context, r ScoreReport) error {
	return c.postJSON(ctx, "/scores", r, nil)
}

func (c *Client) Leaderboard(ctx context.Context, mode string, limit int) ([]LeaderboardRow, error) {
	var out struct {
		Top []LeaderboardRow `json:"top"`
	}
	path := fmt.Sprintf("/scores/leaderboard?mode=%s&limit=%d", url.QueryEscape(mode), limit)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Top, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("remote: %s %s: status %d", req.Method, req.URL.Path, res.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
