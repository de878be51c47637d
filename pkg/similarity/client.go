package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bangcorrupt/freesound/settings"
)

// Sound is one entry of a similarity result: a sound ID and its distance to
// the query sound in the selected descriptor space.
type Sound struct {
	ID       int64   `json:"id"`
	Distance float64 `json:"distance"`
}

// searchResponse is the wire format of the similarity service.
type searchResponse struct {
	Error   bool    `json:"error"`
	Message string  `json:"message,omitempty"`
	Results []Sound `json:"results"`
}

// Client queries the out-of-process audio-similarity service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the configured service address.
func NewClient(cfg *settings.SimilarityConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d", cfg.Address, cfg.Port),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake
// server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns up to num sounds similar to soundID under the given
// preset, ordered by ascending distance.
func (c *Client) Search(ctx context.Context, soundID int64, preset string, num int) ([]Sound, error) {
	q := url.Values{}
	q.Set("sound_id", strconv.FormatInt(soundID, 10))
	q.Set("preset", preset)
	q.Set("num_results", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/similarity/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build similarity request failed: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("similarity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("similarity service returned status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode similarity response failed: %w", err)
	}
	if sr.Error {
		return nil, fmt.Errorf("similarity service error: %s", sr.Message)
	}
	return sr.Results, nil
}
