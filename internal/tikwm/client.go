package tikwm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the public tikwm extraction API
	DefaultEndpoint = "https://www.tikwm.com/api/"

	// DefaultTimeout bounds a single metadata request
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent mimics a desktop browser; the API rejects bare clients
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Author is the uploader block of a tikwm response
type Author struct {
	Nickname Text `json:"nickname"`
}

func (a *Author) UnmarshalJSON(b []byte) error {
	type plain Author
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*a = Author{}
		return nil
	}
	*a = Author(p)
	return nil
}

// VideoData is the nested "data" object of a tikwm response.
// Only the fields the downloader reads are decoded.
type VideoData struct {
	ID       Text   `json:"id"`
	Title    Text   `json:"title"`
	Play     Text   `json:"play"`
	Duration Int    `json:"duration"`
	Author   Author `json:"author"`
}

func (d *VideoData) UnmarshalJSON(b []byte) error {
	type plain VideoData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*d = VideoData{}
		return nil
	}
	*d = VideoData(p)
	return nil
}

// Response is the decoded body of the extraction API.
// Code and Msg are carried as-is; callers decide what a usable response is.
type Response struct {
	Code Int        `json:"code"`
	Msg  Text       `json:"msg"`
	Data *VideoData `json:"data"`

	base *url.URL
}

// PlayURL returns the playable download URL, or "" when the response has none.
// Relative play paths are resolved against the API endpoint.
func (r *Response) PlayURL() string {
	if r == nil || r.Data == nil || r.Data.Play == "" {
		return ""
	}
	if r.base == nil {
		return string(r.Data.Play)
	}
	ref, err := url.Parse(string(r.Data.Play))
	if err != nil {
		return string(r.Data.Play)
	}
	return r.base.ResolveReference(ref).String()
}

// Client talks to the tikwm extraction API
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

// NewClient creates a Client for endpoint with the given per-request timeout
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		userAgent:  DefaultUserAgent,
	}
}

// Endpoint returns the API URL the client posts to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchInfo posts videoURL to the API and decodes the JSON reply.
// Any failure is logged and returned; the response is nil in that case.
func (c *Client) FetchInfo(ctx context.Context, videoURL string) (*Response, error) {
	resp, err := c.fetch(ctx, videoURL)
	if err != nil {
		log.Printf("[TIKWM] Error getting video info for %s: %v", videoURL, err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, videoURL string) (*Response, error) {
	form := url.Values{"url": {videoURL}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("unexpected status: %s", res.Status)
	}

	var out Response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	out.base = req.URL

	return &out, nil
}
