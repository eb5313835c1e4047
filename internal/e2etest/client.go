package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UserIDHeader identifies the user. An authenticating proxy sets it in production.
const UserIDHeader = "X-User-ID"

type Client struct {
	client *http.Client
	url    string
	userID int64
}

// StatusError is returned when the server responds with an unexpected status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

func NewClient(url string, userID int64) *Client {
	return &Client{
		client: &http.Client{Timeout: 10 * time.Second}, //nolint:mnd // generous for slow CI.
		url:    url,
		userID: userID,
	}
}

// WaitForReady calls urlPath until it responds with 200 OK, the context is cancelled or a second has passed.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	const timeout = time.Second
	start := time.Now()
	for {
		resp, err := c.Do(ctx, http.MethodGet, urlPath, nil)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
			if time.Since(start) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(50 * time.Millisecond) //nolint:mnd // poll interval.
		}
	}
}

// Do sends a request with body encoded as JSON unless it is nil.
func (c *Client) Do(ctx context.Context, method, urlPath string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != 0 {
		req.Header.Set(UserIDHeader, strconv.FormatInt(c.userID, 10))
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// JSON sends a request and decodes a 2xx JSON response into out. Other statuses return a *StatusError.
func (c *Client) JSON(ctx context.Context, method, urlPath string, body, out any) (err error) {
	resp, err := c.Do(ctx, method, urlPath, body)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, resp.Body.Close())
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetDoc fetches an HTML page.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Do(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}
	return doc, nil
}
