package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrNoAPIKey is returned when a call is attempted without a credential.
var ErrNoAPIKey = errors.New("API key not configured")

const maxSSELineSize = 1024 * 1024

// Client is a minimal REST client for the generative language API. It supports
// one-shot generation and chunked streaming via server-sent events. A process
// default API key can be stored on the client; WithKey derives a per-request
// client without mutating the shared one.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client

	mu     sync.RWMutex
	apiKey string
}

func NewClient(baseURL, model, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		// No overall client timeout: streaming responses stay open for the
		// lifetime of a request. Deadlines come from the caller's context.
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		apiKey: apiKey,
	}
}

// SetAPIKey stores a process-default API key.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// ResetAPIKey clears the stored default key.
func (c *Client) ResetAPIKey() {
	c.SetAPIKey("")
}

// APIKey returns the stored default key.
func (c *Client) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// WithKey returns a client using the given per-request key, falling back to
// the stored default when key is empty.
func (c *Client) WithKey(key string) *Client {
	if key == "" {
		return c
	}
	return &Client{
		baseURL:    c.baseURL,
		model:      c.model,
		httpClient: c.httpClient,
		apiKey:     key,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Generate performs a one-shot generateContent call.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (*Chunk, error) {
	key := c.APIKey()
	if key == "" {
		return nil, ErrNoAPIKey
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	resp, err := c.post(ctx, url, key, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var chunk Chunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &chunk, nil
}

// GenerateStream performs a streamGenerateContent call and yields chunks as
// they arrive. Breaking out of the range closes the underlying connection, so
// callers can stop consuming early without draining the stream. A transport or
// decode failure is yielded once as a non-nil error, then the sequence ends.
func (c *Client) GenerateStream(ctx context.Context, req *GenerateRequest) iter.Seq2[*Chunk, error] {
	return func(yield func(*Chunk, error) bool) {
		key := c.APIKey()
		if key == "" {
			yield(nil, ErrNoAPIKey)
			return
		}

		url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.model)
		resp, err := c.post(ctx, url, key, req)
		if err != nil {
			yield(nil, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield(nil, apiError(resp))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), maxSSELineSize)

		for scanner.Scan() {
			line := scanner.Text()
			data, found := strings.CutPrefix(line, "data:")
			if !found {
				continue
			}
			data = strings.TrimSpace(data)
			if data == "" || data == "[DONE]" {
				continue
			}

			var chunk Chunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield(nil, fmt.Errorf("failed to decode stream chunk: %w", err))
				return
			}

			if !yield(&chunk, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("stream read error: %w", err))
		}
	}
}

func (c *Client) post(ctx context.Context, url, key string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
	}

	return fmt.Errorf("API error (status %d)", resp.StatusCode)
}
