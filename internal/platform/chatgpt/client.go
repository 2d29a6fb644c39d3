// Package chatgpt is the HTTP client for the browser-automation bridge that
// drives the ChatGPT UI: it fetches conversation history and types memory
// chunks into the chat input on our behalf.
package chatgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/k3ss-official/total-recall/internal/config"
	"github.com/k3ss-official/total-recall/internal/domain"
	"github.com/k3ss-official/total-recall/internal/redact"
)

// Common errors returned by the bridge client.
var (
	// ErrBridgeUnavailable is returned when the bridge cannot be reached.
	ErrBridgeUnavailable = errors.New("automation bridge unavailable")

	// ErrNoSession is returned when the bridge has no authenticated
	// browser session.
	ErrNoSession = errors.New("no active browser session")

	// ErrConversationNotFound is returned when the bridge does not know
	// the requested conversation.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInjectionRejected is returned when the bridge refuses a memory
	// chunk.
	ErrInjectionRejected = errors.New("bridge rejected memory chunk")
)

const defaultRequestTimeout = 30 * time.Second

// Client talks to the automation bridge over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a bridge client from configuration.
func NewClient(cfg config.BridgeConfig, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("bridge base URL cannot be empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid bridge base URL: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "chatgpt_bridge"),
	}, nil
}

// sessionResponse is the bridge's session status payload.
type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Detail        string `json:"detail,omitempty"`
}

// EnsureSession verifies the bridge holds an authenticated browser session.
// Used as job setup before any injection runs.
func (c *Client) EnsureSession(ctx context.Context) error {
	var session sessionResponse
	if err := c.get(ctx, "/session", &session); err != nil {
		return err
	}
	if !session.Authenticated {
		return ErrNoSession
	}
	return nil
}

// ListConversations fetches conversation summaries from the bridge.
func (c *Client) ListConversations(ctx context.Context) ([]domain.Summary, error) {
	var payload struct {
		Conversations []domain.Summary `json:"conversations"`
	}
	if err := c.get(ctx, "/conversations", &payload); err != nil {
		return nil, err
	}
	return payload.Conversations, nil
}

// GetConversation fetches a full conversation by ID.
func (c *Client) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var conversation domain.Conversation
	if err := c.get(ctx, "/conversations/"+url.PathEscape(id), &conversation); err != nil {
		return domain.Conversation{}, err
	}
	return conversation, nil
}

// InjectChunk asks the bridge to type one memory chunk into the chat UI.
func (c *Client) InjectChunk(ctx context.Context, chunk string) error {
	if chunk == "" {
		return fmt.Errorf("%w: empty chunk", ErrInjectionRejected)
	}

	body, err := json.Marshal(map[string]string{"text": chunk})
	if err != nil {
		return fmt.Errorf("failed to encode injection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inject", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build injection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("bridge request failed", "error", redact.Error(err))
		return fmt.Errorf("%w: %v", ErrBridgeUnavailable, redact.Error(err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusUnauthorized:
		return ErrNoSession
	default:
		return fmt.Errorf("%w: bridge returned status %d", ErrInjectionRejected, resp.StatusCode)
	}
}

// get performs a GET against the bridge and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build bridge request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("bridge request failed", "path", path, "error", redact.Error(err))
		return fmt.Errorf("%w: %v", ErrBridgeUnavailable, redact.Error(err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrConversationNotFound
	case http.StatusUnauthorized:
		return ErrNoSession
	default:
		return fmt.Errorf("%w: bridge returned status %d", ErrBridgeUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read bridge response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode bridge response: %w", err)
	}
	return nil
}
