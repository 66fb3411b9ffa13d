// File: internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iyunix/go-gptchat/internal/dtos"
)

// Logger defines the logging interface used by the client
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
	headers *AuthHeaders
	logger  Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *Client) { c.headers.retry = cfg }
}

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
		c.headers.logger = logger
	}
}

// New creates a client for the API at baseURL. tokens may be nil for a
// guest-only client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	logger := nopLogger{}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 3 * time.Minute},
		headers: NewAuthHeaders(tokens, nil, logger),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.headers.Headers(ctx)
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "status", resp.StatusCode)
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body dtos.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}

// --- Auth ---

func (c *Client) SignUp(ctx context.Context, req dtos.SignUpRequest) (*dtos.AuthResponse, error) {
	var out dtos.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*dtos.AuthResponse, error) {
	var out dtos.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", dtos.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SyncUser(ctx context.Context, req dtos.SyncRequest) (*dtos.SyncResponse, error) {
	var out dtos.SyncResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/sync", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*dtos.User, error) {
	var out dtos.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile changes the caller's name or saved system prompt.
func (c *Client) UpdateProfile(ctx context.Context, req dtos.UpdateProfileRequest) (*dtos.User, error) {
	var out dtos.UserResponse
	if err := c.do(ctx, http.MethodPatch, "/api/auth/me", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// --- Chats ---

func (c *Client) SendMessage(ctx context.Context, req dtos.SendMessageRequest) (*dtos.SendMessageResponse, error) {
	var out dtos.SendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamMessage sends a turn to the streaming endpoint. onStart receives the
// chat id and title before the first chunk; onDelta receives every chunk as
// it arrives.
func (c *Client) StreamMessage(ctx context.Context, req dtos.SendMessageRequest, onStart func(chatID, title string), onDelta func(string) error) error {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/chat/stream", req)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return err
	}

	if onStart != nil {
		onStart(resp.Header.Get("X-Chat-Id"), resp.Header.Get("X-Chat-Title"))
	}

	buf := make([]byte, 4096)
	var pending []byte
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			var complete []byte
			complete, pending = splitIncompleteRune(append(pending, buf[:n]...))
			if len(complete) > 0 && onDelta != nil {
				if err := onDelta(string(complete)); err != nil {
					return err
				}
			}
		}
		if readErr == io.EOF {
			if len(pending) > 0 && onDelta != nil {
				return onDelta(string(pending))
			}
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read stream: %w", readErr)
		}
	}
}

// splitIncompleteRune cuts b before a trailing partial UTF-8 sequence so a
// chunk never ends in the middle of a character. rest does not alias b.
func splitIncompleteRune(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return b[:i], append([]byte(nil), b[i:]...)
		}
		break
	}
	return b, nil
}

func (c *Client) ListChats(ctx context.Context) ([]dtos.Chat, error) {
	var out dtos.ChatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (*dtos.Chat, error) {
	var out dtos.ChatResponse
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

func (c *Client) GetChatMessages(ctx context.Context, chatID string) ([]dtos.Message, error) {
	var out dtos.MessagesResponse
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID)+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) RenameChat(ctx context.Context, chatID, title string) (*dtos.Chat, error) {
	var out dtos.ChatResponse
	if err := c.do(ctx, http.MethodPatch, "/api/chats/"+url.PathEscape(chatID), dtos.RenameChatRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.do(ctx, http.MethodDelete, "/api/chats/"+url.PathEscape(chatID), nil, nil)
}

// --- Custom GPTs ---

func (c *Client) ListCustomGPTs(ctx context.Context) ([]dtos.CustomGPT, error) {
	return c.listGPTs(ctx, "/api/custom-gpts")
}

func (c *Client) ListPublicGPTs(ctx context.Context) ([]dtos.CustomGPT, error) {
	return c.listGPTs(ctx, "/api/custom-gpts/public")
}

func (c *Client) ListStarredGPTs(ctx context.Context) ([]dtos.CustomGPT, error) {
	return c.listGPTs(ctx, "/api/custom-gpts/starred")
}

func (c *Client) listGPTs(ctx context.Context, path string) ([]dtos.CustomGPT, error) {
	var out dtos.CustomGPTsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.CustomGPTs, nil
}

func (c *Client) CreateCustomGPT(ctx context.Context, req dtos.CreateCustomGPTRequest) (*dtos.CustomGPT, error) {
	var out dtos.CustomGPTResponse
	if err := c.do(ctx, http.MethodPost, "/api/custom-gpts", req, &out); err != nil {
		return nil, err
	}
	return &out.CustomGPT, nil
}

func (c *Client) UpdateCustomGPT(ctx context.Context, id string, req dtos.UpdateCustomGPTRequest) (*dtos.CustomGPT, error) {
	var out dtos.CustomGPTResponse
	if err := c.do(ctx, http.MethodPut, "/api/custom-gpts/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out.CustomGPT, nil
}

func (c *Client) DeleteCustomGPT(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/custom-gpts/"+url.PathEscape(id), nil, nil)
}

// StarCustomGPT stars (star=true) or unstars a persona.
func (c *Client) StarCustomGPT(ctx context.Context, id string, star bool) (*dtos.StarResponse, error) {
	method := http.MethodPost
	if !star {
		method = http.MethodDelete
	}
	var out dtos.StarResponse
	if err := c.do(ctx, method, "/api/custom-gpts/"+url.PathEscape(id)+"/star", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
