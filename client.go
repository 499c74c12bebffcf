package voicelive

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	apiVersion         = "2025-05-01-preview"
	identityTokenScope = "https://cognitiveservices.azure.com/"
	identityTokenURL   = "http://169.254.169.254/metadata/identity/oauth2/token"
	identityAPIVersion = "2018-02-01"
)

// Client is the upstream Voice Live transport: one message-oriented WebSocket
// connection. Writes are serialized; reads belong to a single receiver.
type Client struct {
	logger shared.LoggerAdapter
	conn   *websocket.Conn

	mu     sync.Mutex // guards writes and close
	closed bool
}

// Dial opens the Voice Live WebSocket described by cfg. Authentication is a
// managed-identity bearer token when cfg.IdentityClientID is set, the static
// API key header otherwise.
func Dial(ctx context.Context, logger shared.LoggerAdapter, cfg *Config) (*Client, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if cfg == nil {
		return nil, shared.ErrNoConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("x-ms-client-request-id", uuid.NewString())
	if cfg.IdentityClientID != "" {
		token, err := fetchIdentityToken(ctx, cfg.IdentityClientID)
		if err != nil {
			return nil, fmt.Errorf("fetching managed identity token: %w", err)
		}
		header.Set("Authorization", "Bearer "+token)
		logger.Info("authenticating to Voice Live API by managed identity")
	} else {
		header.Set("api-key", cfg.APIKey)
	}

	wsURL := realtimeURL(cfg.Endpoint, cfg.Model)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing Voice Live API (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing Voice Live API: %w", err)
	}
	logger.Info("connected to Voice Live API", zap.String("model", cfg.Model))
	return &Client{logger: logger, conn: conn}, nil
}

// realtimeURL derives the wss URL from the resource endpoint and model name.
func realtimeURL(endpoint, model string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	model = strings.TrimSpace(model)
	url := fmt.Sprintf("%s/voice-live/realtime?api-version=%s&model=%s", endpoint, apiVersion, model)
	url = strings.Replace(url, "https://", "wss://", 1)
	return strings.Replace(url, "http://", "ws://", 1)
}

// fetchIdentityToken requests a short-lived bearer token from the instance
// metadata service for the given user-assigned identity.
func fetchIdentityToken(ctx context.Context, clientID string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(identityTokenURL)
	req.URI().QueryArgs().Set("api-version", identityAPIVersion)
	req.URI().QueryArgs().Set("resource", identityTokenScope)
	req.URI().QueryArgs().Set("client_id", clientID)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Metadata", "true")

	errC := make(chan error)
	go func() {
		defer close(errC)
		errC <- fasthttp.Do(req, resp)
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errC:
		if err != nil {
			return "", fmt.Errorf("performing HTTP request: %w", err)
		}
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), string(resp.Body()))
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("unmarshaling token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return body.AccessToken, nil
}

// Send writes one text message.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return shared.ErrRelayClosed
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendJSON marshals v and writes it as one text message.
func (c *Client) SendJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	return c.Send(data)
}

// Read blocks for the next message. It fails once the connection is closed,
// which is how the receiver loop learns to exit.
func (c *Client) Read() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// Close is safe to call more than once and unblocks any pending Read.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
