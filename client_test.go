package voicelive

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		model    string
		want     string
	}{
		{
			name:     "https endpoint",
			endpoint: "https://example.cognitiveservices.azure.com",
			model:    "gpt-4o",
			want:     "wss://example.cognitiveservices.azure.com/voice-live/realtime?api-version=2025-05-01-preview&model=gpt-4o",
		},
		{
			name:     "trailing slash trimmed",
			endpoint: "https://example.cognitiveservices.azure.com/",
			model:    "gpt-4o",
			want:     "wss://example.cognitiveservices.azure.com/voice-live/realtime?api-version=2025-05-01-preview&model=gpt-4o",
		},
		{
			name:     "http endpoint",
			endpoint: "http://localhost:8765",
			model:    "gpt-4o",
			want:     "ws://localhost:8765/voice-live/realtime?api-version=2025-05-01-preview&model=gpt-4o",
		},
		{
			name:     "model whitespace trimmed",
			endpoint: "https://example.cognitiveservices.azure.com",
			model:    "  gpt-4o \n",
			want:     "wss://example.cognitiveservices.azure.com/voice-live/realtime?api-version=2025-05-01-preview&model=gpt-4o",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, realtimeURL(tt.endpoint, tt.model))
		})
	}
}

func TestDialValidation(t *testing.T) {
	tests := []struct {
		name    string
		logger  shared.LoggerAdapter
		cfg     *Config
		wantErr error
	}{
		{
			name:    "nil logger",
			cfg:     testConfig(),
			wantErr: shared.ErrNoLogger,
		},
		{
			name:    "nil config",
			logger:  shared.NewNopLogger(),
			wantErr: shared.ErrNoConfig,
		},
		{
			name:    "no endpoint",
			logger:  shared.NewNopLogger(),
			cfg:     &Config{Model: "gpt-4o", APIKey: "key"},
			wantErr: shared.ErrNoEndpoint,
		},
		{
			name:    "no credential",
			logger:  shared.NewNopLogger(),
			cfg:     &Config{Endpoint: "https://example.cognitiveservices.azure.com", Model: "gpt-4o"},
			wantErr: shared.ErrNoCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := Dial(context.Background(), tt.logger, tt.cfg)
			assert.Nil(t, client)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDialSendsAuthHeaders(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voice-live/realtime", r.URL.Path)
		assert.Equal(t, "2025-05-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "gpt-4o", r.URL.Query().Get("model"))
		assert.Equal(t, "secret-key", r.Header.Get("api-key"))
		assert.NotEmpty(t, r.Header.Get("x-ms-client-request-id"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Echo until the client hangs up.
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, data); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	cfg := &Config{Endpoint: server.URL, Model: "gpt-4o", APIKey: "secret-key"}
	client, err := Dial(context.Background(), shared.NewNopLogger(), cfg)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send([]byte(`{"type":"response.create"}`)))
	echoed, err := client.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response.create"}`, string(echoed))
}

func TestClientSendAfterClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	cfg := &Config{Endpoint: server.URL, Model: "gpt-4o", APIKey: "secret-key"}
	client, err := Dial(context.Background(), shared.NewNopLogger(), cfg)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "close is idempotent")
	assert.ErrorIs(t, client.Send([]byte("late")), shared.ErrRelayClosed)
}
