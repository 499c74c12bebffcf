package voicelive

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
	"github.com/r4hulp/call-center-voice-agent-accelerator/tools"
	"go.uber.org/zap"
)

// ConnectionType selects the downstream audio encoding path.
type ConnectionType string

const (
	// ConnectionTypeWeb delivers raw PCM binary frames to browser clients.
	ConnectionTypeWeb ConnectionType = "web"
	// ConnectionTypeACS delivers JSON envelopes to telephony (Azure
	// Communication Services) clients.
	ConnectionTypeACS ConnectionType = "acs"
)

type RelayState int

const (
	StateUninitialized RelayState = iota
	StateRegistering
	StateRejected
	StateConnecting
	StateFailed
	StateStreaming
	StateClosing
	StateClosed
)

func (s RelayState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRegistering:
		return "registering"
	case StateRejected:
		return "rejected"
	case StateConnecting:
		return "connecting"
	case StateFailed:
		return "failed"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TranscriptEntry is one completed utterance in either direction.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClientTransport is the narrow downstream contract. *websocket.Conn
// satisfies it directly.
type ClientTransport interface {
	WriteMessage(messageType int, data []byte) error
}

// Downstream envelope kinds.
const (
	kindAudioData     = "AudioData"
	kindStopAudio     = "StopAudio"
	kindTranscription = "Transcription"
)

// clientAudioFrame is an inbound telephony audio frame. A missing silent
// flag counts as silent.
type clientAudioFrame struct {
	Kind      string `json:"kind"`
	AudioData struct {
		Data   string `json:"data"`
		Silent *bool  `json:"silent"`
	} `json:"audioData"`
}

// MediaRelay bridges one downstream client connection and one upstream Voice
// Live connection for the lifetime of a call: it translates protocols in both
// directions and executes tool calls on the service's behalf. Lifecycle is
// Attach (admission), Connect (upstream dial plus loop start), Cleanup.
type MediaRelay struct {
	logger  shared.LoggerAdapter
	cfg     *Config
	manager *ConnectionManager

	connectionID string
	queue        *sendQueue

	mu          sync.Mutex
	state       RelayState
	downstream  ClientTransport
	connType    ConnectionType
	callerID    string
	registered  bool
	connectedAt time.Time
	sessionID   string
	transcript  []TranscriptEntry
	toolReg     *tools.Registry
	client      *Client

	ctx    context.Context
	cancel context.CancelCauseFunc
}

func NewMediaRelay(logger shared.LoggerAdapter, cfg *Config, manager *ConnectionManager) (*MediaRelay, error) {
	if logger == nil {
		return nil, shared.ErrNoLogger
	}
	if cfg == nil {
		return nil, shared.ErrNoConfig
	}
	if manager == nil {
		return nil, errors.New("no connection manager provided")
	}
	connectionID := uuid.NewString()
	return &MediaRelay{
		logger:       logger.With(zap.String("connection_id", connectionID)),
		cfg:          cfg,
		manager:      manager,
		connectionID: connectionID,
		queue:        newSendQueue(),
		state:        StateUninitialized,
	}, nil
}

// SetToolRegistry overrides the default tool set. Must be called before
// Connect.
func (r *MediaRelay) SetToolRegistry(registry *tools.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateStreaming || r.state == StateClosing || r.state == StateClosed {
		return shared.ErrRelayAlreadyStarted
	}
	r.toolReg = registry
	return nil
}

// Attach binds the downstream transport and performs admission control.
// shared.ErrConnectionLimit reports a refused admission; no partial state is
// left behind in that case.
func (r *MediaRelay) Attach(downstream ClientTransport, connType ConnectionType, callerID string) error {
	if downstream == nil {
		return shared.ErrRelayNotAttached
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateUninitialized {
		return shared.ErrRelayAlreadyStarted
	}
	r.state = StateRegistering
	if !r.manager.Register(r.connectionID, callerID, connType) {
		r.state = StateRejected
		return shared.ErrConnectionLimit
	}
	r.registered = true
	r.connectedAt = time.Now()
	r.downstream = downstream
	r.connType = connType
	r.callerID = callerID
	r.state = StateConnecting
	r.logger.Info("downstream transport attached",
		zap.String("type", string(connType)),
		zap.String("caller_id", orUnknown(callerID)),
	)
	return nil
}

// Connect dials the Voice Live API, sends the initial session configuration
// and response trigger, and starts the sender and receiver loops. A failure
// tears the relay down and is reported to the caller.
func (r *MediaRelay) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateConnecting {
		state := r.state
		r.mu.Unlock()
		if state == StateUninitialized {
			return shared.ErrRelayNotAttached
		}
		return shared.ErrRelayAlreadyStarted
	}
	r.mu.Unlock()

	client, err := Dial(ctx, r.logger, r.cfg)
	if err != nil {
		r.logger.Error("failed to connect to Voice Live API", err)
		r.teardown(StateFailed)
		return fmt.Errorf("connecting to Voice Live API: %w", err)
	}

	loopCtx, cancel := context.WithCancelCause(ctx)
	r.mu.Lock()
	r.client = client
	r.ctx = loopCtx
	r.cancel = cancel
	if r.toolReg == nil {
		r.toolReg = tools.DefaultRegistry(r.logger, r.SessionID)
	}
	registry := r.toolReg
	r.mu.Unlock()

	if err := client.SendJSON(sessionUpdateEvent(registry)); err != nil {
		r.logger.Error("sending session configuration", err)
		r.teardown(StateFailed)
		return fmt.Errorf("sending session configuration: %w", err)
	}
	trigger, err := responseCreateEvent()
	if err != nil {
		r.teardown(StateFailed)
		return fmt.Errorf("marshaling response trigger: %w", err)
	}
	if err := client.Send(trigger); err != nil {
		r.logger.Error("sending response trigger", err)
		r.teardown(StateFailed)
		return fmt.Errorf("sending response trigger: %w", err)
	}

	go r.receiverLoop()
	go r.senderLoop()

	r.mu.Lock()
	r.state = StateStreaming
	r.mu.Unlock()
	return nil
}

// senderLoop drains the outbound queue into the upstream transport in strict
// FIFO order, one message at a time.
func (r *MediaRelay) senderLoop() {
	for {
		msg, err := r.queue.Pop()
		if err != nil {
			r.logger.Debug("sender loop exiting", zap.NamedError("cause", err))
			return
		}
		if err := r.client.Send(msg); err != nil {
			if !errors.Is(err, shared.ErrRelayClosed) {
				r.logger.Error("sender loop error", err)
			}
			return
		}
	}
}

// receiverLoop decodes upstream events until the connection closes or errors.
func (r *MediaRelay) receiverLoop() {
	for {
		data, err := r.client.Read()
		if err != nil {
			if r.ctx != nil && context.Cause(r.ctx) != nil {
				r.logger.Debug("receiver loop exiting", zap.NamedError("cause", context.Cause(r.ctx)))
			} else {
				r.logger.Error("receiver loop error", err)
			}
			return
		}
		event, err := ParseServerEvent(data)
		if err != nil {
			r.logger.Warn("dropping malformed upstream message", zap.Error(err))
			continue
		}
		r.handleServerEvent(event)
	}
}

func (r *MediaRelay) handleServerEvent(event *ServerEvent) {
	switch event.Type {
	case ServerEventTypeSessionCreated:
		if event.Session != nil {
			r.setSessionID(event.Session.ID)
			r.logger.Info("session created", zap.String("session_id", event.Session.ID))
		}

	case ServerEventTypeInputAudioBufferCleared:
		r.logger.Info("input audio buffer cleared")

	case ServerEventTypeSpeechStarted:
		r.logger.Info("voice activity detected", zap.Int("audio_start_ms", event.AudioStartMs))
		r.stopAudio()

	case ServerEventTypeSpeechStopped:
		r.logger.Info("speech stopped", zap.Int("audio_end_ms", event.AudioEndMs))

	case ServerEventTypeInputTranscriptionCompleted:
		r.logger.Info("user transcript", zap.String("transcript", event.Transcript))
		r.appendTranscript(RoleUser, event.Transcript)

	case ServerEventTypeInputTranscriptionFailed:
		r.logger.Warn("input transcription failed", zap.Any("error", event.Error))

	case ServerEventTypeFunctionCallArgumentsDone:
		r.handleFunctionCall(event)

	case ServerEventTypeResponseDone:
		if event.Response != nil {
			r.logger.Info("response done",
				zap.String("response_id", event.Response.ID),
				zap.Any("status_details", event.Response.StatusDetails),
			)
		}

	case ServerEventTypeAudioTranscriptDone:
		r.logger.Info("assistant transcript", zap.String("transcript", event.Transcript))
		r.appendTranscript(RoleAssistant, event.Transcript)
		r.sendTranscription(event.Transcript)

	case ServerEventTypeAudioDelta:
		r.forwardAudioDelta(event.Delta)

	case ServerEventTypeError:
		r.logger.Error("Voice Live reported error", nil, zap.Any("error", event.Error))

	default:
		r.logger.Debug("unhandled event", zap.String("type", string(event.Type)))
	}
}

// handleFunctionCall dispatches a remote-requested function call and replies
// with a function output followed by a response trigger. Both messages are
// enqueued in one step so no other producer can interleave between them.
func (r *MediaRelay) handleFunctionCall(event *ServerEvent) {
	logger := r.logger.With(zap.String("tool", event.Name), zap.String("call_id", event.CallID))
	logger.Info("function call received")

	args, err := event.DecodeArguments()
	if err != nil {
		logger.Error("decoding function call arguments", err)
		return
	}

	result, err := r.toolRegistry().Execute(r.ctx, event.Name, args)
	switch {
	case err == nil:
		logger.Info("tool executed successfully")
	case errors.Is(err, shared.ErrToolNotFound):
		logger.Error("tool not found", err)
		result = map[string]any{
			"success": false,
			"message": "Tool not found: " + event.Name,
		}
	default:
		// Synthesized failure output so the conversation never stalls on a
		// broken tool.
		logger.Error("tool execution failed", err)
		result = map[string]any{
			"success": false,
			"message": "Tool execution failed: " + event.Name,
		}
	}

	output, err := sonic.Marshal(result)
	if err != nil {
		logger.Error("marshaling tool result", err)
		return
	}
	outputMsg, err := functionOutputEvent(event.CallID, output)
	if err != nil {
		logger.Error("marshaling function output event", err)
		return
	}
	trigger, err := responseCreateEvent()
	if err != nil {
		logger.Error("marshaling response trigger", err)
		return
	}
	if err := r.queue.Push(outputMsg, trigger); err != nil {
		logger.Warn("dropping function output", zap.Error(err))
	}
}

// EnqueueAudio queues an already base64-encoded audio frame for the upstream
// service.
func (r *MediaRelay) EnqueueAudio(audioB64 string) error {
	msg, err := appendAudioEvent(audioB64)
	if err != nil {
		return fmt.Errorf("marshaling audio append event: %w", err)
	}
	return r.queue.Push(msg)
}

// WebAudio forwards raw audio bytes from a web client.
func (r *MediaRelay) WebAudio(audio []byte) error {
	return r.EnqueueAudio(base64.StdEncoding.EncodeToString(audio))
}

// ClientAudio forwards a telephony audio frame. Silent frames are dropped;
// malformed frames are reported and dropped.
func (r *MediaRelay) ClientAudio(data []byte) error {
	frame := new(clientAudioFrame)
	if err := sonic.Unmarshal(data, frame); err != nil {
		return fmt.Errorf("unmarshaling client audio frame: %w", err)
	}
	if frame.Kind != kindAudioData {
		return nil
	}
	if frame.AudioData.Silent == nil || *frame.AudioData.Silent {
		return nil
	}
	return r.EnqueueAudio(frame.AudioData.Data)
}

func (r *MediaRelay) sendDownstream(messageType int, data []byte) {
	if err := r.downstream.WriteMessage(messageType, data); err != nil {
		r.logger.Error("failed to send message downstream", err)
	}
}

func (r *MediaRelay) sendEnvelope(envelope map[string]any) {
	data, err := sonic.Marshal(envelope)
	if err != nil {
		r.logger.Error("marshaling downstream envelope", err)
		return
	}
	r.sendDownstream(websocket.TextMessage, data)
}

// stopAudio signals the client to stop any in-progress playback (barge-in).
func (r *MediaRelay) stopAudio() {
	r.sendEnvelope(map[string]any{
		"Kind":      kindStopAudio,
		"AudioData": nil,
		"StopAudio": map[string]any{},
	})
}

// sendTranscription delivers a finalized assistant utterance downstream.
func (r *MediaRelay) sendTranscription(text string) {
	r.sendEnvelope(map[string]any{
		"Kind": kindTranscription,
		"Text": text,
	})
}

// forwardAudioDelta translates one upstream audio chunk per the connection
// type: raw binary for web clients, base64 envelope for telephony.
func (r *MediaRelay) forwardAudioDelta(deltaB64 string) {
	if r.connType == ConnectionTypeWeb {
		audio, err := base64.StdEncoding.DecodeString(deltaB64)
		if err != nil {
			r.logger.Warn("dropping undecodable audio delta", zap.Error(err))
			return
		}
		r.sendDownstream(websocket.BinaryMessage, audio)
		return
	}
	r.sendEnvelope(map[string]any{
		"Kind":      kindAudioData,
		"AudioData": map[string]any{"Data": deltaB64},
		"StopAudio": nil,
	})
}

func (r *MediaRelay) appendTranscript(role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = append(r.transcript, TranscriptEntry{Role: role, Content: content})
}

// Transcript returns a snapshot of the conversation so far.
func (r *MediaRelay) Transcript() []TranscriptEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]TranscriptEntry, len(r.transcript))
	copy(snapshot, r.transcript)
	return snapshot
}

func (r *MediaRelay) setSessionID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionID = id
}

// SessionID is the id assigned by the upstream service, empty until the
// session-created notification arrives.
func (r *MediaRelay) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *MediaRelay) ConnectionID() string {
	return r.connectionID
}

func (r *MediaRelay) State() RelayState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *MediaRelay) Registered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registered
}

func (r *MediaRelay) toolRegistry() *tools.Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.toolReg
}

// Cleanup closes the upstream transport, cancels the sender loop, and
// unregisters the connection. Safe to call more than once.
func (r *MediaRelay) Cleanup() {
	r.teardown(StateClosed)
}

func (r *MediaRelay) teardown(final RelayState) {
	r.mu.Lock()
	if r.state == StateClosed || r.state == StateFailed {
		r.mu.Unlock()
		return
	}
	r.state = StateClosing
	client := r.client
	cancel := r.cancel
	r.mu.Unlock()

	if client != nil {
		if err := client.Close(); err != nil {
			r.logger.Error("closing Voice Live connection", err)
		}
	}
	r.queue.Close()
	if cancel != nil {
		cancel(shared.ErrRelayClosed)
	}

	r.mu.Lock()
	if r.registered {
		r.manager.Unregister(r.connectionID)
		r.registered = false
	}
	connectedAt := r.connectedAt
	callerID := r.callerID
	r.state = final
	r.mu.Unlock()

	if connectedAt.IsZero() {
		r.logger.Info("cleanup completed")
		return
	}
	r.logger.Info("cleanup completed",
		zap.String("caller_id", orUnknown(callerID)),
		zap.Duration("call_duration", time.Since(connectedAt)),
	)
}
