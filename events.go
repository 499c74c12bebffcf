package voicelive

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

type EventType string

type ServerEventType EventType

type ClientEventType EventType

// Server event types handled by the relay. Anything else coming off the wire
// is logged and ignored.
const (
	ServerEventTypeError                       ServerEventType = "error"
	ServerEventTypeSessionCreated              ServerEventType = "session.created"
	ServerEventTypeInputAudioBufferCleared     ServerEventType = "input_audio_buffer.cleared"
	ServerEventTypeSpeechStarted               ServerEventType = "input_audio_buffer.speech_started"
	ServerEventTypeSpeechStopped               ServerEventType = "input_audio_buffer.speech_stopped"
	ServerEventTypeInputTranscriptionCompleted ServerEventType = "conversation.item.input_audio_transcription.completed"
	ServerEventTypeInputTranscriptionFailed    ServerEventType = "conversation.item.input_audio_transcription.failed"
	ServerEventTypeFunctionCallArgumentsDone   ServerEventType = "response.function_call_arguments.done"
	ServerEventTypeResponseDone                ServerEventType = "response.done"
	ServerEventTypeAudioTranscriptDone         ServerEventType = "response.audio_transcript.done"
	ServerEventTypeAudioDelta                  ServerEventType = "response.audio.delta"
)

// Client event types
const (
	ClientEventTypeSessionUpdate          ClientEventType = "session.update"
	ClientEventTypeInputAudioBufferAppend ClientEventType = "input_audio_buffer.append"
	ClientEventTypeConversationItemCreate ClientEventType = "conversation.item.create"
	ClientEventTypeResponseCreate         ClientEventType = "response.create"
)

// SessionInfo is the session object carried by session.created.
type SessionInfo struct {
	ID string `json:"id"`
}

// ResponseInfo is the response object carried by response.done.
type ResponseInfo struct {
	ID            string         `json:"id"`
	StatusDetails map[string]any `json:"status_details"`
}

// ServerEvent is one inbound Voice Live event. Only the fields relevant to
// the event's type are populated; the rest stay zero.
type ServerEvent struct {
	Type         ServerEventType `json:"type"`
	EventID      string          `json:"event_id"`
	Session      *SessionInfo    `json:"session"`
	AudioStartMs int             `json:"audio_start_ms"`
	AudioEndMs   int             `json:"audio_end_ms"`
	Transcript   string          `json:"transcript"`
	Delta        string          `json:"delta"`
	CallID       string          `json:"call_id"`
	Name         string          `json:"name"`
	Arguments    json.RawMessage `json:"arguments"`
	Response     *ResponseInfo   `json:"response"`
	Error        map[string]any  `json:"error"`
}

// ParseServerEvent decodes a raw Voice Live message. Unrecognized types are
// not an error here; the relay's dispatch handles them with its default arm.
func ParseServerEvent(data []byte) (*ServerEvent, error) {
	event := new(ServerEvent)
	if err := sonic.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("unmarshaling server event: %w", err)
	}
	if event.Type == "" {
		return nil, errors.New("missing event type")
	}
	return event, nil
}

// DecodeArguments returns the function-call arguments as a map. The service
// sends them either as a JSON object or as a JSON-encoded string holding one;
// both shapes are accepted.
func (e *ServerEvent) DecodeArguments() (map[string]any, error) {
	if len(e.Arguments) == 0 {
		return map[string]any{}, nil
	}
	raw := e.Arguments
	var encoded string
	if err := sonic.Unmarshal(raw, &encoded); err == nil {
		raw = []byte(encoded)
	}
	args := map[string]any{}
	if err := sonic.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("unmarshaling function call arguments: %w", err)
	}
	return args, nil
}

func appendAudioEvent(audioB64 string) ([]byte, error) {
	return sonic.Marshal(map[string]any{
		"type":  ClientEventTypeInputAudioBufferAppend,
		"audio": audioB64,
	})
}

func responseCreateEvent() ([]byte, error) {
	return sonic.Marshal(map[string]any{
		"type": ClientEventTypeResponseCreate,
	})
}

// functionOutputEvent wraps a serialized tool result as a conversation item
// referencing the originating call.
func functionOutputEvent(callID string, output []byte) ([]byte, error) {
	return sonic.Marshal(map[string]any{
		"type": ClientEventTypeConversationItemCreate,
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  string(output),
		},
	})
}
