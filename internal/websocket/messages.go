package websocket

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypePhrase   MessageType = "phrase"
	MessageTypeAudio    MessageType = "audio"
	MessageTypePing     MessageType = "ping"
	MessageTypePong     MessageType = "pong"
	MessageTypeDispatch MessageType = "dispatch"
	MessageTypeError    MessageType = "error"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// PhraseMessage asks for the signs of typed text
type PhraseMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// AudioMessage carries one recorded utterance
type AudioMessage struct {
	BaseMessage
	AudioData  string `json:"audio_data"` // base64 encoded
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language,omitempty"`
}

// Audio returns the decoded audio payload
func (m *AudioMessage) Audio() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.AudioData)
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// SignClip is one animation the client should play
type SignClip struct {
	Phrase string `json:"phrase"`
	File   string `json:"file"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// DispatchMessage tells the client which clips to play, in order
type DispatchMessage struct {
	BaseMessage
	ReplyTo   string     `json:"reply_to,omitempty"`
	Text      string     `json:"text"`
	Clips     []SignClip `json:"clips"`
	Unmatched []string   `json:"unmatched"`
	Message   string     `json:"message,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	ReplyTo string `json:"reply_to,omitempty"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses and validates an incoming message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypePhrase:
		var msg PhraseMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid phrase message: %w", err)
		}
		if strings.TrimSpace(msg.Text) == "" {
			return nil, fmt.Errorf("text is required")
		}
		return &msg, nil

	case MessageTypeAudio:
		var msg AudioMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid audio message: %w", err)
		}
		if err := v.validateAudio(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateAudio validates audio message fields
func (v *MessageValidator) validateAudio(msg *AudioMessage) error {
	if msg.AudioData == "" {
		return fmt.Errorf("audio_data is required")
	}
	if _, err := msg.Audio(); err != nil {
		return fmt.Errorf("audio_data must be base64: %w", err)
	}
	if msg.SampleRate < 8000 || msg.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}

	validEncodings := map[string]bool{
		"LINEAR16": true, "WAV": true, "FLAC": true, "MULAW": true, "OGG_OPUS": true, "WEBM_OPUS": true,
	}
	if !validEncodings[strings.ToUpper(msg.Encoding)] {
		return fmt.Errorf("encoding must be one of: LINEAR16, WAV, FLAC, MULAW, OGG_OPUS, WEBM_OPUS")
	}

	return nil
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{Type: t, Timestamp: time.Now().Format(time.RFC3339)}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message, details string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
		Details:     details,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}
