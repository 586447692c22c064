package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain/repositories"
)

const replyTimeout = 15 * time.Second

// SessionError is an error message returned by the server
type SessionError struct {
	Code    string
	Message string
	Details string
}

func (e *SessionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// SessionClient speaks the sign session protocol from the client side.
// Requests are sequential; it is not safe for concurrent use.
type SessionClient struct {
	conn   *websocket.Conn
	logger *zap.Logger
}

// DialSession connects to a sign session endpoint such as
// ws://localhost:8080/ws.
func DialSession(ctx context.Context, url string, logger *zap.Logger) (*SessionClient, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket connection failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket connection failed: %w", err)
	}
	return &SessionClient{conn: conn, logger: logger}, nil
}

// SendPhrase asks the server for the signs of text
func (s *SessionClient) SendPhrase(ctx context.Context, text string) (*DispatchMessage, error) {
	msg := PhraseMessage{BaseMessage: s.newRequest(MessageTypePhrase), Text: text}
	return s.request(ctx, msg.MessageID, msg)
}

// SendAudio uploads one utterance for recognition and dispatch
func (s *SessionClient) SendAudio(ctx context.Context, audio []byte, cfg repositories.AudioConfig) (*DispatchMessage, error) {
	msg := AudioMessage{
		BaseMessage: s.newRequest(MessageTypeAudio),
		AudioData:   base64.StdEncoding.EncodeToString(audio),
		SampleRate:  cfg.SampleRate,
		Encoding:    cfg.Encoding,
		Language:    cfg.Language,
	}
	return s.request(ctx, msg.MessageID, msg)
}

// Ping sends an application-level ping and waits for the pong
func (s *SessionClient) Ping(ctx context.Context) error {
	msg := PingMessage{BaseMessage: s.newRequest(MessageTypePing), Data: "ping"}
	if err := s.write(msg); err != nil {
		return err
	}
	for {
		base, data, err := s.read(ctx)
		if err != nil {
			return err
		}
		switch base.Type {
		case MessageTypePong:
			return nil
		case MessageTypeError:
			return decodeSessionError(data)
		}
	}
}

// Close sends a close frame and closes the connection
func (s *SessionClient) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return s.conn.Close()
}

func (s *SessionClient) newRequest(t MessageType) BaseMessage {
	b := newBase(t)
	b.MessageID = uuid.NewString()
	return b
}

// request writes v and waits for the dispatch or error answering id.
// Unrelated messages are skipped.
func (s *SessionClient) request(ctx context.Context, id string, v interface{}) (*DispatchMessage, error) {
	if err := s.write(v); err != nil {
		return nil, err
	}
	for {
		base, data, err := s.read(ctx)
		if err != nil {
			return nil, err
		}
		switch base.Type {
		case MessageTypeDispatch:
			var out DispatchMessage
			if err := json.Unmarshal(data, &out); err != nil {
				return nil, fmt.Errorf("invalid dispatch message: %w", err)
			}
			if out.ReplyTo == id {
				return &out, nil
			}
		case MessageTypeError:
			var e ErrorMessage
			if err := json.Unmarshal(data, &e); err != nil {
				return nil, fmt.Errorf("invalid error message: %w", err)
			}
			// validation failures are not tagged with the request id
			if e.ReplyTo == id || e.ReplyTo == "" {
				return nil, &SessionError{Code: e.Code, Message: e.Message, Details: e.Details}
			}
		default:
			s.logger.Debug("Skipping message", zap.String("type", string(base.Type)))
		}
	}
}

func (s *SessionClient) write(v interface{}) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *SessionClient) read(ctx context.Context) (BaseMessage, []byte, error) {
	deadline := time.Now().Add(replyTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	s.conn.SetReadDeadline(deadline)

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return BaseMessage{}, nil, fmt.Errorf("failed to read response: %w", err)
	}
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return BaseMessage{}, nil, fmt.Errorf("invalid JSON from server: %w", err)
	}
	return base, data, nil
}

func decodeSessionError(data []byte) error {
	var e ErrorMessage
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("invalid error message: %w", err)
	}
	return &SessionError{Code: e.Code, Message: e.Message, Details: e.Details}
}
