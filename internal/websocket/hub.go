package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/domain"
	"github.com/ketoprak/askandsign/domain/repositories"
	"github.com/ketoprak/askandsign/internal/playback"
	"github.com/ketoprak/askandsign/internal/signs"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. A 5s LINEAR16 utterance at
	// 48kHz is about 640KB once base64 encoded.
	maxMessageSize = 1024 * 1024

	// Time allowed for one recognition request.
	recognizeTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active sign sessions
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{} // closed when Run returns
	mu         sync.RWMutex

	table       *signs.Table
	stt         repositories.SpeechToText
	assetPrefix string
	validator   *MessageValidator

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub. stt may be nil, in which case audio
// messages are answered with an error. assetPrefix is the URL path the
// GIFs are served under.
func NewHub(table *signs.Table, stt repositories.SpeechToText, assetPrefix string, logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		stopped:     make(chan struct{}),
		table:       table,
		stt:         stt,
		assetPrefix: strings.TrimSuffix(assetPrefix, "/"),
		validator:   NewMessageValidator(),
		logger:      logger,
	}
}

// Run starts the hub's main loop. When ctx is done every connection is
// closed and Run returns once all clients have unregistered.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	done := ctx.Done()
	stopping := false

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.id))
			if stopping {
				client.conn.Close()
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			remaining := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))
			if stopping && remaining == 0 {
				return
			}

		case <-done:
			done = nil
			stopping = true
			h.mu.RLock()
			remaining := len(h.clients)
			for _, client := range h.clients {
				client.conn.Close()
			}
			h.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Table returns the phrase table sessions resolve against
func (h *Hub) Table() *signs.Table { return h.table }

// AssetURL returns the URL a client fetches file from
func (h *Hub) AssetURL(file string) string {
	return h.assetPrefix + "/" + url.PathEscape(file)
}

// Clips converts a lookup result into the clips a client should play
func (h *Hub) Clips(res signs.Result) []SignClip {
	clips := []SignClip{}
	for _, m := range res.Matches() {
		clips = append(clips, SignClip{
			Phrase: m.Phrase,
			File:   m.File,
			Title:  playback.WindowTitle(m.File),
			URL:    h.AssetURL(m.File),
		})
	}
	return clips
}

// Translate resolves text into a dispatch message
func (h *Hub) Translate(text string) *DispatchMessage {
	res := h.table.Lookup(text)
	msg := &DispatchMessage{
		BaseMessage: newBase(MessageTypeDispatch),
		Text:        text,
		Clips:       h.Clips(res),
		Unmatched:   res.Unmatched(),
	}
	if res.Empty() {
		msg.Message = fmt.Sprintf("No sign language content found for: '%s'. Available phrases: %s",
			text, strings.Join(h.table.Phrases(), ", "))
	}
	return msg
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan WriteData
	id     string
	logger *zap.Logger
}

// HandleWebSocket upgrades the request and starts a sign session
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	select {
	case <-hub.stopped:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server is shutting down")
	default:
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	id := uuid.NewString()
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 256),
		id:     id,
		logger: logger.With(zap.String("clientID", id)),
	}

	select {
	case hub.register <- client:
	case <-hub.stopped:
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn("Received unsupported message type", zap.Int("type", messageType))
			c.reply(CreateErrorMessage("invalid_message", "only JSON text messages are supported", ""))
			continue
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage handles one client message
func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.reply(CreateErrorMessage("invalid_message", "message rejected", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *PhraseMessage:
		c.handlePhrase(msg)
	case *AudioMessage:
		c.handleAudio(msg)
	case *PingMessage:
		c.reply(CreatePongMessage(msg.Data))
	}
}

func (c *Client) handlePhrase(msg *PhraseMessage) {
	out := c.hub.Translate(msg.Text)
	out.ReplyTo = msg.MessageID
	c.logger.Info("Phrase translated",
		zap.String("text", msg.Text),
		zap.Int("clips", len(out.Clips)))
	c.reply(out)
}

func (c *Client) handleAudio(msg *AudioMessage) {
	if c.hub.stt == nil {
		e := CreateErrorMessage(string(domain.KindRecognition), "speech recognition is not configured", "")
		e.ReplyTo = msg.MessageID
		c.reply(e)
		return
	}

	audio, _ := msg.Audio()
	ctx, cancel := context.WithTimeout(context.Background(), recognizeTimeout)
	defer cancel()

	text, err := c.hub.stt.TranscribeAudio(ctx, audio, repositories.AudioConfig{
		SampleRate: msg.SampleRate,
		Encoding:   msg.Encoding,
		Language:   msg.Language,
	})
	if err != nil {
		c.logger.Warn("Recognition failed", zap.Error(err))
		code := string(domain.KindOf(err))
		if code == "" {
			code = string(domain.KindRecognition)
		}
		e := CreateErrorMessage(code, "could not recognize speech", err.Error())
		e.ReplyTo = msg.MessageID
		c.reply(e)
		return
	}

	out := c.hub.Translate(text)
	out.ReplyTo = msg.MessageID
	c.logger.Info("Speech translated",
		zap.String("text", text),
		zap.Int("clips", len(out.Clips)))
	c.reply(out)
}

func (c *Client) reply(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to encode reply", zap.Error(err))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Send buffer full, dropping reply")
	}
}
