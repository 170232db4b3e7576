package client

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/collabworld/pieces-api/board"
)

// Handler receives the server's messages as they arrive on the read loop.
type Handler interface {
	Connected(sessionID, token string)
	Initialized(pieces []board.Piece)
	PieceCreated(piece board.Piece)
	PieceUpdated(piece board.Piece)
	LimitReached()
}

// Conn is the client side of the wire protocol: it dials the server,
// dispatches broadcasts to a Handler, and sends piece actions.
type Conn struct {
	ws      *websocket.Conn
	handler Handler

	mu        sync.Mutex
	sessionID string
	token     string

	done chan struct{}
}

// Dial connects to the server's websocket endpoint. resumeToken may be
// empty; when set, the server restores the quota usage it carries.
func Dial(rawURL, resumeToken string, handler Handler) (*Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if resumeToken != "" {
		q := u.Query()
		q.Set("token", resumeToken)
		u.RawQuery = q.Encode()
	}

	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	c := &Conn{ws: ws, handler: handler, done: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

// SessionID returns the id assigned by the server, empty until the
// connected message arrives.
func (c *Conn) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Token returns the latest resume token issued by the server.
func (c *Conn) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Send submits an action to the server, filling in the origin session.
func (c *Conn) Send(action board.Action) error {
	action.OriginSession = c.SessionID()
	msg := board.Message{Type: board.TypePieceAction, Action: &action}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close tears the connection down; the read loop exits on its own.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// Done is closed when the read loop has exited.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg board.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("dropping malformed server message: %v", err)
			continue
		}

		switch msg.Type {
		case board.TypeConnected:
			c.mu.Lock()
			if msg.SessionID != "" {
				c.sessionID = msg.SessionID
			}
			c.token = msg.Token
			c.mu.Unlock()
			c.handler.Connected(msg.SessionID, msg.Token)
		case board.TypeInitialize:
			c.handler.Initialized(msg.Pieces)
		case board.TypePieceCreated:
			if msg.Piece != nil {
				c.handler.PieceCreated(*msg.Piece)
			}
		case board.TypePieceUpdated:
			if msg.Piece != nil {
				c.handler.PieceUpdated(*msg.Piece)
			}
		case board.TypeLimitReached:
			c.handler.LimitReached()
		}
	}
}
