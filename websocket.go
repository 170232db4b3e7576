package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/segmentio/ksuid"

	"github.com/collabworld/pieces-api/board"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Websocket upgrades connections and bridges them to the broker: one reader
// loop feeding piece actions in, one writer loop draining the session's
// outbound channel.
type Websocket struct {
	broker  *Broker
	tracker *SessionTracker
}

func NewWebsocket(broker *Broker, tracker *SessionTracker) *Websocket {
	return &Websocket{broker: broker, tracker: tracker}
}

func (w *Websocket) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(rw, req, nil)
	if err != nil {
		log.Println("failed to upgrade connection:", err)
		return
	}

	s := &session{
		id:  "session-" + ksuid.New().String(),
		out: make(chan []byte, sessionBuffer),
	}

	if token := req.URL.Query().Get("token"); token != "" {
		count, err := w.tracker.ParseToken(token)
		if err != nil {
			log.Printf("ignoring bad resume token from %s: %v", req.RemoteAddr, err)
		} else {
			s.resumeCount = count
			s.hasResume = true
		}
	}

	w.broker.register <- s

	go w.writeLoop(conn, s)
	w.readLoop(conn, s)

	w.broker.unregister <- s
	log.Printf("closing session %s", s.id)
}

func (w *Websocket) readLoop(conn *websocket.Conn, s *session) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("websocket read error for %s: %v", s.id, err)
			return
		}

		var msg board.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("dropping malformed message from %s: %v", s.id, err)
			continue
		}
		if msg.Type != board.TypePieceAction || msg.Action == nil {
			continue
		}

		w.broker.Actions <- inboundAction{sessionID: s.id, action: *msg.Action}
	}
}

func (w *Websocket) writeLoop(conn *websocket.Conn, s *session) {
	defer conn.Close()
	for data := range s.out {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("websocket write error for %s: %v", s.id, err)
			return
		}
	}
}
