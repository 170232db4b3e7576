package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/collabworld/pieces-api/board"
)

const sessionBuffer = 64

// session is one live connection as the broker sees it: an id and a
// buffered outbound channel drained by the connection's write loop.
type session struct {
	id  string
	out chan []byte

	// Set when the client presented a valid resume token on connect.
	resumeCount int
	hasResume   bool
}

type inboundAction struct {
	sessionID string
	action    board.Action
}

// Broker owns the piece store and session tracker and is the only goroutine
// that touches them. Registration, disconnection and every piece action flow
// through its channels, so each action is a serialized read-modify-write.
type Broker struct {
	Actions    chan inboundAction
	register   chan *session
	unregister chan *session
	snapshots  chan chan []board.Piece

	sessions map[string]*session
	store    *PieceStore
	tracker  *SessionTracker
	router   *ActionRouter
}

func NewBroker(store *PieceStore, tracker *SessionTracker) *Broker {
	broker := &Broker{
		Actions:    make(chan inboundAction, 1),
		register:   make(chan *session),
		unregister: make(chan *session),
		snapshots:  make(chan chan []board.Piece),
		sessions:   make(map[string]*session),
		store:      store,
		tracker:    tracker,
	}
	broker.router = NewActionRouter(store, tracker)

	go broker.listen(context.Background())

	return broker
}

// Snapshot returns the current piece list, read on the broker goroutine.
func (b *Broker) Snapshot() []board.Piece {
	reply := make(chan []board.Piece, 1)
	b.snapshots <- reply
	return <-reply
}

func (b *Broker) listen(ctx context.Context) {
	for {
		select {
		case s := <-b.register:
			b.addSession(s)

		case s := <-b.unregister:
			if _, ok := b.sessions[s.id]; !ok {
				continue
			}
			delete(b.sessions, s.id)
			close(s.out)
			b.tracker.Release(s.id)
			log.Printf("removed session %s, %d connected", s.id, len(b.sessions))

		case in := <-b.Actions:
			b.handleAction(ctx, in)

		case reply := <-b.snapshots:
			reply <- b.store.GetAll()
		}
	}
}

func (b *Broker) addSession(s *session) {
	b.sessions[s.id] = s
	if s.hasResume {
		b.tracker.Restore(s.id, s.resumeCount)
		log.Printf("session %s resumed with %d pieces created", s.id, s.resumeCount)
	}

	token, err := b.tracker.IssueToken(s.id)
	if err != nil {
		log.Printf("failed to issue token for %s: %v", s.id, err)
	}

	b.sendTo(s, &board.Message{Type: board.TypeConnected, SessionID: s.id, Token: token})
	b.sendTo(s, &board.Message{Type: board.TypeInitialize, Pieces: b.store.GetAll()})
	log.Printf("session %s added, %d connected", s.id, len(b.sessions))
}

func (b *Broker) handleAction(ctx context.Context, in inboundAction) {
	// A read loop can race its own disconnect; actions from a session that
	// is already gone are dropped so its quota stays released.
	if _, ok := b.sessions[in.sessionID]; !ok {
		return
	}

	result := b.router.Route(ctx, in.sessionID, in.action)

	if result.Reply != nil {
		if s, ok := b.sessions[in.sessionID]; ok {
			b.sendTo(s, result.Reply)
		}
	}

	if result.Broadcast == nil {
		return
	}
	b.broadcast(result.Broadcast)

	// After a successful add the origin's quota usage changed, so hand it a
	// refreshed resume token.
	if result.Broadcast.Type == board.TypePieceCreated {
		s, ok := b.sessions[in.sessionID]
		if !ok {
			return
		}
		token, err := b.tracker.IssueToken(s.id)
		if err != nil {
			log.Printf("failed to refresh token for %s: %v", s.id, err)
			return
		}
		b.sendTo(s, &board.Message{Type: board.TypeConnected, SessionID: s.id, Token: token})
	}
}

// broadcast marshals once and fans out to every session, originator
// included.
func (b *Broker) broadcast(msg *board.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal %s broadcast: %v", msg.Type, err)
		return
	}
	for _, s := range b.sessions {
		b.send(s, data)
	}
}

func (b *Broker) sendTo(s *session, msg *board.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal %s message: %v", msg.Type, err)
		return
	}
	b.send(s, data)
}

// send queues data for the session's write loop. A session that cannot keep
// up loses its connection rather than stalling the broker.
func (b *Broker) send(s *session, data []byte) {
	select {
	case s.out <- data:
	default:
		log.Printf("session %s write buffer full, dropping connection", s.id)
		delete(b.sessions, s.id)
		close(s.out)
		b.tracker.Release(s.id)
	}
}
