package main

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/collabworld/pieces-api/board"
)

// ActionRouter validates incoming actions and applies them to the piece
// store. It is driven exclusively by the broker goroutine, which serializes
// every action end to end.
type ActionRouter struct {
	store    *PieceStore
	sessions *SessionTracker

	// Cyclic cursor deciding the next model kind, so catalog assignment
	// stays deterministic across concurrent adds.
	modelCursor int
}

// RouteResult is what the broker should do after an action was handled.
type RouteResult struct {
	// Broadcast goes to every session, originator included.
	Broadcast *board.Message
	// Reply goes to the originating session only.
	Reply *board.Message
}

func NewActionRouter(store *PieceStore, sessions *SessionTracker) *ActionRouter {
	return &ActionRouter{store: store, sessions: sessions}
}

// Route applies one action. Unknown kinds and stale targets are dropped
// without error; only quota rejection produces a reply.
func (r *ActionRouter) Route(ctx context.Context, sessionID string, action board.Action) RouteResult {
	action.OriginSession = sessionID

	switch action.Kind {
	case board.ActionAdd:
		return r.routeAdd(ctx, sessionID, action)
	case board.ActionMove, board.ActionRotate:
		return r.routeUpdate(ctx, sessionID, action)
	default:
		log.Printf("dropping action with unknown kind %q from %s", action.Kind, sessionID)
		return RouteResult{}
	}
}

func (r *ActionRouter) routeAdd(ctx context.Context, sessionID string, action board.Action) RouteResult {
	if !r.sessions.TryReserve(sessionID) {
		log.Printf("session %s hit the piece limit", sessionID)
		return RouteResult{Reply: &board.Message{Type: board.TypeLimitReached}}
	}

	id := action.PieceRef
	if id == "" {
		id = "piece-" + ksuid.New().String()
	} else if _, exists := r.store.Find(id); exists {
		// Honoring a duplicate id would overwrite the existing piece, so
		// the proposed id is discarded in favor of a fresh one.
		log.Printf("proposed id %s already exists, assigning a new one for %s", id, sessionID)
		id = "piece-" + ksuid.New().String()
	}

	kind := r.modelCursor
	r.modelCursor = (r.modelCursor + 1) % board.CatalogSize()

	color := action.Payload.Color
	if color == "" {
		color = board.ColorFor(kind)
	}

	piece := board.Piece{
		ID:             id,
		ModelKind:      kind,
		Color:          color,
		LastModifiedBy: sessionID,
		LastModifiedAt: r.stamp(board.Piece{}),
	}
	if action.Payload.Position != nil {
		piece.Position = *action.Payload.Position
	}
	if action.Payload.Rotation != nil {
		piece.Rotation = *action.Payload.Rotation
	}

	r.store.Upsert(ctx, piece)
	r.store.AppendAction(ctx, action)

	return RouteResult{Broadcast: &board.Message{Type: board.TypePieceCreated, Piece: &piece}}
}

func (r *ActionRouter) routeUpdate(ctx context.Context, sessionID string, action board.Action) RouteResult {
	if !r.sessions.Allow(sessionID) {
		log.Printf("rate limiting %s actions from %s", action.Kind, sessionID)
		return RouteResult{}
	}

	piece, ok := r.store.Find(action.PieceRef)
	if !ok {
		// Benign race: an update can outrun the creation broadcast.
		log.Printf("dropping %s for unknown piece %s", action.Kind, action.PieceRef)
		return RouteResult{}
	}

	if action.Payload.Position != nil {
		piece.Position = *action.Payload.Position
	}
	if action.Payload.Rotation != nil {
		piece.Rotation = *action.Payload.Rotation
	}
	piece.LastModifiedBy = sessionID
	piece.LastModifiedAt = r.stamp(piece)

	r.store.Upsert(ctx, piece)
	r.store.AppendAction(ctx, action)

	return RouteResult{Broadcast: &board.Message{Type: board.TypePieceUpdated, Piece: &piece}}
}

// stamp returns a provenance timestamp strictly greater than the piece's
// previous one, even when two actions land within the same millisecond.
func (r *ActionRouter) stamp(prev board.Piece) int64 {
	now := time.Now().UnixMilli()
	if now <= prev.LastModifiedAt {
		return prev.LastModifiedAt + 1
	}
	return now
}
