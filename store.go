package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/collabworld/pieces-api/board"
)

const (
	pieceKeyPrefix = "piece:"
	actionLogKey   = "actions"
)

// PieceStore is the authoritative table of pieces. All mutation is funneled
// through the broker goroutine, so the store itself carries no lock. When a
// redis client is attached every upsert is mirrored to a durable record and
// accepted actions are appended to a log list.
type PieceStore struct {
	pieces map[string]board.Piece
	order  []string
	rdb    *redis.Client
}

// NewPieceStore creates an empty store. rdb may be nil for memory-only
// operation.
func NewPieceStore(rdb *redis.Client) *PieceStore {
	return &PieceStore{
		pieces: make(map[string]board.Piece),
		rdb:    rdb,
	}
}

// Load restores the mirrored pieces from redis. A nil redis client makes
// this a no-op.
func (s *PieceStore) Load(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	iter := s.rdb.Scan(ctx, 0, pieceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			return fmt.Errorf("load %s: %w", iter.Val(), err)
		}
		var piece board.Piece
		if err := json.Unmarshal(data, &piece); err != nil {
			return fmt.Errorf("decode %s: %w", iter.Val(), err)
		}
		s.put(piece)
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan pieces: %w", err)
	}

	log.Printf("loaded %d pieces from redis", len(s.pieces))
	return nil
}

// Seed inserts one static template piece per catalog color when the store is
// empty, matching the board every fresh deployment starts with.
func (s *PieceStore) Seed(ctx context.Context) {
	if len(s.pieces) > 0 {
		return
	}

	now := time.Now().UnixMilli()
	for i, color := range board.CatalogColors {
		s.Upsert(ctx, board.Piece{
			ID:             fmt.Sprintf("template-%d", i),
			ModelKind:      i,
			Color:          color,
			IsStatic:       true,
			LastModifiedBy: "system",
			LastModifiedAt: now,
		})
	}
	log.Printf("seeded %d template pieces", len(board.CatalogColors))
}

// GetAll returns every piece in insertion order.
func (s *PieceStore) GetAll() []board.Piece {
	all := make([]board.Piece, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.pieces[id])
	}
	return all
}

// Find looks a piece up by id.
func (s *PieceStore) Find(id string) (board.Piece, bool) {
	piece, ok := s.pieces[id]
	return piece, ok
}

// Len returns the number of stored pieces.
func (s *PieceStore) Len() int { return len(s.pieces) }

// Upsert inserts or replaces a piece and mirrors it to redis when attached.
func (s *PieceStore) Upsert(ctx context.Context, piece board.Piece) {
	s.put(piece)

	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(piece)
	if err != nil {
		log.Printf("failed to marshal piece %s: %v", piece.ID, err)
		return
	}
	if err := s.rdb.Set(ctx, pieceKeyPrefix+piece.ID, data, 0).Err(); err != nil {
		log.Printf("failed to mirror piece %s: %v", piece.ID, err)
	}
}

// AppendAction adds an accepted action to the durable append-only log.
func (s *PieceStore) AppendAction(ctx context.Context, action board.Action) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(action)
	if err != nil {
		log.Printf("failed to marshal action for %s: %v", action.PieceRef, err)
		return
	}
	if err := s.rdb.RPush(ctx, actionLogKey, data).Err(); err != nil {
		log.Printf("failed to append action for %s: %v", action.PieceRef, err)
	}
}

func (s *PieceStore) put(piece board.Piece) {
	if _, ok := s.pieces[piece.ID]; !ok {
		s.order = append(s.order, piece.ID)
	}
	s.pieces[piece.ID] = piece
}
