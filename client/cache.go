// Package client holds the pieces a client knows about and the connection
// that keeps them reconciled with the server.
package client

import (
	"math"
	"sync"

	"github.com/collabworld/pieces-api/board"
)

// Cache is the client-side mirror of the server's piece store. It is the
// only authority for what the rendering layer displays. The network read
// loop and the frame loop touch it from different goroutines, hence the
// lock.
type Cache struct {
	mu     sync.Mutex
	pieces map[string]board.Piece
	order  []string
}

func NewCache() *Cache {
	return &Cache{pieces: make(map[string]board.Piece)}
}

// Initialize replaces the whole local set, as received on first connect.
func (c *Cache) Initialize(pieces []board.Piece) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pieces = make(map[string]board.Piece, len(pieces))
	c.order = c.order[:0]
	for _, piece := range pieces {
		c.pieces[piece.ID] = piece
		c.order = append(c.order, piece.ID)
	}
}

// ApplyCreated inserts a piece unless it is already cached. An optimistic
// local echo may have rendered a provisional copy before the broadcast
// arrives; replaying the broadcast is then a no-op.
func (c *Cache) ApplyCreated(piece board.Piece) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pieces[piece.ID]; ok {
		return
	}
	c.pieces[piece.ID] = piece
	c.order = append(c.order, piece.ID)
}

// ApplyUpdated replaces the cached entry fully. Updates for unknown ids are
// dropped, mirroring the server's own policy for stale messages.
func (c *Cache) ApplyUpdated(piece board.Piece) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pieces[piece.ID]; !ok {
		return
	}
	c.pieces[piece.ID] = piece
}

// Get looks a piece up by id.
func (c *Cache) Get(id string) (board.Piece, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	piece, ok := c.pieces[id]
	return piece, ok
}

// All returns the cached pieces in insertion order.
func (c *Cache) All() []board.Piece {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := make([]board.Piece, 0, len(c.order))
	for _, id := range c.order {
		all = append(all, c.pieces[id])
	}
	return all
}

// Dynamic returns the cached non-static pieces in insertion order.
func (c *Cache) Dynamic() []board.Piece {
	c.mu.Lock()
	defer c.mu.Unlock()

	dynamic := make([]board.Piece, 0, len(c.order))
	for _, id := range c.order {
		if piece := c.pieces[id]; !piece.IsStatic {
			dynamic = append(dynamic, piece)
		}
	}
	return dynamic
}

// NearestDynamic finds the non-static piece closest to pos, for commands
// that target "the nearest piece".
func (c *Cache) NearestDynamic(pos board.Vector3) (board.Piece, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var nearest board.Piece
	minDist := math.Inf(1)
	found := false
	for _, id := range c.order {
		piece := c.pieces[id]
		if piece.IsStatic {
			continue
		}
		if d := piece.Position.DistanceTo(pos); d < minDist {
			minDist = d
			nearest = piece
			found = true
		}
	}
	return nearest, found
}
