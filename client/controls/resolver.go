package controls

import (
	"github.com/collabworld/pieces-api/board"
)

const (
	// Default tuning for the blocking and push tests.
	DefaultBlockThreshold = 1.0
	DefaultPushRadius     = 1.5
	DefaultPieceHalf      = 0.5
)

// PieceSource supplies the dynamic pieces eligible for pushing. The client
// cache implements it.
type PieceSource interface {
	Dynamic() []board.Piece
}

// PushEvent records one piece displaced during a frame.
type PushEvent struct {
	PieceID  string
	Position board.Vector3
}

// Resolver checks a tentative camera move against the static obstacle set
// and displaces any dynamic piece the camera presses into.
type Resolver struct {
	// Obstacles is the read-only static set; pieces never appear here.
	Obstacles []board.Box
	Pieces    PieceSource

	// BlockThreshold is how close a static hit may be before the move is
	// rejected outright.
	BlockThreshold float64
	// PushRadius is the camera's contact radius against piece boxes.
	PushRadius float64
	// PieceHalf is the half-extent of a piece's bounding box.
	PieceHalf float64

	// OnPush, when set, is invoked once per displaced piece per frame.
	OnPush func(pieceID string, position board.Vector3)
}

// NewResolver wires a resolver with the default tuning.
func NewResolver(obstacles []board.Box, pieces PieceSource) *Resolver {
	return &Resolver{
		Obstacles:      obstacles,
		Pieces:         pieces,
		BlockThreshold: DefaultBlockThreshold,
		PushRadius:     DefaultPushRadius,
		PieceHalf:      DefaultPieceHalf,
	}
}

// Resolve evaluates the two checks independently against the candidate
// position: dynamic pieces within the push radius are displaced along the
// forward vector by the penetration depth, and a static hit within the
// blocking threshold rejects the move entirely (binary accept/reject, no
// sliding).
func (r *Resolver) Resolve(old, candidate, forward board.Vector3) (board.Vector3, []PushEvent) {
	pushes := r.resolvePushes(candidate, forward)

	if r.blocked(candidate, forward) {
		return old, pushes
	}
	return candidate, pushes
}

func (r *Resolver) blocked(candidate, forward board.Vector3) bool {
	// Cast from floor level so low geometry still blocks.
	origin := board.Vector3{X: candidate.X, Y: 0, Z: candidate.Z}

	for _, box := range r.Obstacles {
		dist, hit := box.RayIntersect(origin, forward)
		if hit && dist <= r.BlockThreshold {
			return true
		}
	}
	return false
}

func (r *Resolver) resolvePushes(candidate, forward board.Vector3) []PushEvent {
	if r.Pieces == nil {
		return nil
	}

	var pushes []PushEvent
	for _, piece := range r.Pieces.Dynamic() {
		box := board.BoxAround(piece.Position, r.PieceHalf)
		dist := box.ClosestPoint(candidate).DistanceTo(candidate)
		if dist >= r.PushRadius {
			continue
		}

		moved := piece.Position.Add(forward.Scale(r.PushRadius - dist))
		event := PushEvent{PieceID: piece.ID, Position: moved}
		pushes = append(pushes, event)
		if r.OnPush != nil {
			r.OnPush(event.PieceID, event.Position)
		}
	}
	return pushes
}
