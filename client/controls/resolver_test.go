package controls

import (
	"math"
	"testing"

	"github.com/collabworld/pieces-api/board"
)

// pieceList is a fixed PieceSource for resolver tests.
type pieceList []board.Piece

func (p pieceList) Dynamic() []board.Piece {
	dynamic := make([]board.Piece, 0, len(p))
	for _, piece := range p {
		if !piece.IsStatic {
			dynamic = append(dynamic, piece)
		}
	}
	return dynamic
}

func TestPushDisplacesByExactPenetration(t *testing.T) {
	piece := board.Piece{ID: "piece-1", Position: board.Vector3{Z: -1.6}}
	resolver := NewResolver(nil, pieceList{piece})

	var calls []PushEvent
	resolver.OnPush = func(id string, pos board.Vector3) {
		calls = append(calls, PushEvent{PieceID: id, Position: pos})
	}

	forward := board.Vector3{Z: -1}
	candidate := board.Vector3{}
	final, pushes := resolver.Resolve(board.Vector3{X: 1}, candidate, forward)

	if final != candidate {
		t.Fatalf("unobstructed move rejected: %+v", final)
	}
	if len(pushes) != 1 {
		t.Fatalf("got %d push events, want exactly 1", len(pushes))
	}

	// Box face nearest the camera sits at z = -1.1, so the prior distance
	// is 1.1 and the displacement is pushRadius - 1.1 = 0.4 along forward.
	want := board.Vector3{Z: -2.0}
	if got := pushes[0].Position; math.Abs(got.Z-want.Z) > 1e-9 || got.X != 0 || got.Y != 0 {
		t.Fatalf("pushed to %+v, want %+v", got, want)
	}
	if pushes[0].PieceID != "piece-1" {
		t.Fatalf("pushed wrong piece %q", pushes[0].PieceID)
	}

	if len(calls) != 1 {
		t.Fatalf("OnPush fired %d times, want exactly once", len(calls))
	}
	if calls[0] != pushes[0] {
		t.Fatalf("callback event %+v differs from returned event %+v", calls[0], pushes[0])
	}
}

func TestPushIgnoresDistantPieces(t *testing.T) {
	resolver := NewResolver(nil, pieceList{
		{ID: "far", Position: board.Vector3{Z: -10}},
	})

	_, pushes := resolver.Resolve(board.Vector3{}, board.Vector3{}, board.Vector3{Z: -1})
	if len(pushes) != 0 {
		t.Fatalf("distant piece was pushed: %+v", pushes)
	}
}

func TestPushSkipsStaticPieces(t *testing.T) {
	resolver := NewResolver(nil, pieceList{
		{ID: "template-0", IsStatic: true, Position: board.Vector3{Z: -1.2}},
	})

	_, pushes := resolver.Resolve(board.Vector3{}, board.Vector3{}, board.Vector3{Z: -1})
	if len(pushes) != 0 {
		t.Fatalf("static piece was pushed: %+v", pushes)
	}
}

func TestMultiplePushesEmitOneEventEach(t *testing.T) {
	resolver := NewResolver(nil, pieceList{
		{ID: "left", Position: board.Vector3{X: -0.8, Z: -1}},
		{ID: "right", Position: board.Vector3{X: 0.8, Z: -1}},
	})

	_, pushes := resolver.Resolve(board.Vector3{}, board.Vector3{}, board.Vector3{Z: -1})
	if len(pushes) != 2 {
		t.Fatalf("got %d push events, want one per overlapping piece", len(pushes))
	}
	if pushes[0].PieceID == pushes[1].PieceID {
		t.Fatal("the same piece was pushed twice in one frame")
	}
}

func TestCameraInsideBoxPushesFullRadius(t *testing.T) {
	piece := board.Piece{ID: "piece-1", Position: board.Vector3{}}
	resolver := NewResolver(nil, pieceList{piece})

	forward := board.Vector3{Z: -1}
	_, pushes := resolver.Resolve(board.Vector3{}, board.Vector3{}, forward)
	if len(pushes) != 1 {
		t.Fatalf("got %d push events, want 1", len(pushes))
	}
	if got := pushes[0].Position.Z; math.Abs(got-(-resolver.PushRadius)) > 1e-9 {
		t.Fatalf("zero-distance contact should push the full radius, got z=%v", got)
	}
}

func TestBlockingIsBinary(t *testing.T) {
	wall := board.Box{
		Min: board.Vector3{X: -1, Y: 0, Z: -2},
		Max: board.Vector3{X: 1, Y: 2, Z: -0.4},
	}
	resolver := NewResolver([]board.Box{wall}, nil)

	old := board.Vector3{X: 0.25, Z: 0.5}
	candidate := board.Vector3{Z: 0.1}
	forward := board.Vector3{Z: -1}

	final, _ := resolver.Resolve(old, candidate, forward)
	if final != old {
		t.Fatalf("hit within threshold should keep the previous position, got %+v", final)
	}

	// The same wall further away than the threshold does not block.
	farWall := board.Box{
		Min: board.Vector3{X: -1, Y: 0, Z: -5},
		Max: board.Vector3{X: 1, Y: 2, Z: -3},
	}
	resolver = NewResolver([]board.Box{farWall}, nil)
	final, _ = resolver.Resolve(old, candidate, forward)
	if final != candidate {
		t.Fatalf("hit beyond threshold should not block, got %+v", final)
	}
}

func TestRayMissesOffAxisObstacle(t *testing.T) {
	sideWall := board.Box{
		Min: board.Vector3{X: 5, Y: 0, Z: -2},
		Max: board.Vector3{X: 7, Y: 2, Z: -0.4},
	}
	resolver := NewResolver([]board.Box{sideWall}, nil)

	candidate := board.Vector3{Z: 0.1}
	final, _ := resolver.Resolve(board.Vector3{Z: 0.5}, candidate, board.Vector3{Z: -1})
	if final != candidate {
		t.Fatalf("obstacle off the ray should not block, got %+v", final)
	}
}
