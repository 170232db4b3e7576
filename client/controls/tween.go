package controls

import (
	"math"
	"time"

	"github.com/collabworld/pieces-api/board"
)

const (
	// RotateStep is the angle applied by the rotate-nearest command.
	RotateStep = 45 * math.Pi / 180

	tweenDuration = 300 * time.Millisecond
)

// PieceWriter is the slice of the client cache a tween needs: read the
// current piece and write the interpolated frame back. Intermediate frames
// are purely local; nothing is broadcast until the tween completes.
type PieceWriter interface {
	Get(id string) (board.Piece, bool)
	ApplyUpdated(piece board.Piece)
}

// RotationTween interpolates a piece's Y rotation from a start angle to
// start+delta over a fixed duration with quadratic ease-in-out.
type RotationTween struct {
	PieceID string

	start    float64
	end      float64
	started  time.Time
	duration time.Duration
}

// NewRotationTween captures the start angle at now.
func NewRotationTween(pieceID string, start, delta float64, now time.Time) *RotationTween {
	return &RotationTween{
		PieceID:  pieceID,
		start:    start,
		end:      start + delta,
		started:  now,
		duration: tweenDuration,
	}
}

// Angle returns the eased angle at now and whether the tween has finished.
// At or past the duration it returns the end angle exactly.
func (t *RotationTween) Angle(now time.Time) (float64, bool) {
	elapsed := now.Sub(t.started)
	if elapsed >= t.duration {
		return t.end, true
	}
	frac := float64(elapsed) / float64(t.duration)
	return t.start + (t.end-t.start)*easeInOut(frac), false
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Runner drives the active tweens from the frame loop. Each Step writes the
// interpolated angle into the local piece; when a tween completes, OnDone
// fires exactly once with the final state so the caller can emit the rotate
// action.
type Runner struct {
	pieces PieceWriter

	// OnDone receives the piece with its final rotation applied.
	OnDone func(piece board.Piece)

	active []*RotationTween
}

func NewRunner(pieces PieceWriter) *Runner {
	return &Runner{pieces: pieces}
}

// StartRotation begins rotating a piece by delta radians around Y. A piece
// already mid-tween is left alone to keep the final emitted angle coherent.
func (r *Runner) StartRotation(pieceID string, delta float64, now time.Time) bool {
	for _, t := range r.active {
		if t.PieceID == pieceID {
			return false
		}
	}

	piece, ok := r.pieces.Get(pieceID)
	if !ok {
		return false
	}

	r.active = append(r.active, NewRotationTween(pieceID, piece.Rotation.Y, delta, now))
	return true
}

// Step advances every active tween to now.
func (r *Runner) Step(now time.Time) {
	remaining := r.active[:0]
	for _, t := range r.active {
		angle, done := t.Angle(now)

		piece, ok := r.pieces.Get(t.PieceID)
		if !ok {
			// The piece vanished from the cache mid-tween; abandon quietly.
			continue
		}
		piece.Rotation.Y = angle
		r.pieces.ApplyUpdated(piece)

		if done {
			if r.OnDone != nil {
				r.OnDone(piece)
			}
			continue
		}
		remaining = append(remaining, t)
	}
	r.active = remaining
}

// Active reports how many tweens are still running.
func (r *Runner) Active() int {
	return len(r.active)
}
