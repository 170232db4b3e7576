// Command roam is a headless client that wanders a piece world: it connects,
// drops a piece, walks into whatever is nearby, and rotates the nearest
// piece on a timer. Useful for soaking a server with realistic traffic.
package main

import (
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/collabworld/pieces-api/board"
	"github.com/collabworld/pieces-api/client"
	"github.com/collabworld/pieces-api/client/controls"
)

const tickRate = 60

type roamer struct {
	cache *client.Cache
}

func (r *roamer) Connected(sessionID, token string) {
	if sessionID != "" {
		log.Printf("connected as %s", sessionID)
	}
}

func (r *roamer) Initialized(pieces []board.Piece) {
	r.cache.Initialize(pieces)
	log.Printf("initialized with %d pieces", len(pieces))
}

func (r *roamer) PieceCreated(piece board.Piece) { r.cache.ApplyCreated(piece) }
func (r *roamer) PieceUpdated(piece board.Piece) { r.cache.ApplyUpdated(piece) }
func (r *roamer) LimitReached()                  { log.Printf("piece limit reached") }

// arenaWalls boxes in a square floor, the same static set the reference
// scene builds.
func arenaWalls(size, height, thickness float64) []board.Box {
	half := size / 2
	walls := make([]board.Box, 0, 4)
	for _, side := range []float64{-1, 1} {
		walls = append(walls, board.Box{
			Min: board.Vector3{X: -half, Y: 0, Z: side*half - thickness/2},
			Max: board.Vector3{X: half, Y: height, Z: side*half + thickness/2},
		})
		walls = append(walls, board.Box{
			Min: board.Vector3{X: side*half - thickness/2, Y: 0, Z: -half},
			Max: board.Vector3{X: side*half + thickness/2, Y: height, Z: half},
		})
	}
	return walls
}

func main() {
	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "ws://localhost:3000/ws"
		log.Printf("defaulting to server %s", serverURL)
	}

	seconds := 30
	if raw := os.Getenv("ROAM_SECONDS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			seconds = parsed
		}
	}

	cache := client.NewCache()
	bot := &roamer{cache: cache}

	conn, err := client.Dial(serverURL, os.Getenv("RESUME_TOKEN"), bot)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	resolver := controls.NewResolver(arenaWalls(200, 4, 1), cache)
	controller := controls.NewController(board.Vector3{Y: 1.6, Z: 20}, resolver)
	resolver.OnPush = func(pieceID string, position board.Vector3) {
		pos := position
		err := conn.Send(board.Action{
			Kind:      board.ActionMove,
			PieceRef:  pieceID,
			Payload:   board.Payload{Position: &pos},
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			log.Printf("failed to send push for %s: %v", pieceID, err)
		}
	}

	tweens := controls.NewRunner(cache)
	tweens.OnDone = func(piece board.Piece) {
		rot := piece.Rotation
		err := conn.Send(board.Action{
			Kind:      board.ActionRotate,
			PieceRef:  piece.ID,
			Payload:   board.Payload{Rotation: &rot},
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			log.Printf("failed to send rotation for %s: %v", piece.ID, err)
		}
	}

	// Drop one piece right in front of the spawn point.
	spawn := controller.Position.Add(controller.Forward().Scale(5))
	spawn.Y = 0
	if err := conn.Send(board.Action{
		Kind:      board.ActionAdd,
		Payload:   board.Payload{Position: &spawn},
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		log.Fatal(err)
	}

	controller.SetKey(controls.KeyForward, true)

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()
	deadline := time.After(time.Duration(seconds) * time.Second)
	rotateEvery := time.NewTicker(3 * time.Second)
	defer rotateEvery.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			controller.Update(dt)
			tweens.Step(now)

			// Wander: a small random heading change each frame.
			controller.Look((rand.Float64()-0.5)*20, 0)

		case now := <-rotateEvery.C:
			if nearest, ok := cache.NearestDynamic(controller.Position); ok {
				tweens.StartRotation(nearest.ID, controls.RotateStep, now)
			}

		case <-deadline:
			log.Printf("roamed for %ds over %d pieces, done", seconds, len(cache.All()))
			return

		case <-conn.Done():
			log.Printf("server closed the connection")
			return
		}
	}
}
