// Package controls turns raw input into first-person camera motion, blocks
// it against static geometry, pushes dynamic pieces out of the way, and
// animates discrete rotation commands.
package controls

import (
	"math"

	"github.com/collabworld/pieces-api/board"
)

// Key is one of the held movement flags.
type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyLeft
	KeyRight
	keyCount
)

const (
	// Damping and acceleration match the feel of the reference controls:
	// velocity decays at 10/s and input adds 200 units/s².
	damping      = 10.0
	acceleration = 200.0

	lookSensitivity = 0.002
	maxPitch        = 85 * math.Pi / 180

	// A stalled frame is clamped so a long pause cannot teleport the camera.
	maxFrameDelta = 0.1
)

// Controller integrates held keys and pointer-look deltas into camera
// position and orientation, one Update per animation frame. It is a plain
// forward-Euler integrator, not a physics solver.
type Controller struct {
	Position board.Vector3
	Yaw      float64
	Pitch    float64

	velocity board.Vector3
	held     [keyCount]bool
	resolver *Resolver
}

// NewController places the camera at start. resolver may be nil, in which
// case every tentative move is committed unchecked.
func NewController(start board.Vector3, resolver *Resolver) *Controller {
	return &Controller{Position: start, resolver: resolver}
}

// SetKey records a held-key transition.
func (c *Controller) SetKey(key Key, down bool) {
	if key < 0 || key >= keyCount {
		return
	}
	c.held[key] = down
}

// Look applies a pointer delta. Yaw turns freely; pitch is clamped so the
// view cannot invert.
func (c *Controller) Look(dx, dy float64) {
	c.Yaw -= dx * lookSensitivity
	c.Pitch -= dy * lookSensitivity
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}

// Forward returns the camera's forward vector flattened to the horizontal
// plane, the direction planar movement and pushes act along.
func (c *Controller) Forward() board.Vector3 {
	return board.Vector3{X: -math.Sin(c.Yaw), Z: -math.Cos(c.Yaw)}
}

func (c *Controller) right() board.Vector3 {
	return board.Vector3{X: math.Cos(c.Yaw), Z: -math.Sin(c.Yaw)}
}

// Update advances one frame by dt seconds: damp the planar velocity, add the
// input direction, translate tentatively, then let the resolver accept or
// reject the move and push any pieces in the way.
func (c *Controller) Update(dt float64) []PushEvent {
	if dt <= 0 {
		return nil
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	damp := 1 - damping*dt
	if damp < 0 {
		damp = 0
	}
	c.velocity.X *= damp
	c.velocity.Z *= damp

	dirX := flag(c.held[KeyRight]) - flag(c.held[KeyLeft])
	dirZ := flag(c.held[KeyForward]) - flag(c.held[KeyBack])
	if length := math.Hypot(dirX, dirZ); length != 0 {
		dirX /= length
		dirZ /= length
	}
	c.velocity.X -= dirX * acceleration * dt
	c.velocity.Z -= dirZ * acceleration * dt

	forward := c.Forward()
	tentative := c.Position.
		Add(c.right().Scale(-c.velocity.X * dt)).
		Add(forward.Scale(-c.velocity.Z * dt))

	if c.resolver == nil {
		c.Position = tentative
		return nil
	}

	final, pushes := c.resolver.Resolve(c.Position, tentative, forward)
	c.Position = final
	return pushes
}

func flag(held bool) float64 {
	if held {
		return 1
	}
	return 0
}
