// Package input translates SDL2 keyboard and mouse events into movement
// intent and look deltas.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-walk/internal/engine/movement"
)

// Bindings maps actions to physical keys.
type Bindings struct {
	Forward sdl.Scancode
	Back    sdl.Scancode
	Left    sdl.Scancode
	Right   sdl.Scancode
	Run     sdl.Scancode
	Jump    sdl.Scancode
}

// DefaultBindings returns WASD with shift to run and space to jump.
func DefaultBindings() Bindings {
	return Bindings{
		Forward: sdl.SCANCODE_W,
		Back:    sdl.SCANCODE_S,
		Left:    sdl.SCANCODE_A,
		Right:   sdl.SCANCODE_D,
		Run:     sdl.SCANCODE_LSHIFT,
		Jump:    sdl.SCANCODE_SPACE,
	}
}

// Controller accumulates input between frames. Held keys are tracked as
// state; jump is an edge that is raised by a fresh key press (auto-repeat
// ignored) and cleared when Intent consumes it.
type Controller struct {
	bindings Bindings
	held     map[sdl.Scancode]bool
	jump     bool
	lookX    float32
	lookY    float32
	quit     bool
}

// NewController creates a controller with the given bindings.
func NewController(b Bindings) *Controller {
	return &Controller{
		bindings: b,
		held:     make(map[sdl.Scancode]bool, 8),
	}
}

// Poll drains the SDL event queue. SDL must be initialized.
func (c *Controller) Poll() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		c.Handle(event)
	}
}

// Handle applies one SDL event.
func (c *Controller) Handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		c.quit = true

	case *sdl.KeyboardEvent:
		switch e.Type {
		case sdl.KEYDOWN:
			c.KeyDown(e.Keysym.Scancode, e.Repeat != 0)
		case sdl.KEYUP:
			c.KeyUp(e.Keysym.Scancode)
		}

	case *sdl.MouseMotionEvent:
		c.lookX += float32(e.XRel)
		c.lookY += float32(e.YRel)

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_FOCUS_LOST {
			c.releaseAll()
		}
	}
}

// KeyDown records a key press. Repeats only refresh held state.
func (c *Controller) KeyDown(key sdl.Scancode, repeat bool) {
	wasHeld := c.held[key]
	c.held[key] = true
	if key == c.bindings.Jump && !repeat && !wasHeld {
		c.jump = true
	}
}

// KeyUp records a key release.
func (c *Controller) KeyUp(key sdl.Scancode) {
	delete(c.held, key)
}

// Intent returns this frame's movement intent and consumes the jump edge.
func (c *Controller) Intent() movement.Intent {
	intent := movement.Intent{
		Forward: c.axis(c.bindings.Forward, c.bindings.Back),
		Strafe:  c.axis(c.bindings.Right, c.bindings.Left),
		Run:     c.held[c.bindings.Run],
		Jump:    c.jump,
	}
	c.jump = false
	return intent
}

// LookDelta returns and clears the accumulated mouse motion in pixels.
func (c *Controller) LookDelta() (dx, dy float32) {
	dx, dy = c.lookX, c.lookY
	c.lookX, c.lookY = 0, 0
	return dx, dy
}

// Held reports whether key is currently down.
func (c *Controller) Held(key sdl.Scancode) bool {
	return c.held[key]
}

// QuitRequested reports whether the window asked to close.
func (c *Controller) QuitRequested() bool {
	return c.quit
}

func (c *Controller) axis(pos, neg sdl.Scancode) float32 {
	var v float32
	if c.held[pos] {
		v++
	}
	if c.held[neg] {
		v--
	}
	return v
}

// releaseAll forgets held keys so focus loss cannot leave the player walking.
func (c *Controller) releaseAll() {
	clear(c.held)
}
