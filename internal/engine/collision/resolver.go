package collision

import (
	"github.com/Faultbox/midgard-walk/pkg/math"
)

// degenerateDist is the XZ distance below which the push direction is
// undefined and the nearest-face fallback takes over.
const degenerateDist = 1e-6

// contactSlop absorbs float32 rounding so a position placed exactly at
// reach by one pass is not corrected again by the next.
const contactSlop = 1e-5

// ContactFunc is called once per box that corrected the position in a pass.
// push is the horizontal displacement that box applied.
type ContactFunc func(box Box, push math.Vec2)

// Resolver pushes the player's cylinder out of colliders, sliding along
// their faces. Each pass projects the position out of every overlapping box
// in order, seeing earlier corrections (Gauss–Seidel); passes repeat until
// one makes no correction or MaxIterations is reached.
type Resolver struct {
	Body          Body
	MaxIterations int
	Skin          float32
	OnContact     ContactFunc
}

// Resolve returns position with horizontal penetration removed, and the
// number of corrections applied. A box counts as penetrated only when the
// XZ distance to it is below Radius+Skin-1e-5 (contactSlop); positions within
// that tolerance of the reach are left where they are. If the result is not
// finite, previous is returned unchanged.
func (r *Resolver) Resolve(boxes []Box, position, previous math.Vec3) (math.Vec3, int) {
	if !position.IsFinite() {
		return previous, 0
	}
	if len(boxes) == 0 {
		return position, 0
	}

	reach := r.Body.Radius + r.Skin
	iterations := max(r.MaxIterations, 1)
	feet, head := r.Body.Span(position.Y)

	pos := position.XZ()
	total := 0
	for pass := 0; pass < iterations; pass++ {
		corrected := false
		for i := range boxes {
			b := &boxes[i]
			if feet >= b.Max.Y || head <= b.Min.Y {
				continue
			}

			next, hit := pushOut(b, pos, reach)
			if !hit {
				continue
			}
			if r.OnContact != nil {
				r.OnContact(*b, next.Sub(pos))
			}
			pos = next
			corrected = true
			total++
		}
		if !corrected {
			break
		}
	}

	out := position.WithXZ(pos)
	if !out.IsFinite() {
		return previous, total
	}
	return out, total
}

// pushOut moves p so its XZ distance to b is at least reach.
func pushOut(b *Box, p math.Vec2, reach float32) (math.Vec2, bool) {
	closest := b.ClosestXZ(p)
	d := p.Sub(closest)
	dist := d.Length()

	if dist >= reach-contactSlop {
		return p, false
	}
	if dist < degenerateDist {
		return nearestFace(b, p, reach), true
	}
	return p.Add(d.Scale((reach - dist) / dist)), true
}

// nearestFace places p reach outside whichever vertical face of b is
// closest. Ties resolve in the order -X, +X, -Z, +Z.
func nearestFace(b *Box, p math.Vec2, reach float32) math.Vec2 {
	faces := [4]float32{
		p.X - b.Min.X,
		b.Max.X - p.X,
		p.Y - b.Min.Z,
		b.Max.Z - p.Y,
	}
	best := 0
	for i := 1; i < len(faces); i++ {
		if faces[i] < faces[best] {
			best = i
		}
	}

	switch best {
	case 0:
		p.X = b.Min.X - reach
	case 1:
		p.X = b.Max.X + reach
	case 2:
		p.Y = b.Min.Z - reach
	default:
		p.Y = b.Max.Z + reach
	}
	return p
}
