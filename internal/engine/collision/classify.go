package collision

// Volume is a candidate solid volume handed over by the scene loader.
// Placement is final and ancestor tags are already folded into NoCollide.
type Volume struct {
	Name         string
	Bounds       Box
	Visible      bool
	ForceInclude bool    // collide even when invisible
	NoCollide    bool    // tagged non-collidable on itself or an ancestor
	Opacity      float32 // approximate, 1 is fully opaque
}

// Candidate is a volume that passed classification.
type Candidate struct {
	Name   string
	Bounds Box
}

// ClassifyOptions holds the exclusion thresholds.
type ClassifyOptions struct {
	MinExtent  float32 // volumes whose largest extent is below this are ignored
	MinOpacity float32 // volumes more transparent than this are ignored
}

// Reason is why a volume was excluded.
type Reason int

const (
	Kept Reason = iota
	Invisible
	Tagged
	Transparent
	TooSmall
	Malformed
)

var reasonNames = [...]string{"kept", "invisible", "tagged", "transparent", "too_small", "malformed"}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Stats counts classification outcomes per reason.
type Stats [len(reasonNames)]int

// Classify reports whether v should collide.
func Classify(v Volume, opts ClassifyOptions) Reason {
	switch {
	case !v.Bounds.Valid():
		return Malformed
	case v.NoCollide:
		return Tagged
	case !v.Visible && !v.ForceInclude:
		return Invisible
	case v.Opacity < opts.MinOpacity:
		return Transparent
	case v.Bounds.MaxExtent() < opts.MinExtent:
		return TooSmall
	}
	return Kept
}

// ClassifyAll filters volumes into typed candidates, preserving order.
func ClassifyAll(volumes []Volume, opts ClassifyOptions) ([]Candidate, Stats) {
	var stats Stats
	out := make([]Candidate, 0, len(volumes))
	for _, v := range volumes {
		r := Classify(v, opts)
		stats[r]++
		if r != Kept {
			continue
		}
		b := v.Bounds
		b.Name = v.Name
		out = append(out, Candidate{Name: v.Name, Bounds: b})
	}
	return out, stats
}
