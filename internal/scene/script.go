package scene

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-walk/internal/engine/movement"
)

// ErrEmptyScript is returned for scripts with no frames.
var ErrEmptyScript = errors.New("scene: script has no frames")

// Script is a canned input sequence for headless runs.
type Script struct {
	Delta time.Duration `yaml:"delta"`
	Steps []Step        `yaml:"steps"`
}

// Step holds the same input for a number of frames. Jump fires on the
// step's first frame only.
type Step struct {
	Frames  int     `yaml:"frames"`
	Forward float32 `yaml:"forward"`
	Strafe  float32 `yaml:"strafe"`
	Run     bool    `yaml:"run"`
	Jump    bool    `yaml:"jump"`
	Yaw     float32 `yaml:"yaw"` // radians
}

// ScriptFrame is one expanded frame of a script.
type ScriptFrame struct {
	Delta  time.Duration
	Intent movement.Intent
	Yaw    float32
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("script %s: %w", path, ErrEmptyScript)
	}
	return &s, nil
}

// Len returns the number of frames the script expands to.
func (s *Script) Len() int {
	n := 0
	for _, st := range s.Steps {
		n += max(st.Frames, 0)
	}
	return n
}

// Frames expands the script into per-frame inputs. A zero delta defaults
// to 60 frames per second.
func (s *Script) Frames() []ScriptFrame {
	delta := s.Delta
	if delta <= 0 {
		delta = time.Second / 60
	}

	out := make([]ScriptFrame, 0, s.Len())
	for _, st := range s.Steps {
		for i := 0; i < st.Frames; i++ {
			out = append(out, ScriptFrame{
				Delta: delta,
				Intent: movement.Intent{
					Forward: st.Forward,
					Strafe:  st.Strafe,
					Run:     st.Run,
					Jump:    st.Jump && i == 0,
				},
				Yaw: st.Yaw,
			})
		}
	}
	return out
}
