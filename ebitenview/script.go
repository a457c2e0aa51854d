package ebitenview

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// ScriptStep is one action of a Script.
//
//	screenshot  queue a capture labeled Label
//	wait        let Frames ticks pass
//	orbit       rotate the game's Orbit to Yaw/Pitch over Frames ticks
//	exit        end the game loop
type ScriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
	Yaw    float32 `yaml:"yaw,omitempty"`
	Pitch  float32 `yaml:"pitch,omitempty"`
}

// Script sequences screenshots and camera moves across ticks for
// unattended visual checks. Attach it with RunConfig.Script or
// Game.SetScript.
type Script struct {
	Steps []ScriptStep `yaml:"steps"`

	cursor int
	wait   int
	done   bool
}

// ErrEmptyScript is returned by LoadScript for a script without steps.
var ErrEmptyScript = errors.New("ebitenview: script has no steps")

// LoadScript parses a YAML script:
//
//	steps:
//	  - action: wait
//	    frames: 30
//	  - action: screenshot
//	    label: start
//	  - action: exit
func LoadScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("ebitenview: parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "screenshot", "wait", "orbit", "exit":
		default:
			return nil, fmt.Errorf("ebitenview: script step %d: unknown action %q", i, st.Action)
		}
	}
	return &s, nil
}

// LoadScriptFile reads and parses a YAML script file.
func LoadScriptFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ebitenview: read script: %w", err)
	}
	return LoadScript(data)
}

// Done reports whether every step has run.
func (s *Script) Done() bool { return s.done }

// step advances the script by one tick. It returns ebiten.Termination when
// an exit step runs.
func (s *Script) step(g *Game) error {
	if s.done {
		return nil
	}
	if s.wait > 0 {
		s.wait--
		return nil
	}
	if s.cursor >= len(s.Steps) {
		s.done = true
		return nil
	}

	st := s.Steps[s.cursor]
	s.cursor++

	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			s.wait = st.Frames - 1 // this tick counts as one
		}
	case "orbit":
		if g.cfg.Orbit != nil {
			dur := float32(max(st.Frames, 1)) / float32(ebiten.TPS())
			g.cfg.Orbit.RotateTo(st.Yaw, st.Pitch, dur, ease.InOutQuad)
		}
	case "exit":
		s.done = true
		return ebiten.Termination
	}

	if s.cursor >= len(s.Steps) && s.wait == 0 {
		s.done = true
	}
	return nil
}
