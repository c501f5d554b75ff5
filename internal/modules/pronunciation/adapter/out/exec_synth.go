package out

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	pronunciationout "vocabhub/internal/modules/pronunciation/port/out"
)

// baseWordsPerMinute is the speaking rate that maps to a rate factor of 1.
const baseWordsPerMinute = 175

// ExecSynth speaks through say (macOS) or espeak-ng/espeak.
type ExecSynth struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewExecSynth() pronunciationout.Synthesizer {
	return &ExecSynth{lookPath: exec.LookPath, run: runCommand}
}

func (s *ExecSynth) Available() bool {
	_, _, ok := s.binary()
	return ok
}

func (s *ExecSynth) Speak(ctx context.Context, text, locale string, rate float64) error {
	name, bin, ok := s.binary()
	if !ok {
		return fmt.Errorf("no speech synthesizer found on PATH")
	}
	wpm := strconv.Itoa(int(baseWordsPerMinute * rate))
	var args []string
	switch name {
	case "say":
		args = []string{"-r", wpm, text}
	default:
		args = []string{"-v", espeakVoice(locale), "-s", wpm, text}
	}
	if err := s.run(ctx, bin, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *ExecSynth) binary() (name, bin string, ok bool) {
	for _, candidate := range []string{"say", "espeak-ng", "espeak"} {
		if p, err := s.lookPath(candidate); err == nil {
			return candidate, p, true
		}
	}
	return "", "", false
}

// espeakVoice turns "en-US" into espeak's "en-us".
func espeakVoice(locale string) string {
	if locale == "" {
		return "en-us"
	}
	return strings.ToLower(locale)
}
