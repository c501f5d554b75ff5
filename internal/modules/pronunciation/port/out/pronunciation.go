package out

import "context"

// Lookup returns the recorded audio asset URLs for a label.
type Lookup interface {
	Lookup(ctx context.Context, label string) ([]string, error)
}

type Player interface {
	Play(ctx context.Context, assetURL string) error
}

// Synthesizer speaks text on the device. Available reports whether a
// synthesizer exists at all.
type Synthesizer interface {
	Available() bool
	Speak(ctx context.Context, text, locale string, rate float64) error
}
