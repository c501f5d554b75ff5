package domain

import (
	"path"
	"strings"
)

// Source says how a label was finally voiced.
type Source string

const (
	SourceAsset       Source = "asset"
	SourceSynthesizer Source = "synthesizer"
)

type Result struct {
	Label    string
	Source   Source
	AssetURL string
	// Ignored is set when another pronunciation was still running.
	Ignored bool
}

// AccentOf derives the accent tag from an asset URL such as
// ".../apple-us.mp3". Unknown layouts yield "".
func AccentOf(assetURL string) string {
	base := path.Base(assetURL)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	i := strings.LastIndex(base, "-")
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// PickAsset returns the first asset recorded in the preferred accent,
// otherwise the first asset. Empty URLs are skipped.
func PickAsset(assets []string, accent string) (string, bool) {
	first := ""
	for _, a := range assets {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if first == "" {
			first = a
		}
		if accent != "" && AccentOf(a) == strings.ToLower(accent) {
			return a, true
		}
	}
	return first, first != ""
}
