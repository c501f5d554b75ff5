package domain_test

import (
	"testing"

	"vocabhub/internal/modules/pronunciation/domain"
)

func TestPickAssetPrefersAccent(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		assets []string
		accent string
		want   string
		ok     bool
	}{
		{name: "accent match", assets: []string{"https://x/apple-uk.mp3", "https://x/apple-us.mp3"}, accent: "us", want: "https://x/apple-us.mp3", ok: true},
		{name: "fallback first", assets: []string{"", "https://x/apple-au.mp3", "https://x/apple-uk.mp3"}, accent: "us", want: "https://x/apple-au.mp3", ok: true},
		{name: "no accent preference", assets: []string{"https://x/apple-uk.mp3"}, accent: "", want: "https://x/apple-uk.mp3", ok: true},
		{name: "none", assets: []string{"", " "}, accent: "us", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := domain.PickAsset(tc.assets, tc.accent)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("PickAsset() = %q,%v want %q,%v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestAccentOf(t *testing.T) {
	t.Parallel()
	if got := domain.AccentOf("https://api.dictionaryapi.dev/media/pronunciations/en/ice-cream-US.mp3"); got != "us" {
		t.Fatalf("unexpected accent %q", got)
	}
	if got := domain.AccentOf("https://x/apple.mp3"); got != "" {
		t.Fatalf("expected no accent, got %q", got)
	}
}
