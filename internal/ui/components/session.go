package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	sessiondto "vocabhub/internal/modules/session/dto"
	"vocabhub/internal/ui/theme"
)

// SessionHeader renders the title line with progress and load metadata.
func SessionHeader(label string, v sessiondto.View) string {
	parts := []string{theme.Title.Render(label)}
	if v.Total > 0 {
		done := v.Cursor
		if done > v.Total {
			done = v.Total
		}
		bar := progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Lavender)), progress.WithWidth(20), progress.WithoutPercentage())
		parts = append(parts, bar.ViewAs(float64(done)/float64(v.Total)), theme.Muted.Render(fmt.Sprintf("%d/%d", done, v.Total)))
	}
	if len(v.Metadata) > 0 {
		keys := make([]string, 0, len(v.Metadata))
		for k := range v.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		meta := make([]string, 0, len(keys))
		for _, k := range keys {
			meta = append(meta, fmt.Sprintf("%s %d", strings.ReplaceAll(k, "_", " "), v.Metadata[k]))
		}
		parts = append(parts, theme.Muted.Render(strings.Join(meta, " · ")))
	}
	if v.Busy {
		parts = append(parts, theme.Muted.Render("saving..."))
	}
	if !v.LoggedIn {
		parts = append(parts, theme.Bad.Render("signed out"))
	}
	return strings.Join(parts, "  ")
}

// Headline renders the centred title/copy block shown when no item is on
// screen.
func Headline(v sessiondto.View, width, height int, hint string) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(v.Title) + "\n")
	if v.Copy != "" {
		sb.WriteString(theme.Muted.Render(v.Copy) + "\n")
	}
	if hint != "" {
		sb.WriteString("\n" + theme.Muted.Render(hint))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, sb.String())
}

// WarningLine is empty when the view carries no warning.
func WarningLine(v sessiondto.View) string {
	if v.Warning == "" {
		return ""
	}
	return theme.Warn.Render("! " + v.Warning)
}

// SavedMark renders the saved-state indicator of the current item.
func SavedMark(item *sessiondto.ItemView) string {
	if item == nil {
		return ""
	}
	if item.Saved {
		return theme.Hot.Render("★ saved")
	}
	return theme.Muted.Render("☆")
}
