package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BannerField is one labelled line of the banner.
type BannerField struct {
	Label string
	Value string
}

// Banner renders a bordered box with a title and aligned fields. With the
// no-color theme the box is drawn without colors.
func Banner(title string, fields ...BannerField) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}

	var b strings.Builder
	b.WriteString(ColorBold() + ColorPrimary() + title + ColorReset())
	for _, f := range fields {
		fmt.Fprintf(&b, "\n%s%-*s%s  %s%s%s",
			ColorSecondary(), width, f.Label, ColorReset(),
			ColorBlue(), f.Value, ColorReset())
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(GetCurrentTheme().Accent).
		Padding(0, 1)
	return style.Render(b.String())
}
