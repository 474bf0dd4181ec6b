package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/lsx/internal/models"
)

var styles = NewPalette("#02A9FF", "#04B575", "#FF0000", "#FFA500", "#626262")

// Brand colors used to tag which service a value came from.
var serviceColors = map[models.ServiceName]string{
	models.AniList:     "#02A9FF",
	models.MyAnimeList: "#2E51A2",
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	card  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		card:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 2),
	}
}

// service renders a service's display name in its brand color.
func (p *Palette) service(name models.ServiceName) string {
	color, ok := serviceColors[name]
	if !ok {
		return name.Display()
	}
	return NewBold(color).Render(name.Display())
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
