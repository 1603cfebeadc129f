package adapter_bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ionut-t/mdlive/decoration"
)

type Theme struct {
	StatusLineStyle        lipgloss.Style
	StatusLabelStyle       lipgloss.Style
	CommandLineStyle       lipgloss.Style
	MessageStyle           lipgloss.Style
	ErrorStyle             lipgloss.Style
	LineNumberStyle        lipgloss.Style
	CurrentLineNumberStyle lipgloss.Style
	CursorStyle            lipgloss.Style
	PlaceholderStyle       lipgloss.Style
	WidgetStyle            lipgloss.Style

	// Classes styles decoration classes. Code-token classes are styled by
	// the chroma highlighter instead.
	Classes map[string]lipgloss.Style
}

var DefaultTheme = Theme{
	StatusLineStyle:        lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")),
	StatusLabelStyle:       lipgloss.NewStyle().Background(lipgloss.Color("26")).Foreground(lipgloss.Color("255")),
	CommandLineStyle:       lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("255")),
	MessageStyle:           lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	ErrorStyle:             lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	LineNumberStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(4).Align(lipgloss.Right),
	CurrentLineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(4).Align(lipgloss.Right),
	CursorStyle:            lipgloss.NewStyle().Background(lipgloss.Color("252")).Foreground(lipgloss.Color("0")),
	PlaceholderStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	WidgetStyle:            lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),

	Classes: map[string]lipgloss.Style{
		decoration.HeadingClass(1): lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).Underline(true),
		decoration.HeadingClass(2): lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		decoration.HeadingClass(3): lipgloss.NewStyle().Foreground(lipgloss.Color("177")).Bold(true),
		decoration.HeadingClass(4): lipgloss.NewStyle().Foreground(lipgloss.Color("177")),
		decoration.HeadingClass(5): lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		decoration.HeadingClass(6): lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Faint(true),

		decoration.ClassQuote:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		decoration.ClassListItem:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		decoration.ClassCodeBlock:   lipgloss.NewStyle().Background(lipgloss.Color("235")),
		decoration.ClassFenceMarker: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("235")),

		decoration.ClassStrong:        lipgloss.NewStyle().Bold(true),
		decoration.ClassEmphasis:      lipgloss.NewStyle().Italic(true),
		decoration.ClassStrikethrough: lipgloss.NewStyle().Strikethrough(true),
		decoration.ClassLink:          lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b")).Underline(true),
		decoration.ClassInlineCode:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("236")),
		decoration.ClassFenceInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		decoration.ClassImage:         lipgloss.NewStyle().Foreground(lipgloss.Color("73")),
	},
}

// styleFor returns the style of a decoration class. The boolean is false
// when neither the theme nor the highlighter knows the class.
func (m *Model) styleFor(class string) (lipgloss.Style, bool) {
	if strings.HasPrefix(class, decoration.CodeTokenPrefix) {
		if m.highlighter == nil {
			return lipgloss.Style{}, false
		}
		return m.highlighter.StyleForClass(class)
	}
	style, ok := m.theme.Classes[class]
	return style, ok
}
