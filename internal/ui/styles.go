package ui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
)

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// Theme is the report palette (Catppuccin Latte/Mocha)
type Theme struct {
	Heading lipgloss.AdaptiveColor
	Label   lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Entry   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
}

// DefaultTheme returns the default palette
func DefaultTheme() Theme {
	return Theme{
		Heading: lipgloss.AdaptiveColor{Light: "#04a5e5", Dark: "#89dceb"}, // Sky
		Label:   lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}, // Yellow
		Success: lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}, // Green
		Error:   lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}, // Red
		Muted:   lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#a6adc8"}, // Subtext 0
		Entry:   lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}, // Blue
		Border:  lipgloss.AdaptiveColor{Light: "#acb0be", Dark: "#585b70"}, // Surface 2
	}
}

// styles holds the lipgloss styles of one Output, bound to its renderer
type styles struct {
	heading lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	dimmed  lipgloss.Style
	entry   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, theme Theme) styles {
	return styles{
		heading: r.NewStyle().Foreground(theme.Heading).Bold(true),
		label:   r.NewStyle().Foreground(theme.Label),
		success: r.NewStyle().Foreground(theme.Success).Bold(true),
		failure: r.NewStyle().Foreground(theme.Error).Bold(true),
		dimmed:  r.NewStyle().Foreground(theme.Muted).Faint(true),
		entry:   r.NewStyle().Foreground(theme.Entry).Bold(true),
	}
}

// MarkdownRenderer returns a glamour renderer for message text. Without
// color it falls back to glamour's plain ASCII style.
func MarkdownRenderer(width int, color, dark bool) (*glamour.TermRenderer, error) {
	if !color {
		return glamour.NewTermRenderer(glamour.WithStandardStyle("ascii"), glamour.WithWordWrap(width))
	}
	return glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyleConfig(dark)),
		glamour.WithWordWrap(width),
	)
}

// markdownStyleConfig is a compact style: no document margin, colored
// headings and code, the rest in the text color.
func markdownStyleConfig(dark bool) ansi.StyleConfig {
	textColor, mutedColor := "#1F2937", "#6B7280"
	headingColor, codeColor, linkColor, emphColor := "#0891B2", "#374151", "#2563EB", "#D97706"
	if dark {
		textColor, mutedColor = "#F9FAFB", "#9CA3AF"
		headingColor, codeColor, linkColor, emphColor = "#22D3EE", "#D1D5DB", "#60A5FA", "#FDE047"
	}

	heading := func(prefix string) ansi.StyleBlock {
		return ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			Prefix: prefix,
			Color:  stringPtr(headingColor),
			Bold:   boolPtr(true),
		}}
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(textColor)},
			Margin:         uintPtr(0),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(mutedColor), Italic: boolPtr(true), Prefix: "┃ "},
			Indent:         uintPtr(1),
		},
		Heading: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
			BlockSuffix: "\n",
			Color:       stringPtr(headingColor),
			Bold:        boolPtr(true),
		}},
		H1:     heading("# "),
		H2:     heading("## "),
		H3:     heading("### "),
		H4:     heading("#### "),
		H5:     heading("##### "),
		H6:     heading("###### "),
		Emph:   ansi.StylePrimitive{Color: stringPtr(emphColor), Italic: boolPtr(true)},
		Strong: ansi.StylePrimitive{Bold: boolPtr(true)},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr(mutedColor),
			Format: "\n─────────────────────────────────────────\n",
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Task:        ansi.StyleTask{Ticked: "[✓] ", Unticked: "[ ] "},
		Link:        ansi.StylePrimitive{Color: stringPtr(linkColor), Underline: boolPtr(true)},
		LinkText:    ansi.StylePrimitive{Color: stringPtr(linkColor), Bold: boolPtr(true)},
		Code:        ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: stringPtr(codeColor)}},
		CodeBlock: ansi.StyleCodeBlock{StyleBlock: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(codeColor)},
			Margin:         uintPtr(0),
		}},
		Table: ansi.StyleTable{
			CenterSeparator: stringPtr("┼"),
			ColumnSeparator: stringPtr("│"),
			RowSeparator:    stringPtr("─"),
		},
		Text:      ansi.StylePrimitive{Color: stringPtr(textColor)},
		Paragraph: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: stringPtr(textColor)}},
	}
}
