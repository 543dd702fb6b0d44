package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// blockRenderer renders a captured stream as a bordered block
type blockRenderer struct {
	borderColor  lipgloss.AdaptiveColor
	paddingLeft  int
	paddingRight int
	width        int
	fullWidth    bool
}

// renderingOption configures block rendering
type renderingOption func(*blockRenderer)

// WithFullWidth makes the block take the full container width
func WithFullWidth() renderingOption {
	return func(c *blockRenderer) {
		c.fullWidth = true
	}
}

// WithBorderColor sets the color of the left border
func WithBorderColor(color lipgloss.AdaptiveColor) renderingOption {
	return func(c *blockRenderer) {
		c.borderColor = color
	}
}

// WithPaddingLeft sets the space between the border and the content
func WithPaddingLeft(padding int) renderingOption {
	return func(c *blockRenderer) {
		c.paddingLeft = padding
	}
}

func renderContentBlock(r *lipgloss.Renderer, content string, containerWidth int, options ...renderingOption) string {
	renderer := &blockRenderer{
		paddingLeft:  1,
		paddingRight: 1,
		width:        containerWidth,
	}
	for _, option := range options {
		option(renderer)
	}

	style := r.NewStyle().
		PaddingLeft(renderer.paddingLeft).
		PaddingRight(renderer.paddingRight).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderLeftForeground(renderer.borderColor)

	if renderer.fullWidth {
		style = style.Width(renderer.width)
	} else if w := lipgloss.Width(content) + renderer.paddingLeft + renderer.paddingRight + 1; w > renderer.width {
		style = style.Width(renderer.width)
	}

	return style.Render(strings.TrimRight(content, " \t\r\n"))
}
