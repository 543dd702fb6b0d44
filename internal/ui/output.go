package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

// ColorMode selects when output is colored
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ColorModeFromFlags resolves --color/--no-color over the configured mode
func ColorModeFromFlags(color, noColor bool, configured string) ColorMode {
	switch {
	case color:
		return ColorAlways
	case noColor:
		return ColorNever
	}
	switch ColorMode(configured) {
	case ColorAlways, ColorNever:
		return ColorMode(configured)
	}
	return ColorAuto
}

// Output writes the human-readable reports
type Output struct {
	w       io.Writer
	r       *lipgloss.Renderer
	st      styles
	theme   Theme
	colored bool
}

// NewOutput creates an Output on w
func NewOutput(w io.Writer, mode ColorMode) *Output {
	profile := colorProfile(w, mode)
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	theme := DefaultTheme()
	return &Output{
		w:       w,
		r:       r,
		st:      newStyles(r, theme),
		theme:   theme,
		colored: profile != termenv.Ascii,
	}
}

func colorProfile(w io.Writer, mode ColorMode) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		if p := termenv.EnvColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return termenv.NewOutput(f).EnvColorProfile()
	}
	return termenv.Ascii
}

// Colored reports whether escape sequences are written
func (o *Output) Colored() bool { return o.colored }

// Width returns the terminal width, or 80 when w is not a terminal
func (o *Output) Width() int {
	if f, ok := o.w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

// H1 prints "=== text ===" preceded by a blank line
func (o *Output) H1(text string) {
	fmt.Fprintln(o.w)
	fmt.Fprintln(o.w, o.st.heading.Render("=== "+text+" ==="))
}

// Label prints "label: value"
func (o *Output) Label(label, value string) {
	fmt.Fprintf(o.w, "%s %s\n", o.st.label.Render(label+":"), value)
}

// Block prints text as-is with its trailing whitespace trimmed
func (o *Output) Block(text string) {
	fmt.Fprintln(o.w, strings.TrimRight(text, " \t\r\n"))
}

// Stream prints a captured stdout or stderr. Colored output frames it with
// a left border, plain output prints it unchanged.
func (o *Output) Stream(text string, failed bool) {
	if !o.colored {
		o.Block(text)
		return
	}
	border := o.theme.Border
	if failed {
		border = o.theme.Error
	}
	fmt.Fprintln(o.w, renderContentBlock(o.r, text, o.Width(), WithBorderColor(border)))
}

// Success prints text in the success color, without a newline
func (o *Output) Success(text string) { fmt.Fprint(o.w, o.st.success.Render(text)) }

// Error prints text in the error color, without a newline
func (o *Output) Error(text string) { fmt.Fprint(o.w, o.st.failure.Render(text)) }

// Dimmed prints a de-emphasized line
func (o *Output) Dimmed(text string) { fmt.Fprintln(o.w, o.st.dimmed.Render(text)) }

// Entry prints a transcript entry title
func (o *Output) Entry(text string) { fmt.Fprintln(o.w, o.st.entry.Render(text)) }

// Write prints text unstyled
func (o *Output) Write(text string) { fmt.Fprint(o.w, text) }

// Newline ends the current line
func (o *Output) Newline() { fmt.Fprintln(o.w) }

// JSON pretty-prints a JSON document, highlighted when colored. Invalid
// JSON is printed unchanged.
func (o *Output) JSON(data []byte) {
	if !gjson.ValidBytes(data) {
		o.Block(string(data))
		return
	}
	formatted := pretty.Pretty(data)
	if o.colored {
		formatted = pretty.Color(formatted, nil)
	}
	fmt.Fprint(o.w, string(formatted))
	if len(formatted) == 0 || formatted[len(formatted)-1] != '\n' {
		fmt.Fprintln(o.w)
	}
}

// Markdown renders text through glamour at the output's width
func (o *Output) Markdown(text string) {
	renderer, err := MarkdownRenderer(o.Width(), o.colored, o.r.HasDarkBackground())
	if err != nil {
		o.Block(text)
		return
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		o.Block(text)
		return
	}
	o.Block(rendered)
}
