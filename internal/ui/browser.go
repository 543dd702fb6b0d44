package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// browser is a full-screen pager over pre-rendered transcript output
type browser struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	header   lipgloss.Style
	footer   lipgloss.Style
}

func newBrowser(title, content string) *browser {
	theme := DefaultTheme()
	return &browser{
		title:   title,
		content: content,
		header: lipgloss.NewStyle().
			Foreground(theme.Heading).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(theme.Border),
		footer: lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

// Init implements tea.Model
func (b *browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return b, tea.Quit
		case "g", "home":
			b.viewport.GotoTop()
			return b, nil
		case "G", "end":
			b.viewport.GotoBottom()
			return b, nil
		}

	case tea.WindowSizeMsg:
		chrome := lipgloss.Height(b.headerView()) + lipgloss.Height(b.footerView())
		if !b.ready {
			b.viewport = viewport.New(msg.Width, msg.Height-chrome)
			b.viewport.SetContent(b.content)
			b.ready = true
		} else {
			b.viewport.Width = msg.Width
			b.viewport.Height = msg.Height - chrome
		}
	}

	var cmd tea.Cmd
	b.viewport, cmd = b.viewport.Update(msg)
	return b, cmd
}

// View implements tea.Model
func (b *browser) View() string {
	if !b.ready {
		return "Loading..."
	}
	return b.headerView() + "\n" + b.viewport.View() + "\n" + b.footerView()
}

func (b *browser) headerView() string {
	return b.header.Render(b.title)
}

func (b *browser) footerView() string {
	percent := 100.0
	if b.ready {
		percent = b.viewport.ScrollPercent() * 100
	}
	return b.footer.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll • g/G top/bottom • q quit", percent))
}

// Browse shows content in a scrollable full-screen view until the user quits
func Browse(title, content string) error {
	p := tea.NewProgram(newBrowser(title, strings.TrimRight(content, "\n")), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
