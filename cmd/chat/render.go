package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/comigor/jokebot-go/internal/history"
)

type theme struct {
	user   lipgloss.Style
	model  lipgloss.Style
	label  lipgloss.Style
	status lipgloss.Style
	rule   lipgloss.Style
}

func newTheme() theme {
	pink := lipgloss.Color("#ff71ce")
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	muted := lipgloss.Color("#9ca3d8")

	return theme{
		user: lipgloss.NewStyle().
			Foreground(blue).
			PaddingLeft(2),
		model: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		label: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		status: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		rule: lipgloss.NewStyle().
			Foreground(muted),
	}
}

// renderer prints turns as the store reports them. It remembers how many turns it
// has shown so each notification only prints what is new.
type renderer struct {
	mu    sync.Mutex
	w     io.Writer
	theme theme
	shown int
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w, theme: newTheme()}
}

// Update is a history.Listener.
func (r *renderer) Update(turns []history.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(turns) < r.shown {
		fmt.Fprintln(r.w, r.theme.rule.Render("── new conversation ──"))
		r.shown = 0
	}
	for _, t := range turns[r.shown:] {
		fmt.Fprintln(r.w, r.turn(t))
	}
	r.shown = len(turns)
}

// All reprints the whole log.
func (r *renderer) All(turns []history.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range turns {
		fmt.Fprintln(r.w, r.turn(t))
	}
}

func (r *renderer) Status(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, r.theme.status.Render(fmt.Sprintf(format, args...)))
}

func (r *renderer) turn(t history.Turn) string {
	if t.Role == history.RoleUser {
		return r.theme.label.Render("you") + "\n" + r.theme.user.Render(t.Text)
	}
	text := t.Text
	if strings.TrimSpace(text) == "" {
		text = "…"
	}
	return r.theme.label.Render("bot") + "\n" + r.theme.model.Render(text)
}

type command int

const (
	cmdNone command = iota
	cmdReset
	cmdHistory
	cmdQuit
	cmdHelp
	cmdUnknown
)

// parseCommand recognises slash commands. Any other line is a message.
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return cmdNone
	}
	switch strings.ToLower(strings.Fields(line)[0]) {
	case "/reset", "/new":
		return cmdReset
	case "/history":
		return cmdHistory
	case "/quit", "/exit":
		return cmdQuit
	case "/help":
		return cmdHelp
	default:
		return cmdUnknown
	}
}
