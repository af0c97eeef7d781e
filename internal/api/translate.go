package api

import "github.com/comigor/jokebot-go/internal/history"

// FromTurn maps one stored turn to exactly one upstream content entry.
func FromTurn(t history.Turn) Content {
	return Content{Role: string(t.Role), Parts: []Part{{Text: t.Text}}}
}

// FromTurns maps a history snapshot to the upstream shape, preserving order.
// It never returns nil so an empty history marshals as [].
func FromTurns(turns []history.Turn) []Content {
	out := make([]Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, FromTurn(t))
	}
	return out
}

// WithUserMessage returns prior followed by a synthesized user entry for message.
// prior is not modified.
func WithUserMessage(prior []Content, message string) []Content {
	out := make([]Content, 0, len(prior)+1)
	out = append(out, prior...)
	return append(out, Content{Role: string(history.RoleUser), Parts: []Part{{Text: message}}})
}
