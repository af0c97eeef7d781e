// Package api defines the JSON bodies exchanged between the chat client and the relay.
package api

import "strings"

// ChatPath is the relay route that accepts a Turn Request.
const ChatPath = "/api/chat"

// Part is one piece of an upstream content entry. Only text parts exist here.
type Part struct {
	Text string `json:"text"`
}

// Content is a turn in the upstream shape: a role plus its parts.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Text joins the text of every part.
func (c Content) Text() string {
	if len(c.Parts) == 1 {
		return c.Parts[0].Text
	}
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// ChatRequest is the Turn Request. History holds the conversation before Message.
type ChatRequest struct {
	Message string    `json:"message"`
	History []Content `json:"history"`
}

// ChatResponse is the successful Turn Response. Text is a pointer so an absent
// field can be told apart from an empty reply.
type ChatResponse struct {
	Text *string `json:"text"`
}

// ErrorResponse is the failed Turn Response.
type ErrorResponse struct {
	Error string `json:"error"`
}
