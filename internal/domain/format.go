package domain

import "html"

// Messages are rendered with the chat's HTML parse mode. Anything a user
// typed must pass through Escape or Bold.

// Escape makes s safe to embed in a message
func Escape(s string) string {
	return html.EscapeString(s)
}

// Bold escapes s and renders it bold
func Bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}

// Mention addresses a player by handle
func Mention(user string) string {
	return "@" + user
}
