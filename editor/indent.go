// Package editor implements the auto-indent rule shared by the front ends.
package editor

import "strings"

// LeadingIndent returns the run of spaces and tabs that starts line.
func LeadingIndent(line string) string {
	end := strings.IndexFunc(line, func(r rune) bool { return r != ' ' && r != '\t' })
	if end < 0 {
		return line
	}
	return line[:end]
}

// IndentAfterNewline is called right after a newline was inserted at byte
// offset cursor-1 of text. It copies the indentation of the line before the
// newline to the start of the new line and returns the new text and cursor.
// When the character before cursor is not a newline, text is returned
// unchanged.
func IndentAfterNewline(text string, cursor int) (string, int) {
	if cursor <= 0 || cursor > len(text) || text[cursor-1] != '\n' {
		return text, cursor
	}

	prevEnd := cursor - 1
	prevStart := strings.LastIndexByte(text[:prevEnd], '\n') + 1
	indent := LeadingIndent(text[prevStart:prevEnd])
	if indent == "" {
		return text, cursor
	}

	return text[:cursor] + indent + text[cursor:], cursor + len(indent)
}
