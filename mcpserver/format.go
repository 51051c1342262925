package mcpserver

import (
	"strings"
	"unicode/utf8"

	"github.com/isdmx/runbot/sandbox"
)

// Display limits for a single output block
const (
	maxBlockLen   = 1990
	trimmedLen    = 1981
	trimmedMarker = "[TRIMMED]"
)

// Canned replies
const (
	msgNoOutput = "Your program had no output to STDOUT or STDERR"
	msgTimedOut = "Your program took too long to run."
)

// formatBlock renders raw program output as a code block. Invalid UTF-8 is
// replaced rather than rejected, and oversized output is cut on a rune
// boundary and marked.
func formatBlock(raw []byte) string {
	text := strings.ToValidUTF8(string(raw), "\uFFFD")
	if len(text) < maxBlockLen {
		return "```\n" + text + "\n```"
	}

	cut := trimmedLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return "```" + text[:cut] + trimmedMarker + "```"
}

// formatReply renders the reply for one run of code
func formatReply(code string, outcome sandbox.Outcome) string {
	var b strings.Builder
	b.WriteString("Ran\n")
	b.WriteString(formatBlock([]byte(code)))
	b.WriteString("\nOutput\n")

	switch outcome.Status {
	case sandbox.StatusTimedOut:
		b.WriteString(msgTimedOut)
	case sandbox.StatusCompleted:
		switch {
		case len(outcome.Stdout) > 0 && len(outcome.Stderr) > 0:
			b.WriteString(formatBlock(outcome.Stdout))
			b.WriteString("\n")
			b.WriteString(formatBlock(outcome.Stderr))
		case len(outcome.Stdout) > 0:
			b.WriteString(formatBlock(outcome.Stdout))
		case len(outcome.Stderr) > 0:
			b.WriteString(formatBlock(outcome.Stderr))
		default:
			b.WriteString(msgNoOutput)
		}
	}

	return b.String()
}
