package llama

import (
	"regexp"
	"strings"
)

// EndOfTurnMarker is the sentinel llama-cli prints in conversation mode when
// the reply is complete. Truncated generations may lack it entirely.
const EndOfTurnMarker = "> EOF by user"

var (
	assistantRe = regexp.MustCompile(`(?is)^.*?assistant\s*(.*?)\s*> EOF by user\s*$`)
	specialRe   = regexp.MustCompile(`<\|.*?\|>`)
)

// logPrefixes mark diagnostic lines llama-cli mixes into stdout.
var logPrefixes = []string{"[LOG]", "==="}

// ExtractResponse parses raw llama-cli output into the clean assistant reply.
// The CLI output format is not a contract, so every step is best-effort:
// a leading role line is dropped, an echoed prompt prefix is removed,
// diagnostic lines are filtered, and the text between the "assistant" marker
// and the end-of-turn marker is captured when present. The function never
// fails; when nothing usable remains it returns the empty string and the
// caller decides whether that is an error.
func ExtractResponse(raw, prompt string) string {
	lines := strings.Split(raw, "\n")

	// llama-cli in conversation mode opens with a bare "user" role line.
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "user" {
		lines = lines[1:]
	}
	response := strings.TrimSpace(strings.Join(lines, "\n"))

	// Defend against the subprocess echoing its own input.
	if prompt != "" {
		if trimmed := strings.TrimSpace(prompt); trimmed != "" && strings.HasPrefix(response, trimmed) {
			response = strings.TrimSpace(response[len(trimmed):])
		}
	}

	var kept []string
	for _, line := range strings.Split(response, "\n") {
		if hasLogPrefix(line) {
			continue
		}
		kept = append(kept, line)
	}
	response = strings.TrimSpace(strings.Join(kept, "\n"))

	// Prefer the marker-delimited reply; fall back to the filtered text when
	// the generation was truncated before the end-of-turn marker.
	result := response
	if m := assistantRe.FindStringSubmatch(response); m != nil {
		result = m[1]
	}

	result = specialRe.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// StripSpecialTokens removes <|...|> delimiter tokens and trims the result.
// User input is sanitized with it before touching the prompt, so a crafted
// message cannot inject role markers.
func StripSpecialTokens(text string) string {
	return strings.TrimSpace(specialRe.ReplaceAllString(text, ""))
}

func hasLogPrefix(line string) bool {
	for _, prefix := range logPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
