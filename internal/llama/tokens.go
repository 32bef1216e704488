// Package llama implements the conversation pipeline around the llama.cpp
// command-line runtime: token estimation, prompt assembly, subprocess
// invocation and extraction of the assistant reply from raw CLI output.
package llama

// EstimateTokens approximates the token count of a text without invoking a
// real tokenizer. It measures the share of Cyrillic letters and applies a
// characters-per-token divisor: Cyrillic-heavy text packs fewer characters
// per token than Latin text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	var total, cyrillic int
	for _, r := range text {
		total++
		if isCyrillic(r) {
			cyrillic++
		}
	}

	ratio := float64(cyrillic) / float64(total)
	divisor := 3.6
	switch {
	case ratio > 0.7:
		divisor = 3.3
	case ratio < 0.3:
		divisor = 4.0
	}
	return int(float64(total) / divisor)
}

// EstimateTokenCount returns the length of an already-tokenized sequence.
func EstimateTokenCount(tokens []int) int {
	return len(tokens)
}

func isCyrillic(r rune) bool {
	return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я') || r == 'ё' || r == 'Ё'
}
