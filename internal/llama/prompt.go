package llama

import (
	"sort"
	"strings"

	"github.com/Timtroll/llm/internal/domain"
)

// SystemPrompt is the fixed instruction prepended to every prompt.
const SystemPrompt = "Ты — русскоязычный помощник. Отвечай строго на русском языке, лаконично, понятно и в формате Markdown.\n"

// BuildPrompt renders an ordered message sequence into the textual prompt fed
// to the model: the system instruction followed by one <|role|>content line
// per message, in ascending timestamp order.
//
// The function is pure and deterministic. Identical input always yields
// byte-identical output, which ExtractResponse relies on when stripping the
// echoed prompt from raw CLI output.
func BuildPrompt(messages []domain.Message) string {
	ordered := make([]domain.Message, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp < ordered[j].Timestamp
	})

	var sb strings.Builder
	sb.WriteString(SystemPrompt)
	for _, msg := range ordered {
		sb.WriteString("<|")
		sb.WriteString(string(msg.Role))
		sb.WriteString("|>")
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
