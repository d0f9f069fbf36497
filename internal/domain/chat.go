package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the use case
// and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion describes a single upstream chat-completion call.
type Completion struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}
