package usecase

import "chat-relay/internal/domain"

// buildPromptMessages returns the system instruction followed by the user's
// message as a single turn. The message is forwarded as-is, including "".
func buildPromptMessages(systemPrompt, message string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: message},
	}
}
