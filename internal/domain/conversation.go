package domain

// DefaultConversationID is returned when the caller supplies no identifier.
const DefaultConversationID = "new-conversation"

// ResolveConversationID echoes a caller-supplied identifier unchanged, or the
// default when it is empty. Identifiers are opaque and never used for lookups.
func ResolveConversationID(id string) string {
	if id == "" {
		return DefaultConversationID
	}
	return id
}
