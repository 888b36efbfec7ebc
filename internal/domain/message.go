package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the provider-agnostic chat message handed to text generators.
type Message struct {
	Role    Role
	Content string
}
