package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// Default title for sessions created implicitly by the first message.
	DefaultSessionTitle = "고객 문의"
)
