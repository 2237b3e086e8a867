package entity

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"

	GlobalChatId = "global"
)

type ChatMessage struct {
	Id        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ChatThread is the knowledge-base wide conversation. Node-scoped threads
// live inside NoteNodeData.ChatHistory.
type ChatThread struct {
	Id       string        `json:"id"`
	Messages []ChatMessage `json:"messages"`
}
