package entity

const (
	NodeTypeNote = "noteNode"

	NoteStatusDraft     = "draft"
	NoteStatusConnected = "connected"
	// NoteStatusPending is never persisted; it only travels in change events
	// while a connect request is in flight.
	NoteStatusPending = "pending"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NoteNodeData struct {
	Title         string        `json:"title,omitempty"`
	Content       string        `json:"content"`
	Tags          []string      `json:"tags"`
	Status        string        `json:"status"`
	ChatHistory   []ChatMessage `json:"chatHistory"`
	CreatedAt     int64         `json:"createdAt"`
	UpdatedAt     int64         `json:"updatedAt"`
	IsMinimized   bool          `json:"isMinimized,omitempty"`
	IsExpanded    bool          `json:"isExpanded,omitempty"`
	IsTitleManual bool          `json:"isTitleManual,omitempty"`
}

// NoteNode mirrors the canvas node shape so records can be handed to the UI
// without translation.
type NoteNode struct {
	Id       string       `json:"id"`
	Type     string       `json:"type"`
	Position Position     `json:"position"`
	Data     NoteNodeData `json:"data"`
}

// Clone returns a deep copy that shares no slices with n.
func (n NoteNode) Clone() NoteNode {
	c := n
	c.Data.Tags = append([]string{}, n.Data.Tags...)
	c.Data.ChatHistory = append([]ChatMessage{}, n.Data.ChatHistory...)
	return c
}
