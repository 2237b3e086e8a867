package dto

import "ai-notecanvas/internal/entity"

type ExportSettings struct {
	ApiKey string `json:"apiKey"`
	Model  string `json:"model"`
	Theme  string `json:"theme"`
}

// ExportBundle is the backup file layout.
type ExportBundle struct {
	Timestamp string                `json:"timestamp"`
	Notes     []entity.NoteNode     `json:"notes"`
	Edges     []entity.Edge         `json:"edges"`
	Document  entity.MasterDocument `json:"document"`
	Chats     []entity.ChatMessage  `json:"chats"`
	Settings  ExportSettings        `json:"settings"`
}
