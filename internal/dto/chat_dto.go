package dto

import "ai-notecanvas/internal/entity"

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type AskResponse struct {
	Reply entity.ChatMessage `json:"reply"`
}

type ChatHistoryResponse struct {
	Messages []entity.ChatMessage `json:"messages"`
}
