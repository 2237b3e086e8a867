package dto

import "ai-notecanvas/internal/entity"

type DocumentSectionRequest struct {
	Id      string `json:"id"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type UpdateDocumentRequest struct {
	Sections []DocumentSectionRequest `json:"sections" validate:"required,dive"`
}

// ConnectResult is what a successful reconciliation hands back.
type ConnectResult struct {
	SummaryOfChanges string                `json:"summary_of_changes"`
	Document         entity.MasterDocument `json:"document"`
	Node             entity.NoteNode       `json:"node"`
}
