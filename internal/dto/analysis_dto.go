package dto

import "ai-notecanvas/internal/entity"

type AnalysisRequest struct {
	Mode string `json:"mode" validate:"required"`
	// NodeIds restricts the run to the given notes; empty means all notes.
	NodeIds []string `json:"nodeIds"`
}

type AnalysisResponse struct {
	Mode      string `json:"mode"`
	NoteCount int    `json:"noteCount"`
	Result    string `json:"result"`
}

type ApplyConnectRequest struct {
	Result string `json:"result" validate:"required"`
}

type ApplyConnectResponse struct {
	Document entity.MasterDocument `json:"document"`
}
