package dto

import "ai-notecanvas/internal/entity"

type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p PositionRequest) ToEntity() entity.Position {
	var pos entity.Position
	if p.X != nil {
		pos.X = *p.X
	}
	if p.Y != nil {
		pos.Y = *p.Y
	}
	return pos
}

type CreateNodeRequest struct {
	Position PositionRequest `json:"position" validate:"required"`
	Content  string          `json:"content"`
}

type UpdateNodeContentRequest struct {
	Id      string
	Content *string `json:"content" validate:"required"`
}

type UpdateNodeTitleRequest struct {
	Id    string
	Title *string `json:"title" validate:"required"`
	// IsManual defaults to true; only the auto-title path writes false.
	IsManual *bool `json:"isManual"`
}

type MoveNodeRequest struct {
	Id       string
	Position PositionRequest `json:"position" validate:"required"`
}

type SetNodeViewRequest struct {
	Id          string
	IsMinimized *bool `json:"isMinimized"`
	IsExpanded  *bool `json:"isExpanded"`
}

type UpdateNodeStatusRequest struct {
	Id     string
	Status string `json:"status" validate:"required,oneof=draft connected"`
}

type ConnectNodesRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

type GraphResponse struct {
	Nodes    []entity.NoteNode     `json:"nodes"`
	Edges    []entity.Edge         `json:"edges"`
	Document entity.MasterDocument `json:"document"`
}

type NodeResponse struct {
	Node     entity.NoteNode   `json:"node"`
	Upstream []entity.NoteNode `json:"upstream"`
}
