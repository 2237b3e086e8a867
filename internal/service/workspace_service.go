package service

import (
	"context"
	"time"

	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"

	"github.com/google/uuid"
)

// IWorkspaceService covers the singletons: graph snapshot, master document
// and settings.
type IWorkspaceService interface {
	Graph(ctx context.Context) *dto.GraphResponse
	Document(ctx context.Context) entity.MasterDocument
	UpdateDocument(ctx context.Context, req *dto.UpdateDocumentRequest) (*entity.MasterDocument, error)
	Settings(ctx context.Context) *dto.SettingsResponse
	UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type workspaceService struct {
	store IGraphStore
	now   func() time.Time
}

func NewWorkspaceService(store IGraphStore) IWorkspaceService {
	return &workspaceService{store: store, now: time.Now}
}

func (c *workspaceService) Graph(ctx context.Context) *dto.GraphResponse {
	return &dto.GraphResponse{
		Nodes:    c.store.Nodes(),
		Edges:    c.store.Edges(),
		Document: c.store.Document(),
	}
}

func (c *workspaceService) Document(ctx context.Context) entity.MasterDocument {
	return c.store.Document()
}

func (c *workspaceService) UpdateDocument(ctx context.Context, req *dto.UpdateDocumentRequest) (*entity.MasterDocument, error) {
	doc := entity.MasterDocument{
		Sections:    make([]entity.DocumentSection, 0, len(req.Sections)),
		LastUpdated: c.now().UnixMilli(),
	}
	for _, s := range req.Sections {
		id := s.Id
		if id == "" {
			id = uuid.NewString()
		}
		doc.Sections = append(doc.Sections, entity.DocumentSection{Id: id, Title: s.Title, Content: s.Content})
	}

	if err := c.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func toSettingsResponse(s entity.Settings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		ApiKey:          entity.MaskApiKey(s.ApiKey),
		HasApiKey:       s.ApiKey != "",
		Model:           s.Model,
		Theme:           s.Theme,
		SupportedModels: entity.SupportedModels,
	}
}

func (c *workspaceService) Settings(ctx context.Context) *dto.SettingsResponse {
	return toSettingsResponse(c.store.Settings())
}

func (c *workspaceService) UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	settings, err := c.store.UpdateSettings(ctx, entity.SettingsPatch{
		ApiKey: req.ApiKey,
		Model:  req.Model,
		Theme:  req.Theme,
	})
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}
