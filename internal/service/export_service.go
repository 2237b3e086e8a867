package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"
)

// IExportService produces the backup bundle. The API key is always masked.
type IExportService interface {
	Export(ctx context.Context) *dto.ExportBundle
	// Encode returns the indented bundle and its download file name.
	Encode(ctx context.Context) ([]byte, string, error)
}

type exportService struct {
	store IGraphStore
	now   func() time.Time
}

func NewExportService(store IGraphStore) IExportService {
	return &exportService{store: store, now: time.Now}
}

func BackupFileName(t time.Time) string {
	return fmt.Sprintf("ai-notetaker-backup-%s.json", t.UTC().Format("2006-01-02"))
}

func (c *exportService) Export(ctx context.Context) *dto.ExportBundle {
	settings := c.store.Settings()
	return &dto.ExportBundle{
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		Notes:     c.store.Nodes(),
		Edges:     c.store.Edges(),
		Document:  c.store.Document(),
		Chats:     c.store.Chats(),
		Settings: dto.ExportSettings{
			ApiKey: entity.MaskedApiKey,
			Model:  settings.Model,
			Theme:  settings.Theme,
		},
	}
}

func (c *exportService) Encode(ctx context.Context) ([]byte, string, error) {
	bundle := c.Export(ctx)
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return data, BackupFileName(c.now()), nil
}
