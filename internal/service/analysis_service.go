package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ai-notecanvas/internal/constant"
	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"
	"ai-notecanvas/pkg/llm"
)

var (
	ErrNoNotesSelected       = errors.New("no notes selected, select notes or analyze all notes")
	ErrInvalidAnalysisResult = errors.New("analysis result is not a document update")
)

var fencedBlock = regexp.MustCompile("```(?:json)?([\\s\\S]*?)```")

// IAnalysisService runs insight modes over a set of notes.
type IAnalysisService interface {
	Analyze(ctx context.Context, req *dto.AnalysisRequest) (*dto.AnalysisResponse, error)
	// ApplyConnect writes the document carried by a "connect" analysis result.
	ApplyConnect(ctx context.Context, req *dto.ApplyConnectRequest) (*dto.ApplyConnectResponse, error)
}

type analysisService struct {
	store   IGraphStore
	gateway *llm.Gateway
	now     func() time.Time
}

func NewAnalysisService(store IGraphStore, gateway *llm.Gateway) IAnalysisService {
	return &analysisService{store: store, gateway: gateway, now: time.Now}
}

func (c *analysisService) targets(ids []string) []entity.NoteNode {
	nodes := c.store.Nodes()
	if len(ids) == 0 {
		return nodes
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]entity.NoteNode, 0, len(ids))
	for _, n := range nodes {
		if _, ok := wanted[n.Id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// FormatNotes renders notes the way every analysis prompt expects them.
func FormatNotes(nodes []entity.NoteNode) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		date := time.UnixMilli(n.Data.CreatedAt).UTC().Format("2006-01-02")
		parts = append(parts, fmt.Sprintf("Note (%s): %s", date, n.Data.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func (c *analysisService) Analyze(ctx context.Context, req *dto.AnalysisRequest) (*dto.AnalysisResponse, error) {
	if _, ok := constant.AnalysisPrompts[req.Mode]; !ok {
		return nil, llm.ErrUnknownMode
	}

	nodes := c.targets(req.NodeIds)
	if len(nodes) == 0 {
		return nil, ErrNoNotesSelected
	}

	result, err := c.gateway.RunAnalysis(ctx, FormatNotes(nodes), req.Mode, c.store.Settings())
	if err != nil {
		return nil, err
	}

	return &dto.AnalysisResponse{
		Mode:      req.Mode,
		NoteCount: len(nodes),
		Result:    result,
	}, nil
}

func (c *analysisService) ApplyConnect(ctx context.Context, req *dto.ApplyConnectRequest) (*dto.ApplyConnectResponse, error) {
	raw := req.Result
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	var parsed reconciliation
	if err := llm.DecodeJSON(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysisResult, err)
	}
	if parsed.Sections == nil {
		return nil, ErrInvalidAnalysisResult
	}

	doc := entity.MasterDocument{
		Sections:    normalizeSections(*parsed.Sections),
		LastUpdated: c.now().UnixMilli(),
	}
	if err := c.store.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return &dto.ApplyConnectResponse{Document: doc}, nil
}
