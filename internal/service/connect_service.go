package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"ai-notecanvas/internal/constant"
	"ai-notecanvas/internal/dto"
	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/pkg/events"
	"ai-notecanvas/pkg/llm"

	"github.com/google/uuid"
)

var (
	ErrConnectInProgress     = errors.New("connect already in progress for this note")
	ErrInvalidReconciliation = errors.New("reconciliation result has no sections")
)

// reconciliation is the structured answer of the connect prompt. Sections
// is a pointer so a missing or null field can be told apart from [].
type reconciliation struct {
	Sections         *[]entity.DocumentSection `json:"sections"`
	SummaryOfChanges string                    `json:"summary_of_changes"`
}

// IConnectService merges a note into the master document through the LLM.
type IConnectService interface {
	ConnectNote(ctx context.Context, nodeId string) (*dto.ConnectResult, error)
	IsPending(nodeId string) bool
}

type connectService struct {
	mu      sync.Mutex
	pending map[string]struct{}

	store     IGraphStore
	gateway   *llm.Gateway
	publisher events.Publisher
	logger    logger.ILogger
	now       func() time.Time
}

func NewConnectService(store IGraphStore, gateway *llm.Gateway, publisher events.Publisher, log logger.ILogger) IConnectService {
	return &connectService{
		pending:   make(map[string]struct{}),
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (c *connectService) IsPending(nodeId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[nodeId]
	return ok
}

func (c *connectService) begin(nodeId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[nodeId]; ok {
		return false
	}
	c.pending[nodeId] = struct{}{}
	return true
}

func (c *connectService) end(nodeId string) {
	c.mu.Lock()
	delete(c.pending, nodeId)
	c.mu.Unlock()
}

func (c *connectService) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		c.logger.Warn("ConnectService", "Failed to publish connect event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

// ConnectNote runs one reconciliation. While it is in flight the note is
// reported as pending; nothing is written unless the model returns a usable
// document and the note still exists.
func (c *connectService) ConnectNote(ctx context.Context, nodeId string) (*dto.ConnectResult, error) {
	node, found := c.store.Node(nodeId)
	if !found {
		return nil, ErrNodeNotFound
	}
	if !c.begin(nodeId) {
		return nil, ErrConnectInProgress
	}
	defer c.end(nodeId)

	c.emit(ctx, events.ConnectStarted, map[string]interface{}{
		"node_id": nodeId,
		"status":  entity.NoteStatusPending,
	})

	result, err := c.reconcile(ctx, node)
	if err != nil {
		current := node.Data.Status
		if n, ok := c.store.Node(nodeId); ok {
			current = n.Data.Status
		}
		c.logger.Warn("ConnectService", "Connect failed", map[string]interface{}{
			"node_id": nodeId,
			"error":   err.Error(),
		})
		c.emit(ctx, events.ConnectFailed, map[string]interface{}{
			"node_id": nodeId,
			"status":  current,
			"error":   err.Error(),
		})
		return nil, err
	}

	c.emit(ctx, events.ConnectCompleted, map[string]interface{}{
		"node_id":            nodeId,
		"status":             entity.NoteStatusConnected,
		"summary_of_changes": result.SummaryOfChanges,
	})
	return result, nil
}

func (c *connectService) reconcile(ctx context.Context, node entity.NoteNode) (*dto.ConnectResult, error) {
	docJSON, err := json.MarshalIndent(c.store.Document(), "", "  ")
	if err != nil {
		return nil, err
	}

	messages := []llm.Message{
		{Role: entity.ChatRoleSystem, Content: constant.ConnectSystemPrompt},
		{Role: entity.ChatRoleUser, Content: constant.ConnectUserPrompt(string(docJSON), node.Data.Content)},
	}

	parsed, err := llm.CompleteStructured[reconciliation](ctx, c.gateway, messages, c.store.Settings())
	if err != nil {
		return nil, err
	}
	if parsed.Sections == nil {
		return nil, ErrInvalidReconciliation
	}

	// The note may have been deleted while the model was answering.
	if _, ok := c.store.Node(node.Id); !ok {
		return nil, ErrNodeNotFound
	}

	doc := entity.MasterDocument{
		Sections:    normalizeSections(*parsed.Sections),
		LastUpdated: c.now().UnixMilli(),
	}

	// Persistence failures are logged by the store; memory is already
	// committed, so the connect itself succeeded.
	_ = c.store.UpdateDocument(ctx, doc)
	_ = c.store.UpdateNodeStatus(ctx, node.Id, entity.NoteStatusConnected)

	updated, ok := c.store.Node(node.Id)
	if !ok {
		updated = node
	}

	return &dto.ConnectResult{
		SummaryOfChanges: parsed.SummaryOfChanges,
		Document:         c.store.Document(),
		Node:             updated,
	}, nil
}

func normalizeSections(sections []entity.DocumentSection) []entity.DocumentSection {
	out := make([]entity.DocumentSection, 0, len(sections))
	for _, s := range sections {
		if s.Id == "" {
			s.Id = uuid.NewString()
		}
		out = append(out, s)
	}
	return out
}
