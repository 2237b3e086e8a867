package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/repository"
	"ai-notecanvas/internal/repository/contract"
	"ai-notecanvas/pkg/events"
	"ai-notecanvas/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrSelfLoop      = errors.New("cannot connect a note to itself")
	ErrInvalidStatus = errors.New("invalid note status")
	ErrEdgeNotFound  = errors.New("edge not found")
)

// IGraphStore is the single owner of canvas state. Mutations apply to memory
// in call order, publish a change event, then persist; the returned error is
// the persistence result and may be ignored by fire-and-forget callers.
type IGraphStore interface {
	LoadInitialData(ctx context.Context) error

	AddNode(ctx context.Context, position entity.Position) (entity.NoteNode, error)
	UpdateNodeContent(ctx context.Context, id, content string) error
	UpdateNodeTitle(ctx context.Context, id, title string, isManual bool) error
	ApplyAutoTitle(ctx context.Context, id, title string) (bool, error)
	UpdateNodeStatus(ctx context.Context, id, status string) error
	MoveNode(ctx context.Context, id string, position entity.Position) error
	SetNodeView(ctx context.Context, id string, minimized, expanded *bool) error
	DeleteNode(ctx context.Context, id string) error
	AddNodeChatMessage(ctx context.Context, nodeId string, msg entity.ChatMessage) error

	Connect(ctx context.Context, source, target string) (entity.Edge, error)
	Disconnect(ctx context.Context, edgeId string) error

	UpdateDocument(ctx context.Context, doc entity.MasterDocument) error
	UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error)
	AddChatMessage(ctx context.Context, msg entity.ChatMessage) error
	ClearChat(ctx context.Context) error

	Nodes() []entity.NoteNode
	Node(id string) (entity.NoteNode, bool)
	Edges() []entity.Edge
	UpstreamNodes(id string) []entity.NoteNode
	Document() entity.MasterDocument
	Settings() entity.Settings
	Chats() []entity.ChatMessage

	Close() error
}

type writeJob struct {
	collection string
	write      func(ctx context.Context) error
	ctx        context.Context
	done       chan error
}

type graphStore struct {
	mu       sync.RWMutex
	nodes    []entity.NoteNode
	edges    []entity.Edge
	document entity.MasterDocument
	settings entity.Settings
	chats    []entity.ChatMessage
	closed   bool

	db        *repository.NoteDB
	publisher events.Publisher
	logger    logger.ILogger
	now       func() time.Time

	writes     chan writeJob
	writerDone chan struct{}
}

type GraphStoreOption func(*graphStore)

// WithClock replaces the wall clock. Tests use it.
func WithClock(now func() time.Time) GraphStoreOption {
	return func(s *graphStore) {
		s.now = now
	}
}

func NewGraphStore(db *repository.NoteDB, publisher events.Publisher, log logger.ILogger, opts ...GraphStoreOption) IGraphStore {
	s := &graphStore{
		nodes:      []entity.NoteNode{},
		edges:      []entity.Edge{},
		document:   entity.DefaultMasterDocument(),
		settings:   entity.DefaultSettings(),
		chats:      []entity.ChatMessage{},
		db:         db,
		publisher:  publisher,
		logger:     log,
		now:        time.Now,
		writes:     make(chan writeJob, 256),
		writerDone: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}

	go s.runWriter()
	return s
}

// runWriter applies writes in the order mutations enqueued them, so a later
// snapshot of a record never gets overwritten by an earlier one.
func (s *graphStore) runWriter() {
	defer close(s.writerDone)
	for job := range s.writes {
		job.done <- s.runJob(job)
	}
}

func (s *graphStore) runJob(job writeJob) error {
	if err := job.write(job.ctx); err != nil {
		metrics.PersistErrors.WithLabelValues(job.collection).Inc()
		s.logger.Error("GraphStore", "Failed to persist change", map[string]interface{}{
			"collection": job.collection,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// enqueue must be called with mu held. The returned channel yields the
// persistence result.
func (s *graphStore) enqueue(ctx context.Context, collection string, write func(ctx context.Context) error) <-chan error {
	job := writeJob{
		collection: collection,
		write:      write,
		ctx:        context.WithoutCancel(ctx),
		done:       make(chan error, 1),
	}
	if s.closed {
		job.done <- s.runJob(job)
		return job.done
	}
	s.writes <- job
	return job.done
}

// publish must be called with mu held so event sequence follows mutation order.
func (s *graphStore) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	metrics.StoreMutations.WithLabelValues(eventType).Inc()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("GraphStore", "Failed to publish change event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *graphStore) nowMillis() int64 {
	return s.now().UnixMilli()
}

// bump never moves a timestamp backwards, whatever the wall clock does.
func (s *graphStore) bump(prev int64) int64 {
	now := s.nowMillis()
	if now < prev {
		return prev
	}
	return now
}

func (s *graphStore) findNode(id string) int {
	for i := range s.nodes {
		if s.nodes[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *graphStore) findEdge(id string) int {
	for i := range s.edges {
		if s.edges[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *graphStore) LoadInitialData(ctx context.Context) error {
	nodes, err := s.db.GetNodes(ctx)
	if err != nil {
		return err
	}
	edges, err := s.db.GetEdges(ctx)
	if err != nil {
		return err
	}
	doc, err := s.db.GetDocument(ctx)
	if err != nil {
		return err
	}
	settings, keyLost, err := s.db.GetSettings(ctx)
	if err != nil {
		return err
	}
	chats, err := s.db.GetChats(ctx)
	if err != nil {
		return err
	}

	if keyLost {
		s.logger.Warn("GraphStore", "Stored API key could not be unsealed, it was cleared", nil)
	}

	known := make(map[string]struct{}, len(nodes))
	for i := range nodes {
		normalizeNode(&nodes[i])
		known[nodes[i].Id] = struct{}{}
	}

	kept := make([]entity.Edge, 0, len(edges))
	var orphans []string
	for _, e := range edges {
		_, okSource := known[e.Source]
		_, okTarget := known[e.Target]
		if okSource && okTarget {
			kept = append(kept, e)
		} else {
			orphans = append(orphans, e.Id)
		}
	}

	s.mu.Lock()
	s.nodes = nodes
	s.edges = kept
	if doc != nil {
		s.document = *doc
	} else {
		s.document = entity.DefaultMasterDocument()
	}
	if settings != nil {
		s.settings = entity.DefaultSettings().Merge(settings.AsPatch())
	} else {
		s.settings = entity.DefaultSettings()
	}
	if chats != nil {
		s.chats = chats.Messages
	} else {
		s.chats = []entity.ChatMessage{}
	}

	s.publish(ctx, events.GraphLoaded, map[string]interface{}{
		"nodes":          len(s.nodes),
		"edges":          len(s.edges),
		"orphaned_edges": len(orphans),
	})

	var done <-chan error
	if len(orphans) > 0 {
		done = s.enqueue(ctx, contract.CollectionEdges, func(ctx context.Context) error {
			for _, id := range orphans {
				if err := s.db.DeleteEdge(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
	}
	s.mu.Unlock()

	s.logger.Info("GraphStore", "Initial data loaded", map[string]interface{}{
		"nodes":          len(nodes),
		"edges":          len(kept),
		"orphaned_edges": len(orphans),
	})

	if done != nil {
		return <-done
	}
	return nil
}

func normalizeNode(n *entity.NoteNode) {
	if n.Type == "" {
		n.Type = entity.NodeTypeNote
	}
	if n.Data.Tags == nil {
		n.Data.Tags = []string{}
	}
	if n.Data.ChatHistory == nil {
		n.Data.ChatHistory = []entity.ChatMessage{}
	}
	if n.Data.Status != entity.NoteStatusConnected {
		n.Data.Status = entity.NoteStatusDraft
	}
}

// Nodes

func (s *graphStore) AddNode(ctx context.Context, position entity.Position) (entity.NoteNode, error) {
	s.mu.Lock()
	now := s.nowMillis()
	node := entity.NoteNode{
		Id:       uuid.NewString(),
		Type:     entity.NodeTypeNote,
		Position: position,
		Data: entity.NoteNodeData{
			Content:     "",
			Tags:        []string{},
			Status:      entity.NoteStatusDraft,
			ChatHistory: []entity.ChatMessage{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	s.nodes = append(s.nodes, node)

	snapshot := node.Clone()
	s.publish(ctx, events.NodeCreated, map[string]interface{}{"node": snapshot})
	done := s.enqueue(ctx, contract.CollectionNodes, func(ctx context.Context) error {
		return s.db.SaveNode(ctx, snapshot)
	})
	s.mu.Unlock()

	return snapshot, <-done
}

// mutateNode applies fn to the node with the given id. Unknown ids are a
// silent no-op. fn returns false to skip the change entirely.
func (s *graphStore) mutateNode(ctx context.Context, id, eventType string, fn func(n *entity.NoteNode) bool) (bool, error) {
	s.mu.Lock()
	i := s.findNode(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if !fn(&s.nodes[i]) {
		s.mu.Unlock()
		return false, nil
	}

	snapshot := s.nodes[i].Clone()
	s.publish(ctx, eventType, map[string]interface{}{"node": snapshot})
	done := s.enqueue(ctx, contract.CollectionNodes, func(ctx context.Context) error {
		return s.db.SaveNode(ctx, snapshot)
	})
	s.mu.Unlock()

	return true, <-done
}

func (s *graphStore) UpdateNodeContent(ctx context.Context, id, content string) error {
	_, err := s.mutateNode(ctx, id, events.NodeUpdated, func(n *entity.NoteNode) bool {
		n.Data.Content = content
		n.Data.UpdatedAt = s.bump(n.Data.UpdatedAt)
		return true
	})
	return err
}

// UpdateNodeTitle sets the title. A manual title marks the node for good;
// passing isManual=false keeps whatever flag the node already has.
func (s *graphStore) UpdateNodeTitle(ctx context.Context, id, title string, isManual bool) error {
	_, err := s.mutateNode(ctx, id, events.NodeUpdated, func(n *entity.NoteNode) bool {
		n.Data.Title = title
		if isManual {
			n.Data.IsTitleManual = true
		}
		n.Data.UpdatedAt = s.bump(n.Data.UpdatedAt)
		return true
	})
	return err
}

// ApplyAutoTitle writes a generated title unless the node is gone or the
// user titled it in the meantime.
func (s *graphStore) ApplyAutoTitle(ctx context.Context, id, title string) (bool, error) {
	return s.mutateNode(ctx, id, events.NodeUpdated, func(n *entity.NoteNode) bool {
		if n.Data.IsTitleManual {
			return false
		}
		n.Data.Title = title
		n.Data.UpdatedAt = s.bump(n.Data.UpdatedAt)
		return true
	})
}

func (s *graphStore) UpdateNodeStatus(ctx context.Context, id, status string) error {
	if status != entity.NoteStatusDraft && status != entity.NoteStatusConnected {
		return ErrInvalidStatus
	}
	_, err := s.mutateNode(ctx, id, events.NodeUpdated, func(n *entity.NoteNode) bool {
		n.Data.Status = status
		n.Data.UpdatedAt = s.bump(n.Data.UpdatedAt)
		return true
	})
	return err
}

func (s *graphStore) MoveNode(ctx context.Context, id string, position entity.Position) error {
	_, err := s.mutateNode(ctx, id, events.NodeUpdated, func(n *entity.NoteNode) bool {
		n.Position = position
		return true
	})
	return err
}

func (s *graphStore) SetNodeView(ctx context.Context, id string, minimized, expanded *bool) error {
	_, err := s.mutateNode(ctx, id, events.NodeUpdated, func(n *entity.NoteNode) bool {
		if minimized != nil {
			n.Data.IsMinimized = *minimized
		}
		if expanded != nil {
			n.Data.IsExpanded = *expanded
		}
		return true
	})
	return err
}

func (s *graphStore) AddNodeChatMessage(ctx context.Context, nodeId string, msg entity.ChatMessage) error {
	_, err := s.mutateNode(ctx, nodeId, events.NodeChatMessageAdded, func(n *entity.NoteNode) bool {
		n.Data.ChatHistory = append(n.Data.ChatHistory, msg)
		return true
	})
	return err
}

// DeleteNode removes the node and every edge touching it.
func (s *graphStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.findNode(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)

	kept := s.edges[:0:0]
	var removed []string
	for _, e := range s.edges {
		if e.Touches(id) {
			removed = append(removed, e.Id)
		} else {
			kept = append(kept, e)
		}
	}
	s.edges = kept

	s.publish(ctx, events.NodeDeleted, map[string]interface{}{
		"node_id":  id,
		"edge_ids": removed,
	})
	done := s.enqueue(ctx, contract.CollectionNodes, func(ctx context.Context) error {
		if err := s.db.DeleteNode(ctx, id); err != nil {
			return err
		}
		for _, edgeId := range removed {
			if err := s.db.DeleteEdge(ctx, edgeId); err != nil {
				return err
			}
		}
		return nil
	})
	s.mu.Unlock()

	return <-done
}

// Edges

// Connect adds a directed edge. Parallel edges between the same pair are
// allowed; each gets its own id.
func (s *graphStore) Connect(ctx context.Context, source, target string) (entity.Edge, error) {
	if source == target {
		return entity.Edge{}, ErrSelfLoop
	}

	s.mu.Lock()
	if s.findNode(source) < 0 || s.findNode(target) < 0 {
		s.mu.Unlock()
		return entity.Edge{}, ErrNodeNotFound
	}

	edge := entity.Edge{Id: uuid.NewString(), Source: source, Target: target}
	s.edges = append(s.edges, edge)

	all := append([]entity.Edge(nil), s.edges...)
	s.publish(ctx, events.EdgeCreated, map[string]interface{}{"edge": edge})
	done := s.enqueue(ctx, contract.CollectionEdges, func(ctx context.Context) error {
		return s.db.SaveEdges(ctx, all)
	})
	s.mu.Unlock()

	return edge, <-done
}

func (s *graphStore) Disconnect(ctx context.Context, edgeId string) error {
	s.mu.Lock()
	i := s.findEdge(edgeId)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.edges = append(s.edges[:i], s.edges[i+1:]...)

	s.publish(ctx, events.EdgeDeleted, map[string]interface{}{"edge_id": edgeId})
	done := s.enqueue(ctx, contract.CollectionEdges, func(ctx context.Context) error {
		return s.db.DeleteEdge(ctx, edgeId)
	})
	s.mu.Unlock()

	return <-done
}

// Singletons

func (s *graphStore) UpdateDocument(ctx context.Context, doc entity.MasterDocument) error {
	snapshot := doc.Clone()
	if snapshot.Sections == nil {
		snapshot.Sections = []entity.DocumentSection{}
	}

	s.mu.Lock()
	s.document = snapshot
	s.publish(ctx, events.DocumentUpdated, map[string]interface{}{"document": snapshot.Clone()})
	done := s.enqueue(ctx, contract.CollectionDocument, func(ctx context.Context) error {
		return s.db.SaveDocument(ctx, snapshot)
	})
	s.mu.Unlock()

	return <-done
}

// UpdateSettings merges the non-nil fields of patch and returns the result.
func (s *graphStore) UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error) {
	s.mu.Lock()
	s.settings = s.settings.Merge(patch)
	snapshot := s.settings

	// The key never leaves the process through events.
	masked := snapshot
	masked.ApiKey = entity.MaskApiKey(masked.ApiKey)
	s.publish(ctx, events.SettingsUpdated, map[string]interface{}{"settings": masked})
	done := s.enqueue(ctx, contract.CollectionSettings, func(ctx context.Context) error {
		return s.db.SaveSettings(ctx, snapshot)
	})
	s.mu.Unlock()

	return snapshot, <-done
}

func (s *graphStore) AddChatMessage(ctx context.Context, msg entity.ChatMessage) error {
	s.mu.Lock()
	s.chats = append(s.chats, msg)
	thread := entity.ChatThread{Id: entity.GlobalChatId, Messages: append([]entity.ChatMessage(nil), s.chats...)}

	s.publish(ctx, events.ChatMessageAdded, map[string]interface{}{"message": msg})
	done := s.enqueue(ctx, contract.CollectionChats, func(ctx context.Context) error {
		return s.db.SaveChats(ctx, thread)
	})
	s.mu.Unlock()

	return <-done
}

func (s *graphStore) ClearChat(ctx context.Context) error {
	s.mu.Lock()
	s.chats = []entity.ChatMessage{}

	s.publish(ctx, events.ChatCleared, nil)
	done := s.enqueue(ctx, contract.CollectionChats, func(ctx context.Context) error {
		return s.db.SaveChats(ctx, entity.ChatThread{Id: entity.GlobalChatId, Messages: []entity.ChatMessage{}})
	})
	s.mu.Unlock()

	return <-done
}

// Read accessors. Everything returned is a deep copy.

func (s *graphStore) Nodes() []entity.NoteNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.NoteNode, len(s.nodes))
	for i := range s.nodes {
		out[i] = s.nodes[i].Clone()
	}
	return out
}

func (s *graphStore) Node(id string) (entity.NoteNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.findNode(id)
	if i < 0 {
		return entity.NoteNode{}, false
	}
	return s.nodes[i].Clone(), true
}

func (s *graphStore) Edges() []entity.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entity.Edge{}, s.edges...)
}

// UpstreamNodes returns the sources of edges pointing at id, once each, in
// canvas order.
func (s *graphStore) UpstreamNodes(id string) []entity.NoteNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, e := range s.edges {
		if e.Target == id {
			sources[e.Source] = struct{}{}
		}
	}

	out := []entity.NoteNode{}
	for i := range s.nodes {
		if _, ok := sources[s.nodes[i].Id]; ok {
			out = append(out, s.nodes[i].Clone())
		}
	}
	return out
}

func (s *graphStore) Document() entity.MasterDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.document.Clone()
}

func (s *graphStore) Settings() entity.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

func (s *graphStore) Chats() []entity.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entity.ChatMessage{}, s.chats...)
}

// Close drains pending writes. Mutations after Close persist inline.
func (s *graphStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.writes)
	s.mu.Unlock()

	<-s.writerDone
	return nil
}
