package service

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"
)

const minAutoTitleContent = 10

// TitleGenerator is the slice of the LLM gateway the scheduler needs.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, content string, settings entity.Settings) string
}

// ITitleScheduler debounces auto-title generation per note.
type ITitleScheduler interface {
	// Schedule is called after every content change. It cancels any pending
	// timer for the note and re-arms one when the note is eligible.
	Schedule(nodeId string)
	Cancel(nodeId string)
	// Stop cancels every timer and waits for in-flight generations.
	Stop()
}

type titleScheduler struct {
	mu         sync.Mutex
	timers     map[string]*time.Timer
	generation map[string]uint64
	stopped    bool
	wg         sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	store     IGraphStore
	generator TitleGenerator
	delay     time.Duration
	logger    logger.ILogger
}

func NewTitleScheduler(store IGraphStore, generator TitleGenerator, delay time.Duration, log logger.ILogger) ITitleScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &titleScheduler{
		timers:     make(map[string]*time.Timer),
		generation: make(map[string]uint64),
		ctx:        ctx,
		cancel:     cancel,
		store:      store,
		generator:  generator,
		delay:      delay,
		logger:     log,
	}
}

func eligibleForAutoTitle(n entity.NoteNode) bool {
	return !n.Data.IsTitleManual && utf8.RuneCountInString(n.Data.Content) >= minAutoTitleContent
}

func (s *titleScheduler) Schedule(nodeId string) {
	node, found := s.store.Node(nodeId)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	gen := s.bumpLocked(nodeId)
	if !found || !eligibleForAutoTitle(node) {
		return
	}

	s.timers[nodeId] = time.AfterFunc(s.delay, func() {
		s.fire(nodeId, gen)
	})
}

func (s *titleScheduler) Cancel(nodeId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bumpLocked(nodeId)
}

// bumpLocked invalidates whatever is pending for the note and returns the
// new generation.
func (s *titleScheduler) bumpLocked(nodeId string) uint64 {
	if t, ok := s.timers[nodeId]; ok {
		t.Stop()
		delete(s.timers, nodeId)
	}
	s.generation[nodeId]++
	return s.generation[nodeId]
}

func (s *titleScheduler) current(nodeId string, gen uint64) bool {
	return !s.stopped && s.generation[nodeId] == gen
}

func (s *titleScheduler) fire(nodeId string, gen uint64) {
	s.mu.Lock()
	if !s.current(nodeId, gen) {
		s.mu.Unlock()
		return
	}
	delete(s.timers, nodeId)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	node, found := s.store.Node(nodeId)
	if !found || !eligibleForAutoTitle(node) {
		return
	}

	title := s.generator.GenerateTitle(s.ctx, node.Data.Content, s.store.Settings())

	// Content edited, note deleted or scheduler stopped while generating.
	s.mu.Lock()
	stale := !s.current(nodeId, gen)
	s.mu.Unlock()
	if stale {
		return
	}

	applied, err := s.store.ApplyAutoTitle(s.ctx, nodeId, title)
	if err != nil {
		s.logger.Warn("TitleScheduler", "Auto title not persisted", map[string]interface{}{
			"node_id": nodeId,
			"error":   err.Error(),
		})
		return
	}
	if applied {
		s.logger.Debug("TitleScheduler", "Auto title applied", map[string]interface{}{
			"node_id": nodeId,
			"title":   title,
		})
	}
}

func (s *titleScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
