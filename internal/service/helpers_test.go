package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/repository"
	"ai-notecanvas/internal/repository/contract"
	"ai-notecanvas/internal/repository/memory"
	"ai-notecanvas/pkg/events"
	"ai-notecanvas/pkg/llm"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

// failingKV wraps a store and fails every write once broken is set.
type failingKV struct {
	contract.KVStore
	mu     sync.Mutex
	broken bool
}

var errDiskFull = errors.New("disk full")

func (f *failingKV) setBroken(b bool) {
	f.mu.Lock()
	f.broken = b
	f.mu.Unlock()
}

func (f *failingKV) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.broken
}

func (f *failingKV) Put(ctx context.Context, collection string, r contract.Record) error {
	if f.failing() {
		return errDiskFull
	}
	return f.KVStore.Put(ctx, collection, r)
}

func (f *failingKV) PutBatch(ctx context.Context, collection string, rs []contract.Record) error {
	if f.failing() {
		return errDiskFull
	}
	return f.KVStore.PutBatch(ctx, collection, rs)
}

type fixture struct {
	kv    contract.KVStore
	db    *repository.NoteDB
	pub   *recordingPublisher
	store IGraphStore
}

func newFixture(t *testing.T, opts ...GraphStoreOption) *fixture {
	t.Helper()
	return newFixtureOn(t, memory.NewKVStore(), opts...)
}

func newFixtureOn(t *testing.T, kv contract.KVStore, opts ...GraphStoreOption) *fixture {
	t.Helper()
	db := repository.NewNoteDB(kv, nil)
	pub := &recordingPublisher{}
	store := NewGraphStore(db, pub, logger.NewNopLogger(), opts...)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.LoadInitialData(context.Background()))
	return &fixture{kv: kv, db: db, pub: pub, store: store}
}

func (f *fixture) addNode(t *testing.T, content string) entity.NoteNode {
	t.Helper()
	ctx := context.Background()
	n, err := f.store.AddNode(ctx, entity.Position{})
	require.NoError(t, err)
	if content != "" {
		require.NoError(t, f.store.UpdateNodeContent(ctx, n.Id, content))
	}
	n, _ = f.store.Node(n.Id)
	return n
}

// stepClock returns fixed instants that the test moves by hand.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type llmReply struct {
	content string
	err     error
}

// fakeProvider answers LLM calls from a script; block, when set, holds each
// call until it is closed.
type fakeProvider struct {
	mu      sync.Mutex
	replies []llmReply
	calls   [][]llm.Message
	block   chan struct{}
	started chan struct{}
}

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]llm.Message(nil), history...))
	block := p.block
	started := p.started
	var r llmReply
	if len(p.replies) > 0 {
		r = p.replies[0]
		p.replies = p.replies[1:]
	} else {
		r = llmReply{err: errors.New("no scripted reply")}
	}
	p.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", &llm.NetworkError{Err: ctx.Err()}
		}
	}
	return r.content, r.err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakeProvider) call(i int) []llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[i]
}

func newTestGateway(p llm.Provider) *llm.Gateway {
	return llm.NewGateway(p, "test-key", logger.NewNopLogger())
}
