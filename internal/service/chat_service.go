package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-notecanvas/internal/constant"
	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/pkg/llm"

	"github.com/google/uuid"
)

// IChatService answers questions scoped to one note or to the whole
// knowledge base. Failed calls leave a system message in the thread.
type IChatService interface {
	AskNode(ctx context.Context, nodeId, question string) (*entity.ChatMessage, error)
	AskGlobal(ctx context.Context, question string) (*entity.ChatMessage, error)
	History(ctx context.Context) []entity.ChatMessage
	Clear(ctx context.Context) error
}

type chatService struct {
	store   IGraphStore
	gateway *llm.Gateway
	logger  logger.ILogger
	now     func() time.Time
}

func NewChatService(store IGraphStore, gateway *llm.Gateway, log logger.ILogger) IChatService {
	return &chatService{
		store:   store,
		gateway: gateway,
		logger:  log,
		now:     time.Now,
	}
}

func (c *chatService) message(role, content string) entity.ChatMessage {
	return entity.ChatMessage{
		Id:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: c.now().UnixMilli(),
	}
}

func (c *chatService) AskNode(ctx context.Context, nodeId, question string) (*entity.ChatMessage, error) {
	node, found := c.store.Node(nodeId)
	if !found {
		return nil, ErrNodeNotFound
	}

	history := node.Data.ChatHistory
	_ = c.store.AddNodeChatMessage(ctx, nodeId, c.message(entity.ChatRoleUser, question))

	upstream := c.store.UpstreamNodes(nodeId)
	blocks := make([]string, 0, len(upstream))
	for _, n := range upstream {
		blocks = append(blocks, fmt.Sprintf(constant.UpstreamContextHead, shortId(n.Id), n.Data.Content))
	}

	messages := []llm.Message{{
		Role:    entity.ChatRoleSystem,
		Content: constant.NodeChatSystemPrompt(node.Data.Content, strings.Join(blocks, "\n\n")),
	}}
	messages = append(messages, SanitizeHistory(history)...)
	messages = append(messages, llm.Message{Role: entity.ChatRoleUser, Content: question})

	reply, err := c.gateway.Complete(ctx, messages, c.store.Settings())
	if err != nil {
		_ = c.store.AddNodeChatMessage(ctx, nodeId, c.message(entity.ChatRoleSystem, "Error: "+err.Error()))
		return nil, err
	}

	answer := c.message(entity.ChatRoleAssistant, reply)
	_ = c.store.AddNodeChatMessage(ctx, nodeId, answer)
	return &answer, nil
}

func (c *chatService) AskGlobal(ctx context.Context, question string) (*entity.ChatMessage, error) {
	history := c.store.Chats()
	_ = c.store.AddChatMessage(ctx, c.message(entity.ChatRoleUser, question))

	doc := c.store.Document()
	sections := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		sections = append(sections, fmt.Sprintf("## %s\n%s", s.Title, s.Content))
	}

	var connected []string
	for _, n := range c.store.Nodes() {
		if n.Data.Status == entity.NoteStatusConnected {
			connected = append(connected, fmt.Sprintf("- %s (Tags: %s)", n.Data.Content, strings.Join(n.Data.Tags, ", ")))
		}
	}

	messages := []llm.Message{{
		Role:    entity.ChatRoleSystem,
		Content: constant.GlobalChatSystemPrompt(strings.Join(sections, "\n\n"), strings.Join(connected, "\n")),
	}}
	messages = append(messages, SanitizeHistory(history)...)
	messages = append(messages, llm.Message{Role: entity.ChatRoleUser, Content: question})

	reply, err := c.gateway.Complete(ctx, messages, c.store.Settings())
	if err != nil {
		_ = c.store.AddChatMessage(ctx, c.message(entity.ChatRoleSystem, "Error: "+err.Error()))
		return nil, err
	}

	answer := c.message(entity.ChatRoleAssistant, reply)
	_ = c.store.AddChatMessage(ctx, answer)
	return &answer, nil
}

func (c *chatService) History(ctx context.Context) []entity.ChatMessage {
	return c.store.Chats()
}

func (c *chatService) Clear(ctx context.Context) error {
	return c.store.ClearChat(ctx)
}

// SanitizeHistory turns a stored thread into strict user/assistant
// alternation: system messages are skipped, a user message followed by
// another user message is dropped, and a trailing user message is removed
// because the new question follows.
func SanitizeHistory(thread []entity.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(thread))
	for _, m := range thread {
		switch m.Role {
		case entity.ChatRoleUser:
			if len(out) > 0 && out[len(out)-1].Role == entity.ChatRoleUser {
				out = out[:len(out)-1]
			}
			out = append(out, llm.Message{Role: entity.ChatRoleUser, Content: m.Content})
		case entity.ChatRoleAssistant:
			if len(out) > 0 && out[len(out)-1].Role == entity.ChatRoleUser {
				out = append(out, llm.Message{Role: entity.ChatRoleAssistant, Content: m.Content})
			}
		}
	}
	if len(out) > 0 && out[len(out)-1].Role == entity.ChatRoleUser {
		out = out[:len(out)-1]
	}
	return out
}

func shortId(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[:4]
}
