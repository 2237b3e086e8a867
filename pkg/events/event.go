package events

import "time"

// Graph change events. Every store mutation publishes one of these.
const (
	GraphLoaded          = "GRAPH_LOADED"
	NodeCreated          = "NODE_CREATED"
	NodeUpdated          = "NODE_UPDATED"
	NodeDeleted          = "NODE_DELETED"
	NodeChatMessageAdded = "NODE_CHAT_MESSAGE_ADDED"
	EdgeCreated          = "EDGE_CREATED"
	EdgeDeleted          = "EDGE_DELETED"
	DocumentUpdated      = "DOCUMENT_UPDATED"
	SettingsUpdated      = "SETTINGS_UPDATED"
	ChatMessageAdded     = "CHAT_MESSAGE_ADDED"
	ChatCleared          = "CHAT_CLEARED"

	// Reconciliation progress. "pending" only ever lives in these events.
	ConnectStarted   = "CONNECT_STARTED"
	ConnectCompleted = "CONNECT_COMPLETED"
	ConnectFailed    = "CONNECT_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NODE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
