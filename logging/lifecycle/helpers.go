package lifecycle

import (
	"context"

	"cardshark/server/logging"
)

const (
	// EventSessionJoined is emitted when an authoring session is allocated.
	EventSessionJoined logging.EventType = "lifecycle.session_joined"
	// EventSessionClosed is emitted when a session's subscriber goes away.
	EventSessionClosed logging.EventType = "lifecycle.session_closed"
)

// SessionJoinedPayload captures the world the new session starts with.
type SessionJoinedPayload struct {
	WorldName string `json:"worldName,omitempty"`
}

// SessionClosedPayload captures why the session ended.
type SessionClosedPayload struct {
	Reason string `json:"reason"`
}

// SessionJoined publishes a session join event.
func SessionJoined(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSessionJoined,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// SessionClosed publishes a session teardown event.
func SessionClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionClosedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventSessionClosed,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
