package layout

import (
	"context"

	"cardshark/server/logging"
)

const (
	// EventRoomEntered is emitted after a room's local map is recomputed.
	EventRoomEntered logging.EventType = "layout.room_entered"
	// EventPlacementOverflow is emitted when auto-placement runs out of tiles.
	EventPlacementOverflow logging.EventType = "layout.placement_overflow"
	// EventBlockedChanged is emitted when a room's blocked-tile layer is replaced.
	EventBlockedChanged logging.EventType = "layout.blocked_changed"
	// EventPathRejected is emitted when a movement command finds no path.
	EventPathRejected logging.EventType = "layout.path_rejected"
)

// RoomEnteredPayload summarizes the freshly computed room state.
type RoomEnteredPayload struct {
	RoomID      string `json:"roomId"`
	Exits       int    `json:"exits"`
	Entities    int    `json:"entities"`
	ThreatTiles int    `json:"threatTiles"`
}

// PlacementOverflowPayload records NPC seeds that found no free tile.
type PlacementOverflowPayload struct {
	RoomID    string `json:"roomId"`
	Requested int    `json:"requested"`
	Placed    int    `json:"placed"`
}

// BlockedChangedPayload records a replaced blocked-tile layer.
type BlockedChangedPayload struct {
	RoomID  string `json:"roomId"`
	Blocked int    `json:"blocked"`
}

// PathRejectedPayload records a movement goal that could not be reached.
type PathRejectedPayload struct {
	RoomID string `json:"roomId"`
	GoalX  int    `json:"goalX"`
	GoalY  int    `json:"goalY"`
	Reason string `json:"reason"`
}

// RoomEntered publishes a room recompute event.
func RoomEntered(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload RoomEnteredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventRoomEntered,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLayout,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// PlacementOverflow publishes a placement overflow warning.
func PlacementOverflow(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload PlacementOverflowPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPlacementOverflow,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryLayout,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BlockedChanged publishes a blocked-layer edit event.
func BlockedChanged(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload BlockedChangedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBlockedChanged,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLayout,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// PathRejected publishes a movement rejection event.
func PathRejected(ctx context.Context, pub logging.Publisher, seq uint64, actor logging.EntityRef, payload PathRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPathRejected,
		Seq:      seq,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLayout,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
