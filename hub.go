package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"cardshark/server/internal/localmap"
	"cardshark/server/internal/telemetry"
	"cardshark/server/internal/worlddoc"
	"cardshark/server/logging"
	logginglayout "cardshark/server/logging/layout"
	logginglifecycle "cardshark/server/logging/lifecycle"
)

// HubConfig carries the tunables the hub needs at construction time.
type HubConfig struct {
	DefaultWorld       *worlddoc.Document
	DefaultThreatRange int
	Logger             telemetry.Logger
	Metrics            telemetry.Metrics
}

// DefaultHubConfig returns the baseline hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{DefaultThreatRange: localmap.DefaultThreatRange}
}

// Normalized replaces out-of-range values with defaults. A zero threat range
// is kept: it means hostiles without an explicit range threaten nothing.
func (c HubConfig) Normalized() HubConfig {
	if c.DefaultThreatRange < 0 {
		c.DefaultThreatRange = localmap.DefaultThreatRange
	}
	return c
}

// Hub owns all live authoring sessions and their websocket subscribers.
type Hub struct {
	mu          sync.Mutex
	sessions    map[string]*sessionState
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	cfg         HubConfig
	publisher   logging.Publisher
	telemetry   *telemetryCounters
}

// sessionState is everything the hub tracks for one authoring session. All
// fields are guarded by the hub mutex.
type sessionState struct {
	id            string
	world         *worlddoc.Document
	grid          [][]*localmap.RoomStub
	roomID        string
	roomName      string
	roomCfg       localmap.Config
	seeds         []localmap.NPCSeed
	player        localmap.TilePosition
	entities      []localmap.Entity
	blocked       []localmap.TilePosition
	exits         []localmap.ExitTile
	threat        []localmap.TilePosition
	threatened    bool
	stateSeq      uint64
	hasRoom       bool
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

type subscriber struct {
	conn           *websocket.Conn
	mu             sync.Mutex
	lastCommandSeq atomic.Uint64
}

// WriteMessage serializes writes so broadcasts and command replies never
// interleave on the socket.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// LastCommandSeq reports the newest command sequence acknowledged on this
// subscriber.
func (s *subscriber) LastCommandSeq() uint64 {
	return s.lastCommandSeq.Load()
}

// StoreLastCommandSeq records an acknowledged command sequence.
func (s *subscriber) StoreLastCommandSeq(seq uint64) {
	s.lastCommandSeq.Store(seq)
}

// NewHubWithConfig creates a hub with the supplied configuration and event
// publisher. A nil publisher discards events.
func NewHubWithConfig(cfg HubConfig, publisher logging.Publisher) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		sessions:    make(map[string]*sessionState),
		subscribers: make(map[string]*subscriber),
		cfg:         cfg.Normalized(),
		publisher:   publisher,
		telemetry:   newTelemetryCounters(),
	}
}

// newHub creates a hub with defaults; used throughout the tests.
func newHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig(), nil)
}

// Join registers a new session and returns its identity. When the hub was
// built with a default world the session starts with it installed.
func (h *Hub) Join() JoinResponse {
	id := h.nextID.Add(1)
	sessionID := fmt.Sprintf("session-%d", id)

	session := &sessionState{
		id:            sessionID,
		lastHeartbeat: time.Now(),
	}
	worldName := ""
	if h.cfg.DefaultWorld != nil {
		session.world = h.cfg.DefaultWorld
		session.grid = h.cfg.DefaultWorld.Grid()
		worldName = h.cfg.DefaultWorld.Name
	}

	h.mu.Lock()
	h.sessions[sessionID] = session
	h.mu.Unlock()

	h.telemetry.RecordSessionJoined()
	h.metricAdd("sessionsJoined", 1)
	logginglifecycle.SessionJoined(context.Background(), h.publisher,
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		logginglifecycle.SessionJoinedPayload{WorldName: worldName}, nil)

	return JoinResponse{Ver: ProtocolVersion, ID: sessionID, WorldName: worldName}
}

// Subscribe associates a websocket connection with an existing session and
// returns the current room snapshot, if one exists, for the initial send.
// Re-subscribing closes the previous connection.
func (h *Hub) Subscribe(sessionID string, conn *websocket.Conn) (*subscriber, *RoomState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return nil, nil, false
	}

	session.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[sessionID]; ok {
		existing.conn.Close()
	}

	sub := &subscriber{conn: conn}
	h.subscribers[sessionID] = sub

	var state *RoomState
	if session.hasRoom {
		snapshot := session.roomState()
		state = &snapshot
	}
	return sub, state, true
}

// Disconnect removes a session and closes any active subscriber connection.
func (h *Hub) Disconnect(sessionID string) bool {
	h.mu.Lock()
	sub, subOK := h.subscribers[sessionID]
	if subOK {
		delete(h.subscribers, sessionID)
	}
	_, sessionOK := h.sessions[sessionID]
	if sessionOK {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()

	if subOK {
		sub.conn.Close()
	}
	if !sessionOK {
		return false
	}

	h.telemetry.RecordSessionClosed()
	h.metricAdd("sessionsClosed", 1)
	logginglifecycle.SessionClosed(context.Background(), h.publisher,
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		logginglifecycle.SessionClosedPayload{Reason: "disconnect"}, nil)
	return true
}

// EnterWorld installs a world document on the session and clears any room
// view computed from the previous world.
func (h *Hub) EnterWorld(sessionID string, doc *worlddoc.Document) (string, bool, string) {
	if doc == nil {
		return "", false, h.rejectCommand(CommandRejectInvalidWorld)
	}
	if err := doc.Validate(); err != nil {
		h.logf("rejecting world for %s: %v", sessionID, err)
		return "", false, h.rejectCommand(CommandRejectInvalidWorld)
	}
	grid := doc.Grid()

	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return "", false, h.rejectCommand(CommandRejectUnknownSession)
	}
	session.world = doc
	session.grid = grid
	session.clearRoom()
	h.mu.Unlock()

	return doc.Name, true, ""
}

// EnterRoom selects a room, places the player token and NPCs, and computes
// the full local map: exits, placement, threat zones, threatened flag.
func (h *Hub) EnterRoom(sessionID, roomID string, player *localmap.TilePosition) (RoomState, bool, string) {
	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return RoomState{}, false, h.rejectCommand(CommandRejectUnknownSession)
	}
	if session.world == nil {
		h.mu.Unlock()
		return RoomState{}, false, h.rejectCommand(CommandRejectNoWorld)
	}
	room, ok := session.world.Room(roomID)
	if !ok {
		h.mu.Unlock()
		return RoomState{}, false, h.rejectCommand(CommandRejectUnknownRoom)
	}

	cfg := room.Config()
	playerPos := cfg.Midpoint()
	if player != nil {
		if !cfg.Contains(*player) {
			h.mu.Unlock()
			return RoomState{}, false, h.rejectCommand(CommandRejectInvalidPosition)
		}
		playerPos = *player
	}

	session.roomID = room.ID
	session.roomName = room.Name
	session.roomCfg = cfg
	session.seeds = append(make([]localmap.NPCSeed, 0, len(room.NPCs)), room.NPCs...)
	session.blocked = append(make([]localmap.TilePosition, 0, len(room.BlockedTiles)), room.BlockedTiles...)
	session.player = playerPos
	session.hasRoom = true
	h.recomputeRoom(session)
	session.stateSeq++
	state := session.roomState()
	requested := len(session.seeds)
	placed := len(session.entities)
	h.mu.Unlock()

	h.telemetry.RecordRoomEntered()
	h.metricAdd("roomsEntered", 1)
	actor := logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession}
	logginglayout.RoomEntered(context.Background(), h.publisher, state.Seq, actor,
		logginglayout.RoomEnteredPayload{
			RoomID:      state.RoomID,
			Exits:       len(state.Exits),
			Entities:    len(state.Entities),
			ThreatTiles: len(state.ThreatZones),
		}, nil)
	if placed < requested {
		h.telemetry.RecordPlacementOverflow()
		h.metricAdd("placementOverflows", 1)
		logginglayout.PlacementOverflow(context.Background(), h.publisher, state.Seq, actor,
			logginglayout.PlacementOverflowPayload{RoomID: state.RoomID, Requested: requested, Placed: placed}, nil)
	}

	h.broadcastRoomState(sessionID, state)
	return state, true, ""
}

// SetBlockedTiles replaces the room's blocked layer and recomputes the full
// local map, re-running placement against the new layout.
func (h *Hub) SetBlockedTiles(sessionID string, tiles []localmap.TilePosition) (RoomState, bool, string) {
	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return RoomState{}, false, h.rejectCommand(CommandRejectUnknownSession)
	}
	if !session.hasRoom {
		h.mu.Unlock()
		return RoomState{}, false, h.rejectCommand(CommandRejectNoRoom)
	}
	for _, tile := range tiles {
		if !session.roomCfg.Contains(tile) {
			h.mu.Unlock()
			return RoomState{}, false, h.rejectCommand(CommandRejectInvalidPosition)
		}
	}

	session.blocked = append(make([]localmap.TilePosition, 0, len(tiles)), tiles...)
	h.recomputeRoom(session)
	session.stateSeq++
	state := session.roomState()
	requested := len(session.seeds)
	placed := len(session.entities)
	h.mu.Unlock()

	actor := logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession}
	logginglayout.BlockedChanged(context.Background(), h.publisher, state.Seq, actor,
		logginglayout.BlockedChangedPayload{RoomID: state.RoomID, Blocked: len(state.BlockedTiles)}, nil)
	if placed < requested {
		h.telemetry.RecordPlacementOverflow()
		h.metricAdd("placementOverflows", 1)
		logginglayout.PlacementOverflow(context.Background(), h.publisher, state.Seq, actor,
			logginglayout.PlacementOverflowPayload{RoomID: state.RoomID, Requested: requested, Placed: placed}, nil)
	}

	h.broadcastRoomState(sessionID, state)
	return state, true, ""
}

// MoveTo paths the player token to a goal tile. Success moves the token and
// re-evaluates threat; placement stays as computed on room entry.
func (h *Hub) MoveTo(sessionID string, x, y int) (PathResult, bool, string) {
	h.mu.Lock()
	session, ok := h.sessions[sessionID]
	if !ok {
		h.mu.Unlock()
		return PathResult{}, false, h.rejectCommand(CommandRejectUnknownSession)
	}
	if !session.hasRoom {
		h.mu.Unlock()
		return PathResult{}, false, h.rejectCommand(CommandRejectNoRoom)
	}
	goal := localmap.TilePosition{X: x, Y: y}
	if !session.roomCfg.Contains(goal) {
		h.mu.Unlock()
		return PathResult{}, false, h.rejectCommand(CommandRejectInvalidPosition)
	}

	obstacles := append(cloneTiles(session.blocked), entityTiles(session.entities)...)
	path := localmap.FindPath(session.player, goal, session.roomCfg, obstacles)
	if path == nil {
		roomID := session.roomID
		seq := session.stateSeq
		h.mu.Unlock()

		h.telemetry.RecordPathRejected()
		h.metricAdd("pathsRejected", 1)
		logginglayout.PathRejected(context.Background(), h.publisher, seq,
			logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
			logginglayout.PathRejectedPayload{RoomID: roomID, GoalX: x, GoalY: y, Reason: CommandRejectUnreachable}, nil)
		return PathResult{}, false, h.rejectCommand(CommandRejectUnreachable)
	}

	session.player = goal
	h.recomputeThreat(session)
	session.stateSeq++
	state := session.roomState()
	h.mu.Unlock()

	h.telemetry.RecordMoveApplied()
	h.metricAdd("movesApplied", 1)
	h.broadcastRoomState(sessionID, state)
	return PathResult{RoomID: state.RoomID, Path: path, Found: true}, true, ""
}

// UpdateHeartbeat records the most recent heartbeat time and RTT for a
// session.
func (h *Hub) UpdateHeartbeat(sessionID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.sessions[sessionID]
	if !ok {
		return 0, false
	}

	session.lastHeartbeat = receivedAt

	var rtt time.Duration
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt = receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			session.lastRTT = rtt
		}
	}

	return session.lastRTT, true
}

// RunHeartbeatSweeper drops sessions whose clients stopped heartbeating. It
// runs until the stop channel closes.
func (h *Hub) RunHeartbeatSweeper(stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			h.sweepExpired(now)
		}
	}
}

// sweepExpired removes every session whose last heartbeat is older than the
// disconnect window and returns the removed ids.
func (h *Hub) sweepExpired(now time.Time) []string {
	type expiredSession struct {
		id  string
		sub *subscriber
	}

	h.mu.Lock()
	expired := make([]expiredSession, 0)
	for id, session := range h.sessions {
		if now.Sub(session.lastHeartbeat) <= disconnectAfter {
			continue
		}
		entry := expiredSession{id: id}
		if sub, ok := h.subscribers[id]; ok {
			entry.sub = sub
			delete(h.subscribers, id)
		}
		delete(h.sessions, id)
		expired = append(expired, entry)
	}
	h.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, entry := range expired {
		if entry.sub != nil {
			entry.sub.conn.Close()
		}
		h.logf("disconnecting %s due to heartbeat timeout", entry.id)
		h.telemetry.RecordSessionClosed()
		h.metricAdd("sessionsClosed", 1)
		logginglifecycle.SessionClosed(context.Background(), h.publisher,
			logging.EntityRef{ID: entry.id, Kind: logging.EntityKindSession},
			logginglifecycle.SessionClosedPayload{Reason: "heartbeat_timeout"}, nil)
		ids = append(ids, entry.id)
	}
	return ids
}

// DiagnosticsSnapshot exposes per-session heartbeat data for the diagnostics
// endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := make([]diagnosticsSession, 0, len(h.sessions))
	for id, session := range h.sessions {
		entry := diagnosticsSession{
			Ver:           ProtocolVersion,
			ID:            session.id,
			LastHeartbeat: session.lastHeartbeat.UnixMilli(),
			RTTMillis:     session.lastRTT.Milliseconds(),
		}
		if session.world != nil {
			entry.WorldName = session.world.Name
		}
		if session.hasRoom {
			entry.RoomID = session.roomID
		}
		if sub, ok := h.subscribers[id]; ok {
			entry.LastCommandSeq = sub.LastCommandSeq()
		}
		sessions = append(sessions, entry)
	}
	return sessions
}

// TelemetrySnapshot exposes counter values for the diagnostics endpoint.
func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}

// RecordTelemetryBroadcast counts a payload written directly to a subscriber
// outside broadcastRoomState, such as the initial send after subscribing.
func (h *Hub) RecordTelemetryBroadcast(bytes, entities int) {
	h.telemetry.RecordBroadcast(bytes, entities)
	h.metricAdd("broadcasts", 1)
}

// MarshalRoomState renders the versioned wire form of a room snapshot and
// reports the entity count for telemetry.
func (h *Hub) MarshalRoomState(state RoomState) ([]byte, int, error) {
	msg := roomStateMessage{
		Ver:        ProtocolVersion,
		Type:       "roomState",
		RoomState:  state,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, 0, err
	}
	return data, len(state.Entities), nil
}

// recomputeRoom rebuilds the local map for the session's room in dependency
// order: exits, placement, threat zones, threatened flag.
func (h *Hub) recomputeRoom(s *sessionState) {
	s.exits = localmap.DeriveExits(s.roomID, s.grid, s.roomCfg)
	s.entities = localmap.AutoPlaceEntitiesAvoiding(s.seeds, s.player, s.roomCfg, s.blocked)
	h.recomputeThreat(s)
}

// recomputeThreat re-evaluates threat zones and the player's threatened flag
// without disturbing entity placement.
func (h *Hub) recomputeThreat(s *sessionState) {
	s.threat = localmap.CalculateThreatZones(s.entities, s.roomCfg, h.cfg.DefaultThreatRange)
	s.threatened = playerThreatened(s)
}

// playerThreatened reports whether the player tile sits in a threat zone or
// directly beside a live hostile.
func playerThreatened(s *sessionState) bool {
	for _, tile := range s.threat {
		if tile == s.player {
			return true
		}
	}
	for i := range s.entities {
		entity := &s.entities[i]
		if entity.Allegiance != localmap.AllegianceHostile || entity.Incapacitated || entity.Dead {
			continue
		}
		if localmap.AreAdjacent(s.player, entity.Position) {
			return true
		}
	}
	return false
}

// broadcastRoomState pushes a snapshot to the session's subscriber, if any.
func (h *Hub) broadcastRoomState(sessionID string, state RoomState) {
	h.mu.Lock()
	sub, ok := h.subscribers[sessionID]
	h.mu.Unlock()
	if !ok {
		return
	}

	data, entities, err := h.MarshalRoomState(state)
	if err != nil {
		h.logf("failed to marshal room state for %s: %v", sessionID, err)
		return
	}

	if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logf("failed to send room state to %s: %v", sessionID, err)
		h.Disconnect(sessionID)
		return
	}
	h.RecordTelemetryBroadcast(len(data), entities)
}

func (h *Hub) rejectCommand(reason string) string {
	h.telemetry.RecordCommandReject()
	h.metricAdd("commandRejects", 1)
	return reason
}

func (h *Hub) metricAdd(key string, delta uint64) {
	if h.cfg.Metrics == nil {
		return
	}
	h.cfg.Metrics.Add(key, delta)
}

func (h *Hub) logf(format string, args ...any) {
	if h.cfg.Logger != nil {
		h.cfg.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// clearRoom resets the room view when a new world replaces the old one.
func (s *sessionState) clearRoom() {
	s.roomID = ""
	s.roomName = ""
	s.roomCfg = localmap.Config{}
	s.seeds = nil
	s.player = localmap.TilePosition{}
	s.entities = nil
	s.blocked = nil
	s.exits = nil
	s.threat = nil
	s.threatened = false
	s.hasRoom = false
}

// roomState builds an isolated snapshot of the current room view.
func (s *sessionState) roomState() RoomState {
	return RoomState{
		RoomID:       s.roomID,
		RoomName:     s.roomName,
		Config:       s.roomCfg,
		Player:       s.player,
		Exits:        cloneExits(s.exits),
		Entities:     cloneEntities(s.entities),
		ThreatZones:  cloneTiles(s.threat),
		BlockedTiles: cloneTiles(s.blocked),
		Threatened:   s.threatened,
		Seq:          s.stateSeq,
	}
}

func entityTiles(entities []localmap.Entity) []localmap.TilePosition {
	tiles := make([]localmap.TilePosition, 0, len(entities))
	for _, entity := range entities {
		tiles = append(tiles, entity.Position)
	}
	return tiles
}

func cloneTiles(tiles []localmap.TilePosition) []localmap.TilePosition {
	if tiles == nil {
		return nil
	}
	return append(make([]localmap.TilePosition, 0, len(tiles)), tiles...)
}

func cloneExits(exits []localmap.ExitTile) []localmap.ExitTile {
	if exits == nil {
		return nil
	}
	return append(make([]localmap.ExitTile, 0, len(exits)), exits...)
}

func cloneEntities(entities []localmap.Entity) []localmap.Entity {
	if entities == nil {
		return nil
	}
	cloned := append(make([]localmap.Entity, 0, len(entities)), entities...)
	for i := range cloned {
		if cloned[i].ThreatRange != nil {
			value := *cloned[i].ThreatRange
			cloned[i].ThreatRange = &value
		}
	}
	return cloned
}
