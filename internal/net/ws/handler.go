package ws

import (
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"cardshark/server"
	"cardshark/server/internal/net/intake"
	"cardshark/server/internal/net/proto"
)

type subscription interface {
	WriteMessage(messageType int, data []byte) error
	LastCommandSeq() uint64
	StoreLastCommandSeq(seq uint64)
}

type HandlerConfig struct {
	Logger *log.Logger
}

type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	sessionID := r.URL.Query().Get("id")
	if sessionID == "" {
		nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", sessionID, err)
		return
	}

	sub, snapshot, ok := h.hub.Subscribe(sessionID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown session")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	session := subscription(sub)

	if snapshot != nil {
		data, entities, err := h.hub.MarshalRoomState(*snapshot)
		if err != nil {
			h.logger.Printf("failed to marshal initial state for %s: %v", sessionID, err)
			h.hub.Disconnect(sessionID)
			return
		}
		if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Disconnect(sessionID)
			return
		}
		h.hub.RecordTelemetryBroadcast(len(data), entities)
	}

	stage := intake.CommandContext{Commander: h.hub}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(sessionID)
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", sessionID, err)
			continue
		}

		normalizedSeq := uint64(0)
		if msg.CommandSeq != nil && *msg.CommandSeq > 0 {
			normalizedSeq = *msg.CommandSeq
		}

		writeFrame := func(data []byte, err error) bool {
			if err != nil {
				h.logger.Printf("failed to marshal response for %s: %v", sessionID, err)
				return true
			}
			if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
				h.hub.Disconnect(sessionID)
				return false
			}
			return true
		}

		sendDuplicateAck := func() bool {
			if normalizedSeq == 0 {
				return true
			}
			return writeFrame(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq}))
		}

		sendCommandAck := func() bool {
			if normalizedSeq == 0 {
				return true
			}
			if !writeFrame(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq})) {
				return false
			}
			session.StoreLastCommandSeq(normalizedSeq)
			return true
		}

		sendCommandReject := func(reason string) bool {
			if normalizedSeq == 0 {
				return true
			}
			return writeFrame(proto.EncodeCommandReject(proto.CommandReject{Seq: normalizedSeq, Reason: reason}))
		}

		if msg.Type == proto.TypeHeartbeat {
			now := time.Now()
			rtt, ok := h.hub.UpdateHeartbeat(sessionID, now, msg.SentAt)
			if !ok {
				continue
			}
			if !writeFrame(proto.EncodeHeartbeat(proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			})) {
				return
			}
			continue
		}

		if normalizedSeq > 0 {
			if last := session.LastCommandSeq(); last > 0 && normalizedSeq <= last {
				if !sendDuplicateAck() {
					return
				}
				continue
			}
		}

		result, ok, reason := intake.StageClientCommand(stage, sessionID, msg)
		if ok {
			if msg.Type == proto.TypeMoveTo {
				if !writeFrame(proto.EncodePathResult(proto.PathResultV1{
					RoomID: result.RoomID,
					Path:   result.Path,
					Found:  result.Found,
				})) {
					return
				}
			}
			if !sendCommandAck() {
				return
			}
			continue
		}

		// An unreachable goal still answers the movement request so clients
		// waiting on a pathResult frame resolve before the reject arrives.
		if msg.Type == proto.TypeMoveTo && reason == server.CommandRejectUnreachable {
			if !writeFrame(proto.EncodePathResult(proto.PathResultV1{Found: false})) {
				return
			}
		}
		if reason == server.CommandRejectInvalidCommand && normalizedSeq == 0 {
			h.logger.Printf("unknown message type %q from %s", msg.Type, sessionID)
			continue
		}
		if !sendCommandReject(reason) {
			return
		}
	}
}
