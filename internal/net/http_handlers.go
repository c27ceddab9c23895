package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"net/http/pprof"
	"time"

	"cardshark/server"
	"cardshark/server/internal/localmap"
	"cardshark/server/internal/net/ws"
	"cardshark/server/internal/observability"
	"cardshark/server/internal/worlddoc"
)

type HTTPHandlerConfig struct {
	Logger        *log.Logger
	Observability observability.Config
}

// NewHTTPHandler assembles the service mux: health and diagnostics probes,
// the session join endpoint, the stateless compute API, and the websocket
// gateway. Compute endpoints never touch session state; each request carries
// everything the engine needs.
func NewHTTPHandler(hub *server.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Sessions   any    `json:"sessions"`
			Heartbeat  int64  `json:"heartbeatMillis"`
			Telemetry  any    `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Sessions:   hub.DiagnosticsSnapshot(),
			Heartbeat:  server.HeartbeatInterval().Milliseconds(),
			Telemetry:  hub.TelemetrySnapshot(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		join := hub.Join()
		data, err := json.Marshal(join)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/api/map/exits", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		type exitsRequest struct {
			World  *worlddoc.Document `json:"world"`
			RoomID string             `json:"roomId"`
			Config *localmap.Config   `json:"config,omitempty"`
		}

		var req exitsRequest
		if !decodeComputeRequest(w, r, &req) {
			return
		}
		if req.World == nil {
			httpError(w, "missing world", nethttp.StatusBadRequest)
			return
		}
		if err := req.World.Validate(); err != nil {
			logger.Printf("rejecting world on /api/map/exits: %v", err)
			httpError(w, "invalid world", nethttp.StatusBadRequest)
			return
		}

		roomCfg := localmap.DefaultConfig()
		if room, ok := req.World.Room(req.RoomID); ok {
			roomCfg = room.Config()
		}
		if req.Config != nil {
			roomCfg = req.Config.Normalized()
		}

		exits := localmap.DeriveExits(req.RoomID, req.World.Grid(), roomCfg)
		writeComputeResponse(w, struct {
			Exits []localmap.ExitTile `json:"exits"`
		}{Exits: exits})
	})

	mux.HandleFunc("/api/map/placement", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		type placementRequest struct {
			NPCs   []localmap.NPCSeed    `json:"npcs"`
			Player localmap.TilePosition `json:"player"`
			Config localmap.Config       `json:"config"`
		}

		var req placementRequest
		if !decodeComputeRequest(w, r, &req) {
			return
		}

		entities := localmap.AutoPlaceEntities(req.NPCs, req.Player, req.Config.Normalized())
		writeComputeResponse(w, struct {
			Entities []localmap.Entity `json:"entities"`
		}{Entities: entities})
	})

	mux.HandleFunc("/api/map/threat", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		type threatRequest struct {
			Entities           []localmap.Entity `json:"entities"`
			Config             localmap.Config   `json:"config"`
			DefaultThreatRange *int              `json:"defaultThreatRange,omitempty"`
		}

		var req threatRequest
		if !decodeComputeRequest(w, r, &req) {
			return
		}

		defaultRange := localmap.DefaultThreatRange
		if req.DefaultThreatRange != nil && *req.DefaultThreatRange >= 0 {
			defaultRange = *req.DefaultThreatRange
		}

		tiles := localmap.CalculateThreatZones(req.Entities, req.Config.Normalized(), defaultRange)
		writeComputeResponse(w, struct {
			Tiles []localmap.TilePosition `json:"tiles"`
		}{Tiles: tiles})
	})

	mux.HandleFunc("/api/map/path", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		type pathRequest struct {
			Start        localmap.TilePosition   `json:"start"`
			Goal         localmap.TilePosition   `json:"goal"`
			Config       localmap.Config         `json:"config"`
			BlockedTiles []localmap.TilePosition `json:"blockedTiles,omitempty"`
		}

		var req pathRequest
		if !decodeComputeRequest(w, r, &req) {
			return
		}

		path := localmap.FindPath(req.Start, req.Goal, req.Config.Normalized(), req.BlockedTiles)
		writeComputeResponse(w, struct {
			Path  []localmap.TilePosition `json:"path"`
			Found bool                    `json:"found"`
		}{Path: path, Found: path != nil})
	})

	wsHandler := ws.NewHandler(hub, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	}

	return mux
}

// decodeComputeRequest enforces the shared compute-endpoint contract: POST
// only, JSON body, 400 on malformed payloads. Reports whether the handler
// should continue.
func decodeComputeRequest(w nethttp.ResponseWriter, r *nethttp.Request, dst any) bool {
	if r.Method != nethttp.MethodPost {
		httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
		return false
	}
	if r.Body == nil {
		httpError(w, "missing body", nethttp.StatusBadRequest)
		return false
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpError(w, "invalid payload", nethttp.StatusBadRequest)
		return false
	}
	return true
}

func writeComputeResponse(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
