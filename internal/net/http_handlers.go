package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	server "tusk-arena/server"
	"tusk-arena/server/internal/net/ws"
	"tusk-arena/server/logging"
)

// HTTPHandlerConfig carries the optional pieces of the HTTP surface.
type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
	Metrics   *logging.Metrics
	Publisher logging.Publisher
}

// NewHTTPHandler wires the health, diagnostics, lobby, and websocket
// endpoints onto one mux. The game protocol itself is binary over /ws; the
// HTTP routes exist for operators and the lobby browser.
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
		var telemetry any
		if cfg.Metrics != nil {
			telemetry = cfg.Metrics.Snapshot()
		}
		payload := struct {
			Status      string                     `json:"status"`
			ServerTime  int64                      `json:"serverTime"`
			TickRate    int                        `json:"tickRate"`
			Leaderboard int64                      `json:"leaderboardMillis"`
			Hub         server.DiagnosticsSnapshot `json:"hub"`
			Telemetry   any                        `json:"telemetry,omitempty"`
		}{
			Status:      "ok",
			ServerTime:  time.Now().UnixMilli(),
			TickRate:    server.TickRate(),
			Leaderboard: server.LeaderboardInterval().Milliseconds(),
			Hub:         hub.Diagnostics(),
			Telemetry:   telemetry,
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/lobbies", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(hub.LobbiesJSON())
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	sessions := ws.NewHandler(hub, logger, cfg.Publisher)

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
			return
		}
		go sessions.Serve(conn)
	})

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
