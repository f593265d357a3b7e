package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"tusk-arena/server/internal/sim"
	"tusk-arena/server/internal/telemetry"
	"tusk-arena/server/logging"
	"tusk-arena/server/logging/lifecycle"
)

// HubConfig tunes the hub's loop and command intake.
type HubConfig struct {
	Arenas          []sim.RoomConfig
	TickRate        int
	CommandCapacity int
	InputRateLimit  int
	Logger          telemetry.Logger
	Metrics         telemetry.Metrics
	Publisher       logging.Publisher
}

// DefaultHubConfig returns the production defaults: the built-in tick rate,
// a command ring big enough for a full room, and the input-rate ceiling.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:        sim.TickRate,
		CommandCapacity: 4096,
		InputRateLimit:  sim.MaxInputPerSecond,
	}
}

// Session is one live client connection. Writes are serialized by the
// session mutex; sends are fire-and-forget with a deadline, and a failed
// write tears the session down.
type Session struct {
	id   uint64
	conn *websocket.Conn
	mu   sync.Mutex

	playerID uint32
	roomID   uint32
	started  bool
}

func (s *Session) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Send writes one binary frame with the hub write deadline.
func (s *Session) Send(data []byte) error {
	if s == nil || s.conn == nil {
		return fmt.Errorf("session closed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Hub owns every room, session, and live player. One mutex guards the
// simulation state: tick execution and command application are mutually
// exclusive, so a handler's mutation is always fully visible (or fully
// absent) to the next tick.
type Hub struct {
	mu       sync.Mutex
	rooms    map[uint32]*sim.Room
	order    []uint32
	sessions map[uint64]*Session

	nextConnID   atomic.Uint64
	nextPlayerID atomic.Uint32

	commands *sim.CommandBuffer
	limiter  *sim.RateLimiter

	cfg       HubConfig
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher

	tick            atomic.Uint64
	lastLeaderboard time.Time
}

// NewHub builds a hub with the provided configuration. Rooms are created
// once, up front, and live for the process lifetime.
func NewHub(cfg HubConfig) *Hub {
	if cfg.TickRate <= 0 {
		cfg.TickRate = sim.TickRate
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = 4096
	}
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	h := &Hub{
		rooms:     make(map[uint32]*sim.Room),
		sessions:  make(map[uint64]*Session),
		commands:  sim.NewCommandBuffer(cfg.CommandCapacity, cfg.Metrics),
		limiter:   sim.NewRateLimiter(cfg.InputRateLimit),
		cfg:       cfg,
		logger:    logger,
		metrics:   cfg.Metrics,
		publisher: publisher,
	}
	for _, arena := range cfg.Arenas {
		if _, exists := h.rooms[arena.ID]; exists {
			continue
		}
		h.rooms[arena.ID] = sim.NewRoom(arena)
		h.order = append(h.order, arena.ID)
	}
	return h
}

// Register allocates a session for a freshly upgraded connection. The
// session has no player until a START command arrives.
func (h *Hub) Register(conn *websocket.Conn) *Session {
	sess := &Session{id: h.nextConnID.Add(1), conn: conn}
	h.mu.Lock()
	h.sessions[sess.id] = sess
	h.mu.Unlock()
	return sess
}

// Disconnect removes a session and its player entity. Idempotent: a second
// call for the same connection is a no-op, and the underlying socket close
// is left to the transport.
func (h *Hub) Disconnect(connID uint64) {
	h.limiter.Forget(connID)

	h.mu.Lock()
	sess, ok := h.sessions[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, connID)
	var removed uint32
	if sess.started {
		if room, ok := h.rooms[sess.roomID]; ok {
			room.RemovePlayer(sess.playerID)
			removed = sess.playerID
		}
	}
	tick := h.tick.Load()
	h.mu.Unlock()

	if removed != 0 {
		lifecycle.PlayerDisconnected(context.Background(), h.publisher, tick,
			playerRef(removed), lifecycle.PlayerDisconnectedPayload{Reason: "connection_closed"})
	}
}

// SelectRoom records the JOIN choice for a connection. Unknown rooms are
// ignored; the session keeps its previous selection.
func (h *Hub) SelectRoom(connID uint64, roomID uint32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[connID]
	if !ok {
		return false
	}
	if _, ok := h.rooms[roomID]; !ok {
		return false
	}
	sess.roomID = roomID
	return true
}

// StartPlayer creates the player entity for a connection and returns its
// assigned id. Spawn runs synchronously, so the player is alive and part of
// the next broadcast as soon as this returns. Without a prior JOIN the first
// configured arena is used.
func (h *Hub) StartPlayer(connID uint64, name string, color uint32, skin uint8) (uint32, bool) {
	h.mu.Lock()
	sess, ok := h.sessions[connID]
	if !ok {
		h.mu.Unlock()
		return 0, false
	}
	if sess.started {
		h.mu.Unlock()
		return sess.playerID, true
	}
	roomID := sess.roomID
	if _, ok := h.rooms[roomID]; !ok {
		if len(h.order) == 0 {
			h.mu.Unlock()
			return 0, false
		}
		roomID = h.order[0]
	}
	room := h.rooms[roomID]
	playerID := h.nextPlayerID.Add(1)
	player := room.SpawnPlayer(playerID, name, color, skin)
	sess.playerID = playerID
	sess.roomID = roomID
	sess.started = true
	tick := h.tick.Load()
	spawnX, spawnY := player.Pos.X, player.Pos.Y
	h.mu.Unlock()

	lifecycle.PlayerJoined(context.Background(), h.publisher, tick, playerRef(playerID),
		lifecycle.PlayerJoinedPayload{RoomID: roomID, SpawnX: spawnX, SpawnY: spawnY})
	if h.metrics != nil {
		h.metrics.Add("hub.players_started", 1)
	}
	return playerID, true
}

// AllowInput applies the per-connection rate ceiling to one inbound frame.
func (h *Hub) AllowInput(connID uint64, now time.Time) bool {
	allowed := h.limiter.Allow(connID, now)
	if !allowed && h.metrics != nil {
		h.metrics.Add("hub.frames_rate_limited", 1)
	}
	return allowed
}

// EnqueueCommand stages a decoded intent for the next tick. A full ring
// drops the command silently, matching the input-handling contract.
func (h *Hub) EnqueueCommand(cmd sim.Command) bool {
	return h.commands.Push(cmd)
}

// LobbiesJSON renders the room list as the JSON array body of the
// GET_LOBBIES reply.
func (h *Hub) LobbiesJSON() []byte {
	h.mu.Lock()
	descriptors := make([]lobbyDescriptor, 0, len(h.order))
	for _, id := range h.order {
		room := h.rooms[id]
		cfg := room.Config()
		descriptors = append(descriptors, lobbyDescriptor{
			ID:             cfg.ID,
			Name:           cfg.Name,
			Width:          cfg.Width,
			Height:         cfg.Height,
			Players:        room.PlayerCount(),
			DesiredPlayers: cfg.DesiredPlayers,
			FieldType:      cfg.FieldType,
		})
	}
	h.mu.Unlock()

	data, err := json.Marshal(descriptors)
	if err != nil {
		h.logger.Printf("failed to marshal lobby list: %v", err)
		return []byte("[]")
	}
	return data
}

// Diagnostics exposes room occupancy for the HTTP endpoint.
func (h *Hub) Diagnostics() DiagnosticsSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := DiagnosticsSnapshot{
		Connections: len(h.sessions),
		Rooms:       make([]diagnosticsRoom, 0, len(h.order)),
		Tick:        h.tick.Load(),
	}
	for _, id := range h.order {
		room := h.rooms[id]
		snap.Rooms = append(snap.Rooms, diagnosticsRoom{
			ID:      room.ID(),
			Name:    room.Name(),
			Players: room.PlayerCount(),
			Foods:   room.FoodCount(),
		})
	}
	return snap
}

func playerRef(id uint32) logging.EntityRef {
	return logging.EntityRef{ID: fmt.Sprintf("player-%d", id), Kind: logging.EntityKindPlayer}
}
