package ws

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	server "tusk-arena/server"
	"tusk-arena/server/internal/net/proto"
	"tusk-arena/server/internal/sim"
	"tusk-arena/server/logging"
	"tusk-arena/server/logging/network"
)

// Handler coordinates one websocket session per connection: frame intake,
// rate limiting, and the opcode dispatch into the hub.
type Handler struct {
	hub       *server.Hub
	logger    *log.Logger
	publisher logging.Publisher
}

// NewHandler constructs a session handler for the given hub.
func NewHandler(hub *server.Hub, logger *log.Logger, publisher logging.Publisher) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Handler{hub: hub, logger: logger, publisher: publisher}
}

// Serve owns the connection until it closes. Every exit path funnels into
// one idempotent Disconnect, so a socket error after a clean LEAVE cannot
// double-remove the player.
func (h *Handler) Serve(conn *websocket.Conn) {
	if h == nil || h.hub == nil || conn == nil {
		return
	}
	sess := h.hub.Register(conn)
	defer func() {
		h.hub.Disconnect(sess.ID())
		conn.Close()
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("connection %d read failed: %v", sess.ID(), err)
			}
			return
		}
		now := time.Now()

		if !h.hub.AllowInput(sess.ID(), now) {
			h.rejectFrame(sess.ID(), frame, network.ReasonRateLimited)
			continue
		}

		cmd, ok := proto.DecodeCommand(sess.ID(), frame, now)
		if !ok {
			h.rejectFrame(sess.ID(), frame, network.ReasonMalformed)
			continue
		}

		switch cmd.Type {
		case sim.CommandJoin:
			h.hub.SelectRoom(sess.ID(), cmd.Join.RoomID)
		case sim.CommandStart:
			playerID, ok := h.hub.StartPlayer(sess.ID(), cmd.Start.Name, cmd.Start.Color, cmd.Start.Skin)
			if !ok {
				continue
			}
			ack := proto.EncodeStartAck(playerID, cmd.Start.Color, cmd.Start.Skin, cmd.Start.Name)
			if err := sess.Send(ack); err != nil {
				return
			}
		case sim.CommandLobbies:
			reply := proto.EncodeLobbies(h.hub.LobbiesJSON())
			if err := sess.Send(reply); err != nil {
				return
			}
		case sim.CommandTarget, sim.CommandInput:
			h.hub.EnqueueCommand(cmd)
		case sim.CommandPing:
			if err := sess.Send(proto.EncodePingEcho(cmd.Ping.Timestamp)); err != nil {
				return
			}
		case sim.CommandLeave:
			return
		case sim.CommandUnknown:
			// Ignored by contract; no response, no disconnect.
		}
	}
}

func (h *Handler) rejectFrame(connID uint64, frame []byte, reason string) {
	var opcode uint8
	if len(frame) > 0 {
		opcode = frame[0]
	}
	network.FrameRejected(context.Background(), h.publisher, 0,
		logging.EntityRef{ID: connRefID(connID), Kind: logging.EntityKindConnection},
		network.FrameRejectedPayload{Reason: reason, Opcode: opcode})
}

func connRefID(connID uint64) string {
	return "conn-" + strconv.FormatUint(connID, 10)
}
