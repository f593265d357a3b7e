package server

import (
	"context"
	"time"

	"tusk-arena/server/internal/net/proto"
	"tusk-arena/server/internal/sim"
	"tusk-arena/server/logging/combat"
)

// roomDeath pairs a simulation death with the room it happened in.
type roomDeath struct {
	roomID uint32
	death  sim.Death
}

// tickResult carries everything a tick produced that needs I/O after the hub
// lock is released.
type tickResult struct {
	frames      map[uint32][]byte
	ripTargets  []*Session
	deaths      []roomDeath
	leaderboard map[uint32][]byte
}

// RunSimulation drives the fixed-rate loop until the stop channel closes.
// Each tick measures real wall-clock dt, so simulation speed follows the
// host: the variable-dt contract is deliberate and lag-dependent.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	if h == nil {
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(h.cfg.TickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(h.cfg.TickRate)
			}
			last = now

			result := h.Advance(now, dt)
			h.deliver(result)
		}
	}
}

// Advance runs exactly one tick: apply staged commands, step every room,
// and encode the per-room broadcasts. All mutation happens under the hub
// lock; the returned result is pure data for the delivery phase.
func (h *Hub) Advance(now time.Time, dt float64) tickResult {
	commands := h.commands.Drain()

	h.mu.Lock()
	tick := h.tick.Add(1)

	for _, cmd := range commands {
		h.applyCommandLocked(cmd, now)
	}

	result := tickResult{frames: make(map[uint32][]byte, len(h.order))}
	for _, roomID := range h.order {
		room := h.rooms[roomID]
		for _, death := range room.Update(now, dt) {
			result.deaths = append(result.deaths, roomDeath{roomID: roomID, death: death})
		}
		result.frames[roomID] = proto.EncodeWorldSnapshot(room.Snapshot(), now)
	}

	for _, rd := range result.deaths {
		if sess := h.sessionForPlayerLocked(rd.death.VictimID); sess != nil {
			result.ripTargets = append(result.ripTargets, sess)
		}
	}

	if now.Sub(h.lastLeaderboard) >= sim.LeaderboardInterval {
		h.lastLeaderboard = now
		result.leaderboard = make(map[uint32][]byte, len(h.order))
		for _, roomID := range h.order {
			result.leaderboard[roomID] = proto.EncodeLeaderboard(h.rooms[roomID].Leaderboard())
		}
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.Store("hub.tick", tick)
	}
	for _, rd := range result.deaths {
		combat.PlayerKilled(context.Background(), h.publisher, tick,
			playerRef(rd.death.AttackerID), playerRef(rd.death.VictimID),
			combat.KillPayload{
				RoomID:        rd.roomID,
				VictimLevel:   rd.death.VictimLevel,
				AttackerLevel: rd.death.AttackerLevel,
				ScoreAwarded:  rd.death.ScoreAwarded,
			})
	}
	return result
}

// applyCommandLocked mutates player intent for the staged command. Only the
// movement target and the dash trigger are reachable here; everything else
// is handled synchronously at the session layer.
func (h *Hub) applyCommandLocked(cmd sim.Command, now time.Time) {
	sess, ok := h.sessions[cmd.ConnID]
	if !ok || !sess.started {
		return
	}
	room, ok := h.rooms[sess.roomID]
	if !ok {
		return
	}
	player, ok := room.Player(sess.playerID)
	if !ok {
		return
	}
	switch cmd.Type {
	case sim.CommandTarget:
		player.SetTarget(cmd.Target.X, cmd.Target.Y, room.Bounds())
	case sim.CommandInput:
		if cmd.Input.Dash() {
			player.UseDash(now)
		}
	default:
		// Join/Start/Ping/Lobbies/Leave never reach the command ring.
	}
}

func (h *Hub) sessionForPlayerLocked(playerID uint32) *Session {
	for _, sess := range h.sessions {
		if sess.started && sess.playerID == playerID {
			return sess
		}
	}
	return nil
}

// broadcastTarget pairs a session with the room it belonged to when the
// recipient list was snapshotted. Room selection mutates under the hub lock,
// so the routing decision must be captured inside the same critical section.
type broadcastTarget struct {
	sess   *Session
	roomID uint32
}

// deliver fans the tick's frames out to the sockets. Sends are
// fire-and-forget: a closed or unready connection is disconnected, never
// queued or retried. Death notifications go out before the snapshot so the
// victim hears about it without waiting a broadcast interval.
func (h *Hub) deliver(result tickResult) {
	rip := proto.EncodeRIP()
	for _, sess := range result.ripTargets {
		if err := sess.Send(rip); err != nil {
			h.Disconnect(sess.ID())
		}
	}

	h.mu.Lock()
	recipients := make([]broadcastTarget, 0, len(h.sessions))
	for _, sess := range h.sessions {
		if sess.started {
			recipients = append(recipients, broadcastTarget{sess: sess, roomID: sess.roomID})
		}
	}
	h.mu.Unlock()

	for _, target := range recipients {
		frame, ok := result.frames[target.roomID]
		if !ok {
			continue
		}
		if err := target.sess.Send(frame); err != nil {
			h.logger.Printf("dropping connection %d: %v", target.sess.ID(), err)
			h.Disconnect(target.sess.ID())
			continue
		}
		if board, ok := result.leaderboard[target.roomID]; ok {
			if err := target.sess.Send(board); err != nil {
				h.Disconnect(target.sess.ID())
			}
		}
	}
}
