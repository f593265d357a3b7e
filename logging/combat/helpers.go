package combat

import (
	"context"

	"tusk-arena/server/logging"
)

const (
	// EventPlayerKilled is emitted when a collision kills a player.
	EventPlayerKilled logging.EventType = "combat.player_killed"
)

// KillPayload captures the size matchup and the score awarded for a kill.
type KillPayload struct {
	RoomID        uint32 `json:"roomId"`
	VictimLevel   int    `json:"victimLevel"`
	AttackerLevel int    `json:"attackerLevel"`
	ScoreAwarded  int    `json:"scoreAwarded"`
}

// PlayerKilled publishes a kill event with the attacker as actor and the
// victim as target.
func PlayerKilled(ctx context.Context, pub logging.Publisher, tick uint64, attacker, victim logging.EntityRef, payload KillPayload) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventPlayerKilled,
		Tick:     tick,
		Actor:    attacker,
		Targets:  []logging.EntityRef{victim},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	}
	pub.Publish(ctx, event)
}
