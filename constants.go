package server

import (
	"time"

	"tusk-arena/server/internal/sim"
)

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second
)

// TickRate reports the nominal simulation frequency for diagnostics.
func TickRate() int { return sim.TickRate }

// LeaderboardInterval reports the scoreboard broadcast cadence.
func LeaderboardInterval() time.Duration { return sim.LeaderboardInterval }
