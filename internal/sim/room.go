package sim

import (
	"math/rand"
	"sort"
	"time"

	"tusk-arena/server/internal/geom"
)

// RoomConfig captures the fixed arena definition a room is built from.
type RoomConfig struct {
	ID             uint32
	Name           string
	Width          float64
	Height         float64
	DesiredPlayers int
	FieldType      string
	Seed           int64
}

// Room owns the set of players and food in one bounded arena. Rooms are
// created once at startup and live for the process lifetime; they own the
// lifetime of every entity placed in them.
type Room struct {
	cfg        RoomConfig
	players    map[uint32]*Player
	order      []uint32
	foods      []*Food
	rng        *rand.Rand
	nextFoodID uint32
}

// Death reports one damage application so the caller can notify the victim's
// connection immediately instead of waiting for the next broadcast.
type Death struct {
	VictimID      uint32
	AttackerID    uint32
	VictimLevel   int
	AttackerLevel int
	ScoreAwarded  int
}

// LeaderboardEntry is one scoreboard row.
type LeaderboardEntry struct {
	Name  string
	Level int
	Score int
}

// NewRoom builds an arena and bulk-fills food up to the ceiling. The seed
// fixes the room's RNG so identical configs replay identically.
func NewRoom(cfg RoomConfig) *Room {
	r := &Room{
		cfg:     cfg,
		players: make(map[uint32]*Player),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	for len(r.foods) < FoodCeiling {
		r.spawnFood()
	}
	return r
}

func (r *Room) ID() uint32         { return r.cfg.ID }
func (r *Room) Name() string       { return r.cfg.Name }
func (r *Room) Config() RoomConfig { return r.cfg }

func (r *Room) Bounds() Bounds {
	return Bounds{Width: r.cfg.Width, Height: r.cfg.Height}
}

func (r *Room) PlayerCount() int { return len(r.players) }
func (r *Room) FoodCount() int   { return len(r.foods) }

// Player looks up a room member by id.
func (r *Room) Player(id uint32) (*Player, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.players[id]
	return p, ok
}

// SpawnPlayer creates a player inside this room. Team assignment balances the
// two sides by current membership.
func (r *Room) SpawnPlayer(id uint32, name string, color uint32, skin uint8) *Player {
	team := int8(1)
	var a, b int
	for _, p := range r.players {
		if p.Team == 1 {
			a++
		} else {
			b++
		}
	}
	if a > b {
		team = -1
	}
	p := NewPlayer(id, name, team, color, skin, r.rng, r.Bounds())
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

// RemovePlayer detaches a player from the room. Removing an absent player is
// a no-op, which keeps disconnect idempotent.
func (r *Room) RemovePlayer(id uint32) {
	if r == nil {
		return
	}
	if _, ok := r.players[id]; !ok {
		return
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Room) spawnFood() {
	r.nextFoodID++
	r.foods = append(r.foods, newFood(r.nextFoodID, r.rng, r.cfg.Width, r.cfg.Height))
}

// Update runs one full simulation tick: per-player physics, the two O(n^2)
// collision sweeps, and food floor maintenance. Returned deaths carry the
// pairs that need an immediate defeat notification.
func (r *Room) Update(now time.Time, dt float64) []Death {
	if r == nil {
		return nil
	}
	bounds := r.Bounds()
	for _, id := range r.order {
		r.players[id].Update(now, dt, r.rng, bounds)
	}

	deaths := r.resolvePlayerCollisions(now)
	r.resolveFoodCollisions()

	if len(r.foods) < FoodFloor {
		for i := 0; i < FoodBulkRefill; i++ {
			r.spawnFood()
		}
	}
	return deaths
}

// resolvePlayerCollisions damages the smaller player of every overlapping
// pair, but only when the size gap exceeds the threshold; near-equal sizes
// pass through each other. At most one application per pair per tick.
func (r *Room) resolvePlayerCollisions(now time.Time) []Death {
	var deaths []Death
	for i := 0; i < len(r.order); i++ {
		a, ok := r.players[r.order[i]]
		if !ok || !a.Alive {
			continue
		}
		for j := i + 1; j < len(r.order); j++ {
			b, ok := r.players[r.order[j]]
			if !ok || !b.Alive {
				continue
			}
			dist := geom.Distance(a.Pos, b.Pos)
			if dist >= (a.Size+b.Size)*CollisionRadiusFactor {
				continue
			}
			var larger, smaller *Player
			switch {
			case a.Size-b.Size > SizeGapThreshold:
				larger, smaller = a, b
			case b.Size-a.Size > SizeGapThreshold:
				larger, smaller = b, a
			default:
				continue
			}
			victimLevel := smaller.Level
			if smaller.TakeDamage(larger, now) {
				deaths = append(deaths, Death{
					VictimID:      smaller.ID,
					AttackerID:    larger.ID,
					VictimLevel:   victimLevel,
					AttackerLevel: larger.Level,
					ScoreAwarded:  KillScoreBase + victimLevel*KillScorePerLevel,
				})
			}
		}
	}
	return deaths
}

// resolveFoodCollisions feeds players. Foods are walked in reverse so removal
// is safe mid-loop; each consumed unit has a 70% chance of an immediate
// replacement somewhere else.
func (r *Room) resolveFoodCollisions() {
	for _, id := range r.order {
		p := r.players[id]
		if !p.Alive {
			continue
		}
		for i := len(r.foods) - 1; i >= 0; i-- {
			f := r.foods[i]
			if geom.Distance(p.Pos, geom.Vec2{X: f.X, Y: f.Y}) >= p.Size/2+float64(f.Size) {
				continue
			}
			p.Score += f.Value * FoodScoreMultiplier
			r.foods = append(r.foods[:i], r.foods[i+1:]...)
			if r.rng.Float64() < FoodRespawnChance {
				r.spawnFood()
			}
		}
	}
}

// Leaderboard returns the top alive players by score, best first.
func (r *Room) Leaderboard() []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(r.players))
	for _, id := range r.order {
		p := r.players[id]
		if !p.Alive {
			continue
		}
		entries = append(entries, LeaderboardEntry{Name: p.Name, Level: p.Level, Score: p.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries
}
