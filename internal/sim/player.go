package sim

import (
	"math"
	"math/rand"
	"time"

	"tusk-arena/server/internal/geom"
)

// Bounds describes the playable rectangle of a room. It is passed explicitly
// into every player step; players never reach back into a global room table.
type Bounds struct {
	Width  float64
	Height float64
}

// Player is one simulated arena entity: a head with a trailing articulated
// chain, dash charges, score-derived stats, and a respawn timer. All fields
// are server-owned; the only client-writable inputs are the movement target
// and the dash trigger, both of which pass through validation first.
type Player struct {
	ID    uint32
	Name  string
	Team  int8
	Color uint32
	Skin  uint8

	Pos    geom.Vec2
	Vel    geom.Vec2
	Facing float64
	Speed  float64

	Score  int
	Level  int
	Kills  int
	Deaths int

	Size     float64
	MaxSpeed float64

	Chain      []BodySegment
	BreakIndex int

	DashCharge int
	MaxDash    int
	dashAccum  float64
	lastDash   time.Time

	Invincible float64
	Alive      bool
	respawnAt  time.Time

	Target geom.Vec2
}

// NewPlayer spawns a player immediately (the join handshake is synchronous,
// so the initial state is ALIVE). Identity is assigned by the hub's monotonic
// counter.
func NewPlayer(id uint32, name string, team int8, color uint32, skin uint8, rng *rand.Rand, bounds Bounds) *Player {
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	p := &Player{
		ID:         id,
		Name:       name,
		Team:       team,
		Color:      color,
		Skin:       skin,
		BreakIndex: DefaultBreakIndex,
		MaxDash:    MaxDashCharge,
	}
	p.spawn(rng, bounds)
	return p
}

// spawn places the player at a random point at least SpawnMargin away from
// every edge and resets all transient combat state.
func (p *Player) spawn(rng *rand.Rand, bounds Bounds) {
	x := SpawnMargin + rng.Float64()*math.Max(0, bounds.Width-2*SpawnMargin)
	y := SpawnMargin + rng.Float64()*math.Max(0, bounds.Height-2*SpawnMargin)
	p.Pos = geom.Vec2{X: x, Y: y}
	p.Vel = geom.Vec2{}
	p.Speed = 0
	p.Score = 0
	p.DashCharge = p.MaxDash
	p.dashAccum = 0
	p.Invincible = InvincibilityWindow
	p.Alive = true
	p.Target = p.Pos

	p.refreshDerivedStats()
	p.resetChain()
}

// resetChain lays every segment on the head so the tail unfolds naturally
// over the next few ticks.
func (p *Player) resetChain() {
	if len(p.Chain) != ChainLength {
		p.Chain = make([]BodySegment, ChainLength)
	}
	for i := range p.Chain {
		p.Chain[i] = BodySegment{X: p.Pos.X, Y: p.Pos.Y, Rot: p.Facing, RestRot: p.Facing}
	}
}

// refreshDerivedStats recomputes the score-derived fields. Level is always at
// least 1.
func (p *Player) refreshDerivedStats() {
	p.Level = p.Score/ScorePerLevel + 1
	p.Size = BaseSize + float64(p.Level-1)*SizePerLevel
	p.MaxSpeed = math.Max(MinMaxSpeed, BaseMaxSpeed-float64(p.Level-1)*SpeedLossPerLevel)
}

// Update advances the player by one tick. While dead the only work is the
// respawn timer check. The step order is significant: later stages consume
// what earlier stages produced this same tick.
func (p *Player) Update(now time.Time, dt float64, rng *rand.Rand, bounds Bounds) {
	if p == nil {
		return
	}
	if !p.Alive {
		if now.After(p.respawnAt) {
			p.spawn(rng, bounds)
		}
		return
	}

	if p.Invincible > 0 {
		p.Invincible = math.Max(0, p.Invincible-dt)
	}

	p.regenDash(dt)
	p.seek(dt)

	// Flat per-tick friction, uncompensated for variable dt. Kept literally:
	// drift under lag matches the reference behaviour.
	p.Vel = p.Vel.Scale(FrictionFactor)

	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	p.Speed = p.Vel.Length()

	p.followChain(dt)

	p.Pos = geom.Clamp(p.Pos, WorldMargin, WorldMargin, bounds.Width-WorldMargin, bounds.Height-WorldMargin)

	p.refreshDerivedStats()
}

// regenDash accumulates fractional charge; whole charges are granted one at a
// time and the remainder is discarded, so DashCharge stays an integer in
// [0, MaxDash] between ticks.
func (p *Player) regenDash(dt float64) {
	if p.DashCharge >= p.MaxDash {
		p.dashAccum = 0
		return
	}
	p.dashAccum += dt * DashRegenRate
	if p.dashAccum >= 1.0 {
		p.DashCharge++
		if p.DashCharge > p.MaxDash {
			p.DashCharge = p.MaxDash
		}
		p.dashAccum = 0
	}
}

// seek accelerates toward the validated target, with a dead-zone so the head
// does not jitter around the goal, then clamps velocity to MaxSpeed.
func (p *Player) seek(dt float64) {
	toTarget := p.Target.Sub(p.Pos)
	if toTarget.Length() > SeekDeadzone {
		dir := toTarget.Normalized()
		p.Vel = p.Vel.Add(dir.Scale(SeekAccel * dt))
		p.Facing = dir.Angle()
	}
	if speed := p.Vel.Length(); speed > p.MaxSpeed {
		p.Vel = p.Vel.Scale(p.MaxSpeed / speed)
	}
}

// followChain drags the body behind the head. Segment 0 mirrors the head;
// every other segment except the break index lags 40% toward a point trailing
// its predecessor; the break-index segment integrates like a free body with
// its own damping.
func (p *Player) followChain(dt float64) {
	if len(p.Chain) == 0 {
		return
	}
	head := &p.Chain[0]
	head.X = p.Pos.X
	head.Y = p.Pos.Y
	head.VX = p.Vel.X
	head.VY = p.Vel.Y
	head.Rot = p.Facing

	spacing := ChainSpacingBase + p.Size*ChainSpacingPerSize
	for i := 1; i < len(p.Chain); i++ {
		seg := &p.Chain[i]
		if i == p.BreakIndex {
			seg.X += seg.VX * dt
			seg.Y += seg.VY * dt
			seg.Rot += seg.AngularVel * dt
			seg.VX *= BreakLinearDamping
			seg.VY *= BreakLinearDamping
			seg.AngularVel *= BreakAngularDamping
			continue
		}
		prev := &p.Chain[i-1]
		targetX := prev.X - math.Cos(prev.Rot)*spacing
		targetY := prev.Y - math.Sin(prev.Rot)*spacing
		seg.X += (targetX - seg.X) * ChainFollowRate
		seg.Y += (targetY - seg.Y) * ChainFollowRate
		seg.Rot = math.Atan2(prev.Y-seg.Y, prev.X-seg.X)
	}
}

// SetTarget stores a movement goal clamped into the room rectangle. This is
// the only network-reachable movement channel; positions themselves are never
// writable from outside.
func (p *Player) SetTarget(x, y float64, bounds Bounds) {
	if p == nil {
		return
	}
	p.Target = geom.Clamp(geom.Vec2{X: x, Y: y}, 0, 0, bounds.Width, bounds.Height)
}

// UseDash spends one charge and adds an impulse along the current facing.
// The impulse is additive and uncapped until the next tick's seek clamp, so a
// dash can momentarily exceed MaxSpeed. Reports whether the dash applied.
func (p *Player) UseDash(now time.Time) bool {
	if p == nil || !p.Alive {
		return false
	}
	if !ValidateDash(p, now) {
		return false
	}
	p.DashCharge--
	p.lastDash = now
	p.Vel = p.Vel.Add(geom.Vec2{
		X: math.Cos(p.Facing) * DashImpulse,
		Y: math.Sin(p.Facing) * DashImpulse,
	})
	return true
}

// TakeDamage transitions the player to DEAD unless invincible. A different
// attacker is credited with the kill and a level-scaled score bonus. Returns
// whether damage was applied; the caller delivers the immediate death
// notification.
func (p *Player) TakeDamage(attacker *Player, now time.Time) bool {
	if p == nil || !p.Alive || p.Invincible > 0 {
		return false
	}
	if attacker != nil && attacker.ID != p.ID {
		attacker.Kills++
		attacker.Score += KillScoreBase + p.Level*KillScorePerLevel
	}
	p.Alive = false
	p.Deaths++
	p.respawnAt = now.Add(RespawnDelay)
	return true
}

// OverDashFraction exposes the fractional regen accumulator for encoding.
func (p *Player) OverDashFraction() float64 {
	if p == nil {
		return 0
	}
	return math.Min(p.dashAccum, 1)
}

// TuskRatio grows with level toward a full tusk at level 10.
func (p *Player) TuskRatio() float64 {
	if p == nil {
		return 0
	}
	return math.Min(1, float64(p.Level-1)/9)
}
