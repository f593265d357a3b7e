package sim

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

const testDT = 1.0 / 60.0

func newTestPlayer(t *testing.T, id uint32) (*Player, Bounds, *rand.Rand) {
	t.Helper()
	rng := rand.New(rand.NewSource(int64(id)))
	bounds := Bounds{Width: 2000, Height: 2000}
	return NewPlayer(id, "tester", 1, 0x00ff00, 0, rng, bounds), bounds, rng
}

func TestNewPlayerSpawnsAlive(t *testing.T) {
	p, bounds, _ := newTestPlayer(t, 1)

	if !p.Alive {
		t.Fatalf("player not alive after spawn")
	}
	if p.Invincible != InvincibilityWindow {
		t.Fatalf("invincibility = %v, want %v", p.Invincible, InvincibilityWindow)
	}
	if p.DashCharge != MaxDashCharge {
		t.Fatalf("dash charge = %d, want %d", p.DashCharge, MaxDashCharge)
	}
	if p.Pos.X < SpawnMargin || p.Pos.X > bounds.Width-SpawnMargin ||
		p.Pos.Y < SpawnMargin || p.Pos.Y > bounds.Height-SpawnMargin {
		t.Fatalf("spawn position %+v outside the spawn margin", p.Pos)
	}
	if p.Target != p.Pos {
		t.Fatalf("initial target %+v does not equal spawn position %+v", p.Target, p.Pos)
	}
}

func TestNewPlayerTruncatesLongName(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bounds := Bounds{Width: 2000, Height: 2000}
	p := NewPlayer(1, "an-unreasonably-long-player-name", 1, 0, 0, rng, bounds)
	if len(p.Name) != MaxNameLength {
		t.Fatalf("name length = %d, want %d", len(p.Name), MaxNameLength)
	}
}

func TestChainLengthInvariantAcrossTicks(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 2)
	now := time.Unix(100, 0)

	p.SetTarget(bounds.Width-SpawnMargin, bounds.Height-SpawnMargin, bounds)
	for i := 0; i < 240; i++ {
		now = now.Add(time.Second / TickRate)
		p.Update(now, testDT, rng, bounds)
		if len(p.Chain) != ChainLength {
			t.Fatalf("tick %d: chain length = %d, want %d", i, len(p.Chain), ChainLength)
		}
	}
}

func TestSeekDeadzoneStopsAcceleration(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 3)
	now := time.Unix(100, 0)

	p.SetTarget(p.Pos.X+SeekDeadzone-1, p.Pos.Y, bounds)
	p.Update(now, testDT, rng, bounds)
	if p.Vel.Length() != 0 {
		t.Fatalf("velocity %v gained inside the dead-zone", p.Vel)
	}

	p.SetTarget(p.Pos.X+200, p.Pos.Y, bounds)
	p.Update(now.Add(time.Second/TickRate), testDT, rng, bounds)
	if p.Vel.Length() == 0 {
		t.Fatalf("no acceleration toward a target outside the dead-zone")
	}
}

func TestSeekClampsToMaxSpeed(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 4)
	now := time.Unix(100, 0)

	p.SetTarget(bounds.Width-SpawnMargin, p.Pos.Y, bounds)
	for i := 0; i < 600; i++ {
		now = now.Add(time.Second / TickRate)
		p.Update(now, testDT, rng, bounds)
		if speed := p.Vel.Length(); speed > p.MaxSpeed+1e-9 {
			t.Fatalf("tick %d: speed %v exceeds max %v", i, speed, p.MaxSpeed)
		}
	}
}

func TestUseDashSpendsExactlyOneCharge(t *testing.T) {
	p, _, _ := newTestPlayer(t, 5)
	now := time.Unix(100, 0)

	if !p.UseDash(now) {
		t.Fatalf("first dash rejected")
	}
	if p.DashCharge != MaxDashCharge-1 {
		t.Fatalf("dash charge = %d after one dash, want %d", p.DashCharge, MaxDashCharge-1)
	}

	// Spamming inside the cooldown must not spend another charge.
	if p.UseDash(now.Add(10 * time.Millisecond)) {
		t.Fatalf("dash accepted inside the cooldown")
	}
	if p.DashCharge != MaxDashCharge-1 {
		t.Fatalf("dash charge = %d after rejected spam, want %d", p.DashCharge, MaxDashCharge-1)
	}

	if !p.UseDash(now.Add(DashMinInterval)) {
		t.Fatalf("dash rejected after the cooldown elapsed")
	}
	if p.DashCharge != MaxDashCharge-2 {
		t.Fatalf("dash charge = %d, want %d", p.DashCharge, MaxDashCharge-2)
	}
}

func TestDashImpulseFollowsFacing(t *testing.T) {
	p, _, _ := newTestPlayer(t, 6)
	p.Facing = 0
	p.Vel.X, p.Vel.Y = 0, 0

	p.UseDash(time.Unix(100, 0))
	if math.Abs(p.Vel.X-DashImpulse) > 1e-9 || math.Abs(p.Vel.Y) > 1e-9 {
		t.Fatalf("dash velocity = %+v, want (%v, 0)", p.Vel, float64(DashImpulse))
	}
}

func TestDashRegenStaysWithinBounds(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 7)
	now := time.Unix(100, 0)

	// Drain all charges with properly spaced dashes.
	for i := 0; i < MaxDashCharge; i++ {
		now = now.Add(DashMinInterval)
		if !p.UseDash(now) {
			t.Fatalf("dash %d rejected while charges remain", i+1)
		}
	}
	if p.DashCharge != 0 {
		t.Fatalf("dash charge = %d after draining, want 0", p.DashCharge)
	}

	// At 0.5 charges/second a full refill takes 6 seconds; run 10.
	for i := 0; i < 10*TickRate; i++ {
		now = now.Add(time.Second / TickRate)
		p.Update(now, testDT, rng, bounds)
		if p.DashCharge < 0 || p.DashCharge > MaxDashCharge {
			t.Fatalf("tick %d: dash charge %d out of [0, %d]", i, p.DashCharge, MaxDashCharge)
		}
	}
	if p.DashCharge != MaxDashCharge {
		t.Fatalf("dash charge = %d after regen window, want %d", p.DashCharge, MaxDashCharge)
	}
}

func TestDashRegenTruncatesRemainder(t *testing.T) {
	p, _, _ := newTestPlayer(t, 18)
	p.DashCharge = 0
	p.dashAccum = 0

	// 3.8 s at 0.5 charges/s accumulates 1.9: one whole charge is granted
	// and the 0.9 remainder is discarded, not carried.
	p.regenDash(3.8)
	if p.DashCharge != 1 {
		t.Fatalf("dash charge = %d, want 1", p.DashCharge)
	}
	if p.dashAccum != 0 {
		t.Fatalf("accumulator = %v after grant, want 0", p.dashAccum)
	}
}

func TestDerivedStats(t *testing.T) {
	tests := []struct {
		score    int
		level    int
		size     float64
		maxSpeed float64
	}{
		{0, 1, BaseSize, BaseMaxSpeed},
		{99, 1, BaseSize, BaseMaxSpeed},
		{100, 2, BaseSize + SizePerLevel, BaseMaxSpeed - SpeedLossPerLevel},
		{250, 3, BaseSize + 2*SizePerLevel, BaseMaxSpeed - 2*SpeedLossPerLevel},
		{10000, 101, BaseSize + 100*SizePerLevel, MinMaxSpeed},
	}
	p, _, _ := newTestPlayer(t, 8)
	for _, tt := range tests {
		p.Score = tt.score
		p.refreshDerivedStats()
		if p.Level != tt.level {
			t.Fatalf("score %d: level = %d, want %d", tt.score, p.Level, tt.level)
		}
		if p.Size != tt.size {
			t.Fatalf("score %d: size = %v, want %v", tt.score, p.Size, tt.size)
		}
		if p.MaxSpeed != tt.maxSpeed {
			t.Fatalf("score %d: max speed = %v, want %v", tt.score, p.MaxSpeed, tt.maxSpeed)
		}
	}
}

func TestInvincibilityBlocksDamageThenDecays(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 9)
	attacker, _, _ := newTestPlayer(t, 10)
	now := time.Unix(100, 0)

	if p.TakeDamage(attacker, now) {
		t.Fatalf("damage applied during the spawn invincibility window")
	}

	// Burn through the 2 second window.
	for i := 0; i < 3*TickRate; i++ {
		now = now.Add(time.Second / TickRate)
		p.Update(now, testDT, rng, bounds)
	}
	if p.Invincible != 0 {
		t.Fatalf("invincibility = %v after decay window, want 0", p.Invincible)
	}
	if !p.TakeDamage(attacker, now) {
		t.Fatalf("damage rejected after invincibility expired")
	}
}

func TestTakeDamageCreditsAttacker(t *testing.T) {
	p, _, _ := newTestPlayer(t, 11)
	attacker, _, _ := newTestPlayer(t, 12)
	p.Invincible = 0
	p.Score = 250
	p.refreshDerivedStats() // level 3

	now := time.Unix(100, 0)
	if !p.TakeDamage(attacker, now) {
		t.Fatalf("damage rejected")
	}
	if attacker.Kills != 1 {
		t.Fatalf("attacker kills = %d, want 1", attacker.Kills)
	}
	want := KillScoreBase + 3*KillScorePerLevel
	if attacker.Score != want {
		t.Fatalf("attacker score = %d, want %d", attacker.Score, want)
	}
	if p.Alive {
		t.Fatalf("victim still alive")
	}
	if p.Deaths != 1 {
		t.Fatalf("victim deaths = %d, want 1", p.Deaths)
	}
}

func TestRespawnAfterDelay(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 13)
	attacker, _, _ := newTestPlayer(t, 14)
	p.Invincible = 0
	p.Score = 400

	died := time.Unix(100, 0)
	p.TakeDamage(attacker, died)

	early := died.Add(RespawnDelay - time.Second)
	p.Update(early, testDT, rng, bounds)
	if p.Alive {
		t.Fatalf("player respawned before the delay elapsed")
	}

	late := died.Add(RespawnDelay + time.Millisecond)
	p.Update(late, testDT, rng, bounds)
	if !p.Alive {
		t.Fatalf("player not respawned after the delay")
	}
	if p.Score != 0 {
		t.Fatalf("score = %d after respawn, want 0", p.Score)
	}
	if p.Invincible != InvincibilityWindow {
		t.Fatalf("invincibility = %v after respawn, want %v", p.Invincible, InvincibilityWindow)
	}
}

func TestWorldMarginClampsPosition(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 15)
	now := time.Unix(100, 0)

	p.SetTarget(0, 0, bounds)
	for i := 0; i < 20*TickRate; i++ {
		now = now.Add(time.Second / TickRate)
		p.Update(now, testDT, rng, bounds)
	}
	if p.Pos.X < WorldMargin || p.Pos.Y < WorldMargin {
		t.Fatalf("position %+v crossed the world margin", p.Pos)
	}
}

func TestBreakSegmentIntegratesFreely(t *testing.T) {
	p, bounds, rng := newTestPlayer(t, 16)
	now := time.Unix(100, 0)

	p.Chain[p.BreakIndex].VX = 120
	p.Chain[p.BreakIndex].VY = -60
	startX := p.Chain[p.BreakIndex].X

	now = now.Add(time.Second / TickRate)
	p.Update(now, testDT, rng, bounds)

	seg := p.Chain[p.BreakIndex]
	if seg.X <= startX {
		t.Fatalf("break segment did not integrate its own velocity")
	}
	if seg.VX >= 120 {
		t.Fatalf("break segment velocity %v not damped", seg.VX)
	}
}

func TestTuskRatio(t *testing.T) {
	p, _, _ := newTestPlayer(t, 17)

	p.Score = 0
	p.refreshDerivedStats()
	if got := p.TuskRatio(); got != 0 {
		t.Fatalf("level 1 tusk ratio = %v, want 0", got)
	}

	p.Score = 900 // level 10
	p.refreshDerivedStats()
	if got := p.TuskRatio(); got != 1 {
		t.Fatalf("level 10 tusk ratio = %v, want 1", got)
	}

	p.Score = 2000
	p.refreshDerivedStats()
	if got := p.TuskRatio(); got != 1 {
		t.Fatalf("tusk ratio = %v above level 10, want 1", got)
	}
}
