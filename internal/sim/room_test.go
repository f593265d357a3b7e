package sim

import (
	"testing"
	"time"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	return NewRoom(RoomConfig{
		ID:     1,
		Name:   "test",
		Width:  2000,
		Height: 2000,
		Seed:   42,
	})
}

func TestNewRoomFillsFoodToCeiling(t *testing.T) {
	r := newTestRoom(t)
	if r.FoodCount() != FoodCeiling {
		t.Fatalf("food count = %d, want %d", r.FoodCount(), FoodCeiling)
	}
}

func TestSpawnPlayerBalancesTeams(t *testing.T) {
	r := newTestRoom(t)
	var a, b int
	for i := uint32(1); i <= 10; i++ {
		p := r.SpawnPlayer(i, "p", 0, 0)
		if p.Team == 1 {
			a++
		} else {
			b++
		}
	}
	if diff := a - b; diff < -1 || diff > 1 {
		t.Fatalf("team sizes %d vs %d differ by more than one", a, b)
	}
}

func TestRemovePlayerIsIdempotent(t *testing.T) {
	r := newTestRoom(t)
	r.SpawnPlayer(1, "p", 0, 0)

	r.RemovePlayer(1)
	if r.PlayerCount() != 0 {
		t.Fatalf("player count = %d after removal, want 0", r.PlayerCount())
	}
	r.RemovePlayer(1)
	r.RemovePlayer(99)
	if r.PlayerCount() != 0 {
		t.Fatalf("player count changed by redundant removals")
	}
}

func TestPlayerCollisionKillsSmallerAcrossGap(t *testing.T) {
	r := newTestRoom(t)
	big := r.SpawnPlayer(1, "big", 0, 0)
	small := r.SpawnPlayer(2, "small", 0, 0)

	big.Size = 40
	small.Size = 20
	big.Invincible = 0
	small.Invincible = 0
	small.Pos = big.Pos

	deaths := r.resolvePlayerCollisions(time.Unix(100, 0))
	if len(deaths) != 1 {
		t.Fatalf("deaths = %d, want 1", len(deaths))
	}
	if deaths[0].VictimID != small.ID || deaths[0].AttackerID != big.ID {
		t.Fatalf("death %+v credits the wrong pair", deaths[0])
	}
	if small.Alive {
		t.Fatalf("smaller player survived the overlap")
	}
	if big.Kills != 1 {
		t.Fatalf("attacker kills = %d, want 1", big.Kills)
	}
}

func TestPlayerCollisionNearEqualSizesPassThrough(t *testing.T) {
	r := newTestRoom(t)
	a := r.SpawnPlayer(1, "a", 0, 0)
	b := r.SpawnPlayer(2, "b", 0, 0)

	a.Size = 25
	b.Size = 20
	a.Invincible = 0
	b.Invincible = 0
	b.Pos = a.Pos

	deaths := r.resolvePlayerCollisions(time.Unix(100, 0))
	if len(deaths) != 0 {
		t.Fatalf("deaths = %d for a %v size gap, want 0", len(deaths), a.Size-b.Size)
	}
	if !a.Alive || !b.Alive {
		t.Fatalf("near-equal players damaged each other")
	}
}

func TestPlayerCollisionRespectsInvincibility(t *testing.T) {
	r := newTestRoom(t)
	big := r.SpawnPlayer(1, "big", 0, 0)
	small := r.SpawnPlayer(2, "small", 0, 0)

	big.Size = 40
	small.Size = 20
	big.Invincible = 0
	small.Invincible = 1.0
	small.Pos = big.Pos

	deaths := r.resolvePlayerCollisions(time.Unix(100, 0))
	if len(deaths) != 0 {
		t.Fatalf("invincible player took damage")
	}
}

func TestFoodConsumptionAwardsScore(t *testing.T) {
	r := newTestRoom(t)
	p := r.SpawnPlayer(1, "eater", 0, 0)

	f := r.foods[0]
	f.Value = 3
	p.Pos.X, p.Pos.Y = f.X, f.Y

	before := r.FoodCount()
	r.resolveFoodCollisions()
	if p.Score < 3*FoodScoreMultiplier {
		t.Fatalf("score = %d after eating a value-3 food, want at least %d", p.Score, 3*FoodScoreMultiplier)
	}
	// Consumption may roll an immediate replacement, so the count can only
	// stay level or shrink by the units eaten.
	if r.FoodCount() > before {
		t.Fatalf("food count grew from %d to %d on consumption", before, r.FoodCount())
	}
}

func TestFoodReplacementRateNearSeventyPercent(t *testing.T) {
	r := newTestRoom(t)
	p := r.SpawnPlayer(1, "eater", 0, 0)
	p.Pos.X, p.Pos.Y = 500, 500

	// One food per trial, planted under the player so exactly one unit is
	// consumed per sweep. The room RNG is seeded, so the rate is stable.
	const trials = 1000
	replaced := 0
	for i := 0; i < trials; i++ {
		r.foods = []*Food{{ID: uint32(i + 1), X: 500, Y: 500, Value: 1, Size: FoodBaseSize}}
		r.resolveFoodCollisions()
		replaced += len(r.foods)
	}

	rate := float64(replaced) / trials
	if rate < 0.65 || rate > 0.75 {
		t.Fatalf("replacement rate = %v over %d trials, want about %v", rate, trials, FoodRespawnChance)
	}
}

func TestFoodFloorTriggersBulkRefill(t *testing.T) {
	r := newTestRoom(t)
	r.foods = r.foods[:FoodFloor-1]

	r.Update(time.Unix(100, 0), 1.0/TickRate)
	if r.FoodCount() != FoodFloor-1+FoodBulkRefill {
		t.Fatalf("food count = %d after refill, want %d", r.FoodCount(), FoodFloor-1+FoodBulkRefill)
	}
}

func TestLeaderboardOrdersAliveByScore(t *testing.T) {
	r := newTestRoom(t)
	low := r.SpawnPlayer(1, "low", 0, 0)
	high := r.SpawnPlayer(2, "high", 0, 0)
	dead := r.SpawnPlayer(3, "dead", 0, 0)

	low.Score = 100
	high.Score = 900
	dead.Score = 5000
	dead.Alive = false

	board := r.Leaderboard()
	if len(board) != 2 {
		t.Fatalf("board size = %d, want 2", len(board))
	}
	if board[0].Name != "high" || board[1].Name != "low" {
		t.Fatalf("board order = %q, %q", board[0].Name, board[1].Name)
	}
}

func TestLeaderboardCapsAtTopTen(t *testing.T) {
	r := newTestRoom(t)
	for i := uint32(1); i <= 15; i++ {
		p := r.SpawnPlayer(i, "p", 0, 0)
		p.Score = int(i) * 10
	}
	board := r.Leaderboard()
	if len(board) != LeaderboardSize {
		t.Fatalf("board size = %d, want %d", len(board), LeaderboardSize)
	}
	if board[0].Score != 150 {
		t.Fatalf("top score = %d, want 150", board[0].Score)
	}
}

func TestSnapshotSkipsDeadPlayers(t *testing.T) {
	r := newTestRoom(t)
	r.SpawnPlayer(1, "alive", 0, 0)
	dead := r.SpawnPlayer(2, "dead", 0, 0)
	dead.Alive = false

	snap := r.Snapshot()
	if len(snap.Players) != 1 {
		t.Fatalf("snapshot players = %d, want 1", len(snap.Players))
	}
	if snap.Players[0].ID != 1 {
		t.Fatalf("snapshot contains the wrong player %d", snap.Players[0].ID)
	}
	if len(snap.Foods) != r.FoodCount() {
		t.Fatalf("snapshot foods = %d, want %d", len(snap.Foods), r.FoodCount())
	}
}
