package sim

import "time"

const (
	// TickRate is the nominal simulation frequency. The loop still measures
	// real dt per tick, so behaviour is lag-dependent by contract.
	TickRate = 60

	// ChainLength is the fixed number of body segments per player, head
	// included. It never changes for the lifetime of the entity.
	ChainLength = 11
	// DefaultBreakIndex marks the one segment that free-integrates instead of
	// chain-following its predecessor.
	DefaultBreakIndex = 10

	MaxNameLength = 16

	MaxInputPerSecond = 120
	MaxVelocity       = 400.0 // ceiling used by the position plausibility check

	DashMinInterval = 100 * time.Millisecond
	MaxDashCharge   = 3
	DashRegenRate   = 0.5 // charges per second, quantized via the accumulator
	DashImpulse     = 260.0

	SeekDeadzone = 10.0
	SeekAccel    = 420.0
	// FrictionFactor is applied as a flat per-tick multiplier, deliberately
	// not compensated for variable dt.
	FrictionFactor = 0.94

	ChainFollowRate     = 0.4
	ChainSpacingBase    = 25.0
	ChainSpacingPerSize = 0.2
	BreakLinearDamping  = 0.98
	BreakAngularDamping = 0.95

	WorldMargin = 100.0
	SpawnMargin = 200.0

	RespawnDelay        = 3 * time.Second
	InvincibilityWindow = 2.0 // seconds

	BaseSize          = 36.0
	SizePerLevel      = 3.0
	BaseMaxSpeed      = 150.0
	SpeedLossPerLevel = 5.0
	MinMaxSpeed       = 80.0
	ScorePerLevel     = 100

	CollisionRadiusFactor = 0.6
	SizeGapThreshold      = 10.0
	KillScoreBase         = 100
	KillScorePerLevel     = 20

	FoodScoreMultiplier = 10
	FoodFloor           = 250
	FoodCeiling         = 300
	FoodBulkRefill      = 10
	FoodRespawnChance   = 0.7
	FoodRichChance      = 0.1
	FoodBaseSize        = 6
	FoodRichSize        = 10

	LeaderboardSize     = 10
	LeaderboardInterval = 5 * time.Second
)
