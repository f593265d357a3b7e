package sim

import "math"

// RoomSnapshot is a value copy of the encodable room state, taken under the
// hub lock and handed to the codec. The codec never touches live entities.
type RoomSnapshot struct {
	ID      uint32
	Name    string
	Players []PlayerSnapshot
	Foods   []FoodSnapshot
}

type PlayerSnapshot struct {
	ID         uint32
	Name       string
	Team       int8
	Color      uint32
	Skin       uint8
	Level      int
	Alpha      float64
	MaxDash    int
	DashCharge int
	OverDash   float64
	TuskRatio  float64
	Decoration uint8
	X          float64
	Y          float64
	Speed      float64
	VelAngle   float64
	Rot        float64
	Invincible float64 // fraction of the invincibility window remaining
	BreakIndex int
	Segments   []SegmentSnapshot
}

type SegmentSnapshot struct {
	X   float64
	Y   float64
	VX  float64
	VY  float64
	Rot float64
}

type FoodSnapshot struct {
	ID    uint32
	X     float64
	Y     float64
	Value int
	Size  uint8
	Color uint32
}

// Snapshot copies the alive players (in join order) and the food list.
func (r *Room) Snapshot() RoomSnapshot {
	if r == nil {
		return RoomSnapshot{}
	}
	snap := RoomSnapshot{
		ID:      r.cfg.ID,
		Name:    r.cfg.Name,
		Players: make([]PlayerSnapshot, 0, len(r.players)),
		Foods:   make([]FoodSnapshot, 0, len(r.foods)),
	}
	for _, id := range r.order {
		p := r.players[id]
		if !p.Alive {
			continue
		}
		snap.Players = append(snap.Players, p.snapshot())
	}
	for _, f := range r.foods {
		snap.Foods = append(snap.Foods, FoodSnapshot{
			ID:    f.ID,
			X:     f.X,
			Y:     f.Y,
			Value: f.Value,
			Size:  f.Size,
			Color: f.Color,
		})
	}
	return snap
}

func (p *Player) snapshot() PlayerSnapshot {
	snap := PlayerSnapshot{
		ID:         p.ID,
		Name:       p.Name,
		Team:       p.Team,
		Color:      p.Color,
		Skin:       p.Skin,
		Level:      p.Level,
		Alpha:      1,
		MaxDash:    p.MaxDash,
		DashCharge: p.DashCharge,
		OverDash:   p.OverDashFraction(),
		TuskRatio:  p.TuskRatio(),
		X:          p.Pos.X,
		Y:          p.Pos.Y,
		Speed:      p.Speed,
		VelAngle:   p.Vel.Angle(),
		Rot:        p.Facing,
		Invincible: math.Min(1, p.Invincible/InvincibilityWindow),
		BreakIndex: p.BreakIndex,
		Segments:   make([]SegmentSnapshot, len(p.Chain)),
	}
	for i, seg := range p.Chain {
		snap.Segments[i] = SegmentSnapshot{X: seg.X, Y: seg.Y, VX: seg.VX, VY: seg.VY, Rot: seg.Rot}
	}
	return snap
}
