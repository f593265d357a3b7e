package sim

// BodySegment is one link in a player's trailing body chain. Segment 0 is the
// head; the break-index segment is physics-simulated on its own instead of
// following its predecessor.
type BodySegment struct {
	X          float64
	Y          float64
	VX         float64
	VY         float64
	Rot        float64
	AngularVel float64
	RestRot    float64
}
