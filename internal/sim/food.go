package sim

import "math/rand"

// Food is a static pickup. It never moves or changes once spawned; the only
// way it leaves the world is consumption.
type Food struct {
	ID    uint32
	X     float64
	Y     float64
	Value int
	Size  uint8
	Color uint32
}

var foodPalette = []uint32{
	0xff5d5d, 0xffa94d, 0xffe84d, 0x7be85a, 0x4dd2ff, 0x7a6bff, 0xff6bd8,
}

// newFood rolls value, colour, and a uniform position inside the room bounds.
func newFood(id uint32, rng *rand.Rand, width, height float64) *Food {
	value := 1
	size := uint8(FoodBaseSize)
	if rng.Float64() < FoodRichChance {
		value = 3
		size = FoodRichSize
	}
	return &Food{
		ID:    id,
		X:     rng.Float64() * width,
		Y:     rng.Float64() * height,
		Value: value,
		Size:  size,
		Color: foodPalette[rng.Intn(len(foodPalette))],
	}
}
