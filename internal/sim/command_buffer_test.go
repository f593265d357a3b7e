package sim

import "testing"

func TestCommandBufferDrainPreservesArrivalOrder(t *testing.T) {
	buf := NewCommandBuffer(8, nil)
	for i := uint64(1); i <= 5; i++ {
		if !buf.Push(Command{ConnID: i, Type: CommandTarget}) {
			t.Fatalf("push %d refused with capacity remaining", i)
		}
	}

	drained := buf.Drain()
	if len(drained) != 5 {
		t.Fatalf("drained %d commands, want 5", len(drained))
	}
	for i, cmd := range drained {
		if cmd.ConnID != uint64(i+1) {
			t.Fatalf("position %d holds conn %d, want %d", i, cmd.ConnID, i+1)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer length = %d after drain, want 0", buf.Len())
	}
}

func TestCommandBufferRefusesWhenFull(t *testing.T) {
	buf := NewCommandBuffer(2, nil)
	buf.Push(Command{ConnID: 1})
	buf.Push(Command{ConnID: 2})

	if buf.Push(Command{ConnID: 3}) {
		t.Fatalf("push accepted beyond capacity")
	}
	if buf.Len() != 2 {
		t.Fatalf("buffer length = %d, want 2", buf.Len())
	}
}

func TestCommandBufferReusesSlotsAfterDrain(t *testing.T) {
	buf := NewCommandBuffer(2, nil)
	for round := 0; round < 3; round++ {
		buf.Push(Command{ConnID: 10})
		buf.Push(Command{ConnID: 11})
		drained := buf.Drain()
		if len(drained) != 2 {
			t.Fatalf("round %d: drained %d, want 2", round, len(drained))
		}
	}
}

func TestCommandBufferMinimumCapacity(t *testing.T) {
	buf := NewCommandBuffer(0, nil)
	if !buf.Push(Command{ConnID: 1}) {
		t.Fatalf("zero-capacity buffer should clamp to one slot")
	}
	if buf.Push(Command{ConnID: 2}) {
		t.Fatalf("second push accepted into a one-slot buffer")
	}
}
