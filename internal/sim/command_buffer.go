package sim

import (
	"sync"

	"tusk-arena/server/internal/telemetry"
)

// CommandBuffer is a fixed-capacity ring staging decoded intents between
// network callbacks and the tick that consumes them. Push never blocks: when
// the ring is full the command is refused and counted, and the caller drops
// it silently per the input-handling contract.
type CommandBuffer struct {
	mu       sync.Mutex
	commands []Command
	head     int
	length   int
	metrics  telemetry.Metrics
}

// NewCommandBuffer allocates a ring with the given capacity (minimum 1).
func NewCommandBuffer(capacity int, metrics telemetry.Metrics) *CommandBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &CommandBuffer{
		commands: make([]Command, capacity),
		metrics:  metrics,
	}
}

// Push stages a command, reporting false when the ring is saturated.
func (b *CommandBuffer) Push(cmd Command) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.length == len(b.commands) {
		if b.metrics != nil {
			b.metrics.Add("sim.command_buffer.dropped", 1)
		}
		return false
	}
	tail := (b.head + b.length) % len(b.commands)
	b.commands[tail] = cmd
	b.length++
	if b.metrics != nil {
		b.metrics.Add("sim.command_buffer.pushed", 1)
	}
	return true
}

// Drain removes every staged command in arrival order.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.length == 0 {
		return nil
	}
	drained := make([]Command, 0, b.length)
	for i := 0; i < b.length; i++ {
		idx := (b.head + i) % len(b.commands)
		drained = append(drained, b.commands[idx])
		b.commands[idx] = Command{}
	}
	b.head = 0
	b.length = 0
	return drained
}

// Len reports the number of staged commands.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}
