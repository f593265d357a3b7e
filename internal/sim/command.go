package sim

import "time"

// CommandType enumerates the client intents the simulation accepts. Frames
// are decoded once at the transport boundary into this closed variant type;
// an unrecognised opcode becomes CommandUnknown and is ignored in exactly one
// place.
type CommandType string

const (
	CommandJoin    CommandType = "Join"
	CommandLeave   CommandType = "Leave"
	CommandStart   CommandType = "Start"
	CommandLobbies CommandType = "Lobbies"
	CommandTarget  CommandType = "Target"
	CommandPing    CommandType = "Ping"
	CommandInput   CommandType = "Input"
	CommandUnknown CommandType = "Unknown"
)

// JoinCommand selects a room before the player entity exists.
type JoinCommand struct {
	RoomID uint32
}

// StartCommand creates the player entity and enters the selected room.
type StartCommand struct {
	Skin  uint8
	Color uint32
	Name  string
}

// TargetCommand carries the requested movement goal.
type TargetCommand struct {
	X float64
	Y float64
}

// PingCommand echoes a client timestamp for round-trip measurement.
type PingCommand struct {
	Timestamp float32
}

// InputCommand carries the raw control flags byte.
type InputCommand struct {
	Flags uint8
}

const inputFlagDash = 0x10

// Dash reports whether the dash trigger bit is set.
func (c InputCommand) Dash() bool {
	return c.Flags&inputFlagDash != 0
}

// Command is one decoded client intent, staged for processing.
type Command struct {
	ConnID   uint64
	Type     CommandType
	IssuedAt time.Time
	Join     *JoinCommand
	Start    *StartCommand
	Target   *TargetCommand
	Ping     *PingCommand
	Input    *InputCommand
}
