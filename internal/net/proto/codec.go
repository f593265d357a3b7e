// Package proto implements the binary wire format shared with the game
// client. Encoders are stateless pure functions over simulation snapshots;
// the decoder turns raw client frames into the closed sim.Command variant
// exactly once, at the transport boundary.
package proto

import (
	"encoding/binary"
	"math"
	"time"

	"tusk-arena/server/internal/sim"
)

// Client → server opcodes (frame byte 0).
const (
	OpJoin       = 16
	OpLeave      = 17
	OpStart      = 18
	OpGetLobbies = 19
	OpTarget     = 32
	OpPing       = 37
	OpInput      = 38
)

// Server → client opcodes.
const (
	OpStartAck     = 18
	OpLobbies      = 19
	OpRIP          = 34
	OpPingEcho     = 37
	OpSetElements  = 48
	OpLeaderboard  = 50
	elementFish    = 0
	elementFood    = 6
	maxFoodRecords = 100
	maxWireName    = 20
	maxBoardName   = 25
)

// DecodeCommand parses one client frame. A payload shorter than its opcode
// requires is malformed and reported as !ok; the caller drops it silently.
// Unrecognised opcodes decode into CommandUnknown so the dispatch switch has
// a single explicit ignore arm.
func DecodeCommand(connID uint64, frame []byte, now time.Time) (sim.Command, bool) {
	if len(frame) == 0 {
		return sim.Command{}, false
	}
	cmd := sim.Command{ConnID: connID, IssuedAt: now}
	switch frame[0] {
	case OpJoin:
		if len(frame) < 5 {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandJoin
		cmd.Join = &sim.JoinCommand{RoomID: binary.LittleEndian.Uint32(frame[1:5])}
	case OpLeave:
		cmd.Type = sim.CommandLeave
	case OpStart:
		if len(frame) < 9 {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandStart
		cmd.Start = &sim.StartCommand{
			Skin:  frame[1],
			Color: binary.LittleEndian.Uint32(frame[2:6]),
			Name:  readName(frame[9:]),
		}
	case OpGetLobbies:
		cmd.Type = sim.CommandLobbies
	case OpTarget:
		if len(frame) < 9 {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandTarget
		cmd.Target = &sim.TargetCommand{
			X: float64(readFloat32(frame[1:5])),
			Y: float64(readFloat32(frame[5:9])),
		}
	case OpPing:
		if len(frame) < 5 {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandPing
		cmd.Ping = &sim.PingCommand{Timestamp: readFloat32(frame[1:5])}
	case OpInput:
		if len(frame) < 2 {
			return sim.Command{}, false
		}
		cmd.Type = sim.CommandInput
		cmd.Input = &sim.InputCommand{Flags: frame[1]}
	default:
		cmd.Type = sim.CommandUnknown
	}
	return cmd, true
}

// readName consumes bytes up to the first NUL or the end of the payload.
func readName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// QuantizeAngle maps an angle in radians (atan2 range) into one byte via
// floor(((theta/pi + 1) / 2) * 255).
func QuantizeAngle(theta float64) uint8 {
	v := int(math.Floor((theta/math.Pi + 1) / 2 * 255))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func clampByteFrac(frac float64, scale float64) uint8 {
	v := int(math.Floor(frac * scale))
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// fishRecordMax is the worst-case encoded size of one player record:
// fixed fields, a 20-byte name with terminator, and a chain with one free
// segment (4 floats) and the rest as quantized angle bytes.
const fishRecordMax = 1 + 4 + 3 + (maxWireName + 1) + 6 + 4 + 4 + 2 + 2 + 1 + 1 + 1 + (sim.ChainLength - 2) + 16

const foodRecordSize = 1 + 4 + 4 + 4 + 1 + 1 + 3

// EncodeWorldSnapshot builds one SET_ELEMENTS frame: header, a FISH record
// per alive player, then up to 100 FOOD records. The food list is truncated,
// never paginated.
func EncodeWorldSnapshot(snap sim.RoomSnapshot, now time.Time) []byte {
	foods := len(snap.Foods)
	if foods > maxFoodRecords {
		foods = maxFoodRecords
	}
	buf := make([]byte, 0, 4+len(snap.Players)*fishRecordMax+foods*foodRecordSize)

	buf = append(buf, OpSetElements)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(now.UnixMilli()&0xFFFF))
	buf = append(buf, 0) // world flags

	for i := range snap.Players {
		buf = appendFish(buf, &snap.Players[i])
	}
	for i := 0; i < foods; i++ {
		buf = appendFood(buf, &snap.Foods[i])
	}
	return buf
}

func appendFish(buf []byte, p *sim.PlayerSnapshot) []byte {
	buf = append(buf, elementFish)
	buf = binary.LittleEndian.AppendUint32(buf, p.ID)
	buf = append(buf, uint8(p.Color>>16), uint8(p.Color>>8), uint8(p.Color))

	name := p.Name
	if len(name) > maxWireName {
		name = name[:maxWireName]
	}
	buf = append(buf, name...)
	buf = append(buf, 0)

	level := p.Level
	if level > 31 {
		level = 31
	}
	buf = append(buf, uint8(p.Team)&0x07|uint8(level)<<3)
	buf = append(buf, clampByteFrac(p.Alpha, 255))
	buf = append(buf, uint8(p.MaxDash)&0x0F|uint8(p.DashCharge)<<4)
	buf = append(buf, clampByteFrac(p.OverDash, 255))
	buf = append(buf, clampByteFrac(p.TuskRatio, 127))
	buf = append(buf, p.Decoration)

	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(p.X)))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(p.Y)))

	speed := math.Floor(p.Speed)
	if speed > 65535 {
		speed = 65535
	}
	if speed < 0 {
		speed = 0
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(speed))

	buf = append(buf, QuantizeAngle(p.VelAngle))
	buf = append(buf, QuantizeAngle(p.Rot))
	buf = append(buf, p.Skin)
	buf = append(buf, clampByteFrac(p.Invincible, 255))

	buf = append(buf, uint8(len(p.Segments)-1))
	for i := 1; i < len(p.Segments); i++ {
		seg := &p.Segments[i]
		if i == p.BreakIndex {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(seg.X)))
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(seg.Y)))
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(seg.VX)))
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(seg.VY)))
			continue
		}
		buf = append(buf, QuantizeAngle(seg.Rot))
	}
	return buf
}

func appendFood(buf []byte, f *sim.FoodSnapshot) []byte {
	buf = append(buf, elementFood)
	buf = binary.LittleEndian.AppendUint32(buf, f.ID)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f.X)))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(f.Y)))
	buf = append(buf, uint8(f.Value), f.Size)
	buf = append(buf, uint8(f.Color>>16), uint8(f.Color>>8), uint8(f.Color))
	return buf
}

// EncodeStartAck confirms player creation back to the joining connection.
func EncodeStartAck(playerID uint32, color uint32, skin uint8, name string) []byte {
	buf := make([]byte, 0, 13+len(name)+2)
	buf = append(buf, OpStartAck)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(playerID&0xFFFF))
	buf = binary.LittleEndian.AppendUint32(buf, color)
	buf = append(buf, skin, 0, 0, 0)
	buf = append(buf, uint8(len(name)))
	buf = append(buf, name...)
	buf = append(buf, 0, 1)
	return buf
}

// EncodeLobbies wraps the JSON room list: opcode, UTF-8 JSON, NUL terminator.
func EncodeLobbies(descriptors []byte) []byte {
	buf := make([]byte, 0, len(descriptors)+2)
	buf = append(buf, OpLobbies)
	buf = append(buf, descriptors...)
	buf = append(buf, 0)
	return buf
}

// EncodeRIP is the one-byte defeat notification sent immediately on death.
func EncodeRIP() []byte {
	return []byte{OpRIP}
}

// EncodePingEcho returns the client's timestamp untouched.
func EncodePingEcho(timestamp float32) []byte {
	buf := make([]byte, 0, 5)
	buf = append(buf, OpPingEcho)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(timestamp))
	return buf
}

// EncodeLeaderboard lists the top players twice: once with names for the
// board, once as a bare level column.
func EncodeLeaderboard(entries []sim.LeaderboardEntry) []byte {
	buf := make([]byte, 0, 3+len(entries)*(maxBoardName+3))
	buf = append(buf, OpLeaderboard)
	buf = append(buf, uint8(len(entries)))
	for _, entry := range entries {
		buf = append(buf, clampLevel(entry.Level))
		name := entry.Name
		if len(name) > maxBoardName {
			name = name[:maxBoardName]
		}
		buf = append(buf, name...)
		buf = append(buf, 0)
	}
	buf = append(buf, uint8(len(entries)))
	for _, entry := range entries {
		buf = append(buf, clampLevel(entry.Level))
	}
	return buf
}

func clampLevel(level int) uint8 {
	if level < 0 {
		return 0
	}
	if level > 255 {
		return 255
	}
	return uint8(level)
}
