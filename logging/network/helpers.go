package network

import (
	"context"

	"tusk-arena/server/logging"
)

const (
	// EventFrameRejected is emitted when an inbound frame is dropped before
	// reaching the simulation (rate limit or malformed payload).
	EventFrameRejected logging.EventType = "network.frame_rejected"
)

const (
	ReasonRateLimited = "rate_limited"
	ReasonMalformed   = "malformed"
)

// FrameRejectedPayload captures why an inbound frame was dropped.
type FrameRejectedPayload struct {
	Reason string `json:"reason"`
	Opcode uint8  `json:"opcode"`
}

// FrameRejected publishes a debug event for a dropped frame. Drops are silent
// on the wire by contract, so the log is the only trace.
func FrameRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FrameRejectedPayload) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFrameRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	}
	pub.Publish(ctx, event)
}
