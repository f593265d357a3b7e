package logging_test

import (
	"context"
	"testing"

	"tusk-arena/server/logging"
	"tusk-arena/server/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(logging.SystemClock{}, cfg, []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("failed to construct router: %v", err)
	}
	return router, memory
}

func TestRouterDeliversToSink(t *testing.T) {
	cfg := logging.DefaultConfig()
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{
		Type:     "combat.player_killed",
		Tick:     42,
		Severity: logging.SeverityInfo,
		Actor:    logging.EntityRef{ID: "player-1", Kind: logging.EntityKindPlayer},
	})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	if events[0].Type != "combat.player_killed" || events[0].Tick != 42 {
		t.Fatalf("delivered event = %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("event time not stamped")
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "network.frame_rejected", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: "system.overload", Severity: logging.SeverityError})
	router.Close(context.Background())

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	if events[0].Type != "system.overload" {
		t.Fatalf("wrong event survived the filter: %v", events[0].Type)
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityInfo})
	router.Close(context.Background())

	if got := memory.Events(); len(got) != 0 {
		t.Fatalf("untyped event delivered: %+v", got)
	}
}

func TestRouterMergesConfiguredFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"region": "eu-1"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "lifecycle.player_joined", Severity: logging.SeverityInfo})
	router.Close(context.Background())

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	if events[0].Extra["region"] != "eu-1" {
		t.Fatalf("configured field missing: %+v", events[0].Extra)
	}
}

func TestRouterPublishAfterCloseIsSafe(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())
	router.Close(context.Background())

	router.Publish(context.Background(), logging.Event{Type: "late.event", Severity: logging.SeverityInfo})
	router.Close(context.Background())

	if got := memory.Events(); len(got) != 0 {
		t.Fatalf("event delivered after close: %+v", got)
	}
}

func TestRouterCountsDrops(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.BufferSize = 1
	memory := sinks.NewMemorySink()
	router, err := logging.NewRouter(logging.SystemClock{}, cfg, []logging.NamedSink{
		{Name: "memory", Sink: memory},
	})
	if err != nil {
		t.Fatalf("failed to construct router: %v", err)
	}

	for i := 0; i < 64; i++ {
		router.Publish(context.Background(), logging.Event{Type: "burst", Severity: logging.SeverityInfo})
	}
	router.Close(context.Background())

	stats := router.Stats()
	if stats.EventsTotal+stats.DroppedTotal != 64 {
		t.Fatalf("accounted %d events, want 64", stats.EventsTotal+stats.DroppedTotal)
	}
}
