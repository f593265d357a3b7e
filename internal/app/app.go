package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	server "tusk-arena/server"
	"tusk-arena/server/catalog"
	servernet "tusk-arena/server/internal/net"
	"tusk-arena/server/internal/telemetry"
	"tusk-arena/server/logging"
	loggingSinks "tusk-arena/server/logging/sinks"
)

// Config carries the process-level knobs not covered by environment
// variables.
type Config struct {
	Logger telemetry.Logger
}

// Run boots the whole server: environment, arena catalog, logging router,
// hub, tick loop, and the HTTP listener. It blocks until the listener fails.
func Run(ctx context.Context, cfg Config) error {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("LOG_SINKS"); raw != "" {
		logConfig.EnabledSinks = splitList(raw)
	}
	if raw := os.Getenv("LOG_JSON_PATH"); raw != "" {
		logConfig.JSON.FilePath = raw
	}

	var namedSinks []logging.NamedSink
	if logConfig.HasSink("console") {
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "console",
			Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console),
		})
	}
	if logConfig.HasSink("json") && logConfig.JSON.FilePath != "" {
		file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open json log: %w", err)
		}
		defer file.Close()
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSONSink(file, logConfig.JSON),
		})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	arenasPath := os.Getenv("ARENAS_PATH")
	if arenasPath == "" {
		arenasPath = "config/arenas.json"
	}
	arenas, err := catalog.Load(arenasPath)
	if err != nil {
		return fmt.Errorf("failed to load arena catalog: %w", err)
	}

	metrics := logging.NewMetrics()

	hubCfg := server.DefaultHubConfig()
	hubCfg.Arenas = catalog.RoomConfigs(arenas)
	hubCfg.Logger = telemetryLogger
	hubCfg.Metrics = telemetry.WrapMetrics(metrics)
	hubCfg.Publisher = router
	if raw := os.Getenv("INPUT_RATE_LIMIT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			hubCfg.InputRateLimit = value
		} else {
			telemetryLogger.Printf("invalid INPUT_RATE_LIMIT=%q: %v", raw, err)
		}
	}

	hub := server.NewHub(hubCfg)
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		ClientDir: os.Getenv("CLIENT_DIR"),
		Metrics:   metrics,
		Publisher: router,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
