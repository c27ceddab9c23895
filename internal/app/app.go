package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	server "cardshark/server"
	servernet "cardshark/server/internal/net"
	"cardshark/server/internal/observability"
	"cardshark/server/internal/telemetry"
	"cardshark/server/internal/worlddoc"
	"cardshark/server/logging"
	loggingsinks "cardshark/server/logging/sinks"
)

type Config struct {
	ListenAddr    string
	Logger        telemetry.Logger
	Observability observability.Config
}

// Run wires the process together: logging router, hub, HTTP surface. It
// blocks until ctx is cancelled or the listener fails. Environment variables
// override the supplied config; invalid values are logged and ignored.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	fallbackLogger := log.Default()
	if provider, ok := telemetryLogger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	listenAddr := cfg.ListenAddr
	if raw := os.Getenv("LISTEN_ADDR"); raw != "" {
		listenAddr = raw
	}
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	logConfig := logging.DefaultConfig()
	namedSinks := []logging.NamedSink{
		{Name: "console", Sink: loggingsinks.NewConsole(os.Stdout, logConfig.Console)},
	}
	var jsonLog *os.File
	if path := os.Getenv("LOG_JSON_PATH"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			telemetryLogger.Printf("invalid LOG_JSON_PATH=%q: %v", path, err)
		} else {
			jsonLog = file
			logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
			logConfig.JSON.FilePath = path
			namedSinks = append(namedSinks, logging.NamedSink{
				Name: "json",
				Sink: loggingsinks.NewJSON(file, logConfig.JSON.FlushInterval),
			})
		}
	}
	if jsonLog != nil {
		defer jsonLog.Close()
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hubCfg := server.DefaultHubConfig()
	hubCfg.Logger = telemetryLogger
	metrics := &logging.Metrics{}
	hubCfg.Metrics = telemetry.WrapMetrics(metrics)

	if raw := os.Getenv("DEFAULT_THREAT_RANGE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			hubCfg.DefaultThreatRange = value
		} else {
			telemetryLogger.Printf("invalid DEFAULT_THREAT_RANGE=%q: %v", raw, err)
		}
	}

	if path := os.Getenv("WORLD_DOC"); path != "" {
		doc, err := worlddoc.LoadFile(path)
		if err != nil {
			telemetryLogger.Printf("ignoring WORLD_DOC: %v", err)
		} else {
			hubCfg.DefaultWorld = &doc
			telemetryLogger.Printf("loaded default world %q with %d rooms", doc.Name, len(doc.Rooms))
		}
	}

	observabilityCfg := cfg.Observability
	if raw := os.Getenv("ENABLE_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			observabilityCfg.EnablePprofTrace = value
		} else {
			telemetryLogger.Printf("invalid ENABLE_PPROF_TRACE=%q: %v", raw, err)
		}
	}

	hub := server.NewHubWithConfig(hubCfg, router)
	stop := make(chan struct{})
	go hub.RunHeartbeatSweeper(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:        fallbackLogger,
		Observability: observabilityCfg,
	})

	srv := &http.Server{Addr: listenAddr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			telemetryLogger.Printf("server shutdown: %v", serr)
		}
	}()

	telemetryLogger.Printf("local-map service listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
