// Command vadcli exposes the VAD core two ways: a "run" subcommand that
// processes a single WAV file and prints the resulting events, and a
// "serve" subcommand that binds a TCP port immediately and exposes gRPC
// health-check readiness while the model loads — for containerized
// deployments that want a liveness probe without a full RPC surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nupi-ai/vad-core/internal/config"
	"github.com/nupi-ai/vad-core/internal/engine"
	"github.com/nupi-ai/vad-core/internal/streamvad"
	"github.com/nupi-ai/vad-core/internal/wavutil"
)

// version can be overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "vadcli: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vadcli run <file.wav>")
	fmt.Fprintln(os.Stderr, "       vadcli serve")
}

func newLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

func parseLevel(value string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig resolves the VAD configuration, starting from the defaults of
// the model variant named by VADCORE_MODEL_VARIANT (DefaultModelVariant
// when unset).
func loadConfig() (config.Config, error) {
	variant := os.Getenv("VADCORE_MODEL_VARIANT")
	if variant == "" {
		variant = config.DefaultModelVariant
	}
	return config.Loader{}.Load(variant)
}

func newModel(cfg config.Config, logger *slog.Logger) (engine.Model, error) {
	switch cfg.ModelVariant {
	case "stub":
		logger.Warn("using stub model — results are deterministic and NOT based on audio content")
		return engine.NewStubModel(), nil
	case "legacy":
		if !engine.NativeAvailable() {
			return nil, fmt.Errorf("model variant %q requires building with -tags silero", cfg.ModelVariant)
		}
		return engine.NewNativeModel(engine.SileroLegacy, cfg.FrameSamples)
	case "v5":
		if !engine.NativeAvailable() {
			return nil, fmt.Errorf("model variant %q requires building with -tags silero", cfg.ModelVariant)
		}
		return engine.NewNativeModel(engine.SileroV5, cfg.FrameSamples)
	default:
		return nil, fmt.Errorf("unknown model variant %q", cfg.ModelVariant)
	}
}

func runCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vadcli: config: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open WAV file", "path", path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	samples, sampleRate, err := wavutil.DecodeWAV(f)
	if err != nil {
		logger.Error("failed to decode WAV file", "path", path, "error", err)
		os.Exit(1)
	}
	cfg.SampleRate = sampleRate

	model, err := newModel(cfg, logger)
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}
	defer model.Close()

	sv, err := streamvad.New(model, cfg.StreamVADConfig(), time.Now(), logger)
	if err != nil {
		logger.Error("failed to create stream VAD", "error", err)
		os.Exit(1)
	}
	defer sv.Destroy()

	if err := sv.Start(); err != nil {
		logger.Error("failed to start stream VAD", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	const chunkSize = 1600 // 100ms at 16kHz; arbitrary, exercises the resampler/buffer boundary logic
	var segmentCount int
	for i := 0; i < len(samples); i += chunkSize {
		end := i + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		events, err := sv.ProcessAudio(ctx, samples[i:end])
		if err != nil {
			logger.Error("inference error, continuing", "error", err)
			continue
		}
		segmentCount += reportEvents(logger, events)
	}

	events, err := sv.Flush(ctx)
	if err != nil {
		logger.Error("flush inference error", "error", err)
	}
	segmentCount += reportEvents(logger, events)

	logger.Info("done", "segments", segmentCount)
}

func reportEvents(logger *slog.Logger, events []streamvad.Event) int {
	segments := 0
	for _, e := range events {
		switch e.Kind.String() {
		case "SpeechStart":
			logger.Info("speech start")
		case "SpeechRealStart":
			logger.Info("speech confirmed")
		case "SpeechEnd":
			segments++
			logger.Info("speech end", "audio_samples", len(e.Audio))
		case "VADMisfire":
			logger.Info("vad misfire (discarded)")
		}
	}
	return segments
}

func serveCmd(_ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	logger.Info("starting vadcli serve", "version", version, "listen_addr", cfg.ListenAddr, "model_variant", cfg.ModelVariant)

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Error("failed to bind listener", "error", err)
		os.Exit(1)
	}
	defer lis.Close()
	logger.Info("listener bound, port ready", "addr", lis.Addr().String())

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthgrpc.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)

	serverErr := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serverErr <- err
		}
	}()
	logger.Info("health server started (NOT_SERVING while model loads)")

	model, err := newModel(cfg, logger)
	if err != nil {
		logger.Error("model probe failed — cannot start", "error", err)
		os.Exit(1)
	}
	model.Close()

	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_SERVING)
	logger.Info("ready to serve", "model_variant", cfg.ModelVariant)

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		logger.Info("shutdown requested, stopping gRPC server")
		healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			logger.Warn("graceful stop timed out, forcing stop")
			grpcServer.Stop()
		}
		close(shutdownDone)
	}()

	select {
	case err := <-serverErr:
		logger.Error("gRPC server terminated with error", "error", err)
		os.Exit(1)
	case <-shutdownDone:
	}

	logger.Info("vadcli stopped")
}
