package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/particles/config"
	"github.com/pthm-cable/particles/game"
	"github.com/pthm-cable/particles/metrics"
)

func init() {
	// raylib and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run the CPU kernel without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = off)")
	dt := flag.Float64("dt", 0, "Headless frame delta-time in seconds (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Headless:  *headless,
		FixedDT:   float32(*dt),
		Logger:    logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	grp, ctx := errgroup.WithContext(ctx)

	if *metricsAddr != "" {
		srv := metrics.NewServer(*metricsAddr)
		grp.Go(func() error {
			slog.Info("serving metrics", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		grp.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var runErr error
	if *headless {
		runErr = runHeadless(ctx, opts, *maxFrames)
	} else {
		runErr = runGraphical(ctx, cfg, opts, *maxFrames)
	}
	stop()

	if err := grp.Wait(); err != nil {
		slog.Error("metrics server failed", "error", err)
	}
	if runErr != nil {
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}
}

// runHeadless steps the CPU kernel at the fixed delta-time until maxFrames
// or a signal.
func runHeadless(ctx context.Context, opts game.Options, maxFrames int) error {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_frames", maxFrames,
	)

	for ctx.Err() == nil {
		if err := g.UpdateHeadless(); err != nil {
			return err
		}
		if maxFrames > 0 && g.Frame() >= maxFrames {
			slog.Info("max frames reached", "frame", g.Frame(), "sim_time", g.SimTime())
			return nil
		}
	}
	slog.Info("interrupted", "frame", g.Frame())
	return nil
}

// runGraphical opens the window and runs the GPU kernel until the window
// closes, maxFrames or a signal.
func runGraphical(ctx context.Context, cfg *config.Config, opts game.Options, maxFrames int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		g.Update()
		if err := g.Draw(); err != nil {
			return err
		}

		if maxFrames > 0 && g.Frame() >= maxFrames {
			break
		}
	}
	return nil
}
