// footik-sim: walks a simulated character over a terrain course with foot IK
// and serves a live dashboard of the solver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-footik/internal/config"
	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/landing"
	"github.com/teslashibe/go-footik/pkg/sim"
	"github.com/teslashibe/go-footik/pkg/telemetry"
	"github.com/teslashibe/go-footik/pkg/terrain"
	"github.com/teslashibe/go-footik/pkg/web"
)

var (
	rigConfig = flag.String("config", config.RigConfigPath(""), "Rig config YAML (overrides -preset)")
	preset    = flag.String("preset", "default", "IK preset: default, responsive, smooth")
	scenePath = flag.String("scene", config.ScenePath(""), "Terrain scene YAML (default: walkway course)")
	ramp      = flag.Float64("ramp", 25, "Walkway ramp angle in degrees")
	speed     = flag.Float64("speed", 1.2, "Walking speed in m/s")
	running   = flag.Bool("running", false, "Use the running landing clip")
	distance  = flag.Float64("distance", 12, "Stop after walking this far (0 = until interrupted)")
	realtime  = flag.Bool("realtime", true, "Step at the tick rate instead of as fast as possible")
	dashboard = flag.Bool("dashboard", true, "Serve the web dashboard")
	port      = flag.String("port", config.DashboardPort(), "Dashboard port")
	logLevel  = flag.String("log-level", config.LogLevel(), "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	if err := run(); err != nil {
		log.Error("footik-sim failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ik, err := loadRigConfig()
	if err != nil {
		return err
	}
	scene, err := loadScene()
	if err != nil {
		return err
	}

	cfg := sim.DefaultConfig()
	cfg.Speed = *speed
	cfg.Running = *running

	character, err := sim.New(cfg, ik, landing.DefaultConfig(), scene)
	if err != nil {
		return err
	}

	recorder := telemetry.NewRecorder(telemetry.DefaultCapacity)
	publish := recorder.Record

	if *dashboard {
		srv := web.NewServer(*port, character.Solver(), telemetry.DefaultCapacity)
		recorder = srv.Recorder()
		publish = srv.PublishFrame
		character.Subscribe(srv)
		srv.StartAsync()
		defer srv.Shutdown()
	}

	character.Subscribe(landing.ObserverFunc(func(e landing.Event) {
		log.Info("landing event", "kind", e.Kind.String(), "height", e.Height, "clip", e.Clip)
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	onFrame := func(s footik.Snapshot) {
		publish(s)
		if *distance > 0 && character.Position().X() >= *distance {
			cancel()
		}
	}

	start := time.Now()
	if *realtime {
		character.Run(ctx, onFrame)
	} else {
		for ctx.Err() == nil {
			onFrame(character.Step())
		}
	}

	printSummary(scene.Name, recorder.Summary(), time.Since(start))
	return nil
}

func loadRigConfig() (footik.Config, error) {
	if *rigConfig != "" {
		return footik.LoadConfig(*rigConfig)
	}
	return footik.Preset(*preset)
}

func loadScene() (*terrain.Scene, error) {
	if *scenePath != "" {
		return terrain.LoadScene(*scenePath)
	}
	return terrain.Walkway(*ramp), nil
}

func printSummary(scene string, s telemetry.Summary, wall time.Duration) {
	fmt.Println()
	fmt.Printf("Scene %s: %d frames, %.2fs simulated in %s\n", scene, s.Frames, s.Duration, wall.Round(time.Millisecond))
	fmt.Printf("Mean body offset: %+.4f m\n", s.MeanBodyOffset)
	fmt.Println()
	fmt.Printf("%-6s %10s %10s %10s %9s %9s\n", "foot", "mean err", "stddev", "max err", "holding", "grounded")
	for _, f := range s.Feet {
		fmt.Printf("%-6s %10.4f %10.4f %10.4f %8.1f%% %8.1f%%\n",
			f.Side, f.MeanError, f.StdDevError, f.MaxError, f.HoldingRatio*100, f.GroundedRatio*100)
	}
}
