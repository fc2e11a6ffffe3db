// footik-bridge: foot IK as a service for remote animation hosts.
// Hosts connect over websocket, stream animated frames and get solved foot
// goals back.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-footik/internal/config"
	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/bridge"
	"github.com/teslashibe/go-footik/pkg/footik"
)

var (
	version  = "1.0.0"
	port     = flag.Int("port", config.DefaultBridgePort, "HTTP server port")
	debug    = flag.Bool("debug", false, "Enable debug logging and request logs")
	logLevel = flag.String("log-level", config.LogLevel(), "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	*port = config.BridgePort(*port)
	if *debug {
		*logLevel = "debug"
	}
	log.Init(*logLevel)

	app := fiber.New(fiber.Config{
		AppName:               "footik-bridge",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if *debug {
		app.Use(logger.New())
	}

	hub := bridge.NewHub()
	hub.RegisterRoutes(app)
	hub.RegisterAPIRoutes(app.Group("/api"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version,
			"rigs":    hub.SessionCount(),
		})
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		stats := hub.GetStats()
		return c.SendString(fmt.Sprintf(`# HELP footik_bridge_rigs Connected rig count
# TYPE footik_bridge_rigs gauge
footik_bridge_rigs %d

# HELP footik_bridge_messages_received Total messages received
# TYPE footik_bridge_messages_received counter
footik_bridge_messages_received %d

# HELP footik_bridge_messages_sent Total messages sent
# TYPE footik_bridge_messages_sent counter
footik_bridge_messages_sent %d

# HELP footik_bridge_frames_solved Total frames solved
# TYPE footik_bridge_frames_solved counter
footik_bridge_frames_solved %d

# HELP footik_bridge_errors Total rejected messages
# TYPE footik_bridge_errors counter
footik_bridge_errors %d
`, stats.SessionCount, stats.MessagesReceived, stats.MessagesSent, stats.FramesSolved, stats.Errors))
	})

	hub.OnPose(func(id string, snap footik.Snapshot) {
		for _, f := range snap.Feet {
			if !f.Grounded {
				log.Debug("foot airborne", "session", id, "frame", snap.Frame, "side", f.Side)
			}
		}
	})

	go func() {
		addr := fmt.Sprintf(":%d", *port)
		log.Info("footik-bridge starting",
			"version", version,
			"websocket", fmt.Sprintf("ws://localhost:%d/ws/rig", *port),
			"rigs", fmt.Sprintf("http://localhost:%d/api/rigs", *port),
		)

		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
