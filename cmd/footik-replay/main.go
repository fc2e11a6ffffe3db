// footik-replay: plays a simulated walk into a footik-bridge and checks the
// remote solve against a local one.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-footik/internal/config"
	"github.com/teslashibe/go-footik/internal/httpc"
	"github.com/teslashibe/go-footik/internal/log"
	"github.com/teslashibe/go-footik/pkg/bridge"
	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/landing"
	"github.com/teslashibe/go-footik/pkg/protocol"
	"github.com/teslashibe/go-footik/pkg/rig"
	"github.com/teslashibe/go-footik/pkg/sim"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

var (
	addr     = flag.String("addr", fmt.Sprintf("localhost:%d", config.DefaultBridgePort), "Bridge host:port")
	rigID    = flag.String("id", "", "Session id (default: assigned by the bridge)")
	preset   = flag.String("preset", "default", "IK preset: default, responsive, smooth")
	ramp     = flag.Float64("ramp", 25, "Walkway ramp angle in degrees")
	distance = flag.Float64("distance", 12, "Walk distance in meters")
	realtime = flag.Bool("realtime", false, "Pace frames at the tick rate")
	logLevel = flag.String("log-level", config.LogLevel(), "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	if err := run(); err != nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ik, err := footik.Preset(*preset)
	if err != nil {
		return err
	}
	scene := terrain.Walkway(*ramp)
	cfg := sim.DefaultConfig()

	character, err := sim.New(cfg, ik, landing.DefaultConfig(), scene)
	if err != nil {
		return err
	}

	path := "/ws/rig"
	if *rigID != "" {
		path += "/" + *rigID
	}
	u := url.URL{Scheme: "ws", Host: *addr, Path: path}
	log.Info("connecting", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	// The local solver bound its feet at construction; bind the remote one to
	// the same pose
	bind := frameData(character, cfg, 0).Feet
	hello, err := protocol.NewHelloMessage(*preset, nil, scene, protocol.FromRig(character.Host().Root()), &bind)
	if err != nil {
		return err
	}
	reply, err := roundTrip(conn, hello)
	if err != nil {
		return err
	}
	welcome, err := reply.GetWelcomeData()
	if err != nil {
		return err
	}
	log.Info("session open", "session", welcome.Session, "planes", welcome.Planes)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var (
		frames  int
		maxDiff float64
		latency time.Duration
	)
	pace := time.NewTicker(cfg.TickRate)
	defer pace.Stop()

	for character.Position().X() < *distance {
		select {
		case <-quit:
			log.Info("interrupted")
			return report(frames, maxDiff, latency)
		default:
		}
		if *realtime {
			<-pace.C
		}

		local := character.Step()
		frame, err := protocol.NewFrameMessage(frameData(character, cfg, local.Frame))
		if err != nil {
			return err
		}

		sent := time.Now()
		reply, err := roundTrip(conn, frame)
		if err != nil {
			return err
		}
		latency += time.Since(sent)

		pose, err := reply.GetPoseData()
		if err != nil {
			return err
		}
		for _, side := range rig.Sides {
			d := math.Abs(pose.Goals[side].Transform.Position[1] - local.Feet[side].IKY)
			maxDiff = math.Max(maxDiff, d)
		}
		frames++
	}

	return report(frames, maxDiff, latency)
}

// frameData is the animated pose the local character fed its own solver.
// Bones and goals coincide in the simulated rig.
func frameData(c *sim.Character, cfg sim.Config, n uint64) protocol.FrameData {
	h := c.Host()
	root := h.Root()
	f := protocol.FrameData{
		Frame:     n,
		DeltaTime: cfg.DeltaTime(),
		Root:      protocol.FromRig(root),
		Body:      protocol.Vec3{root.Position.X(), root.Position.Y() + cfg.HipHeight, root.Position.Z()},
	}
	for _, side := range rig.Sides {
		t := protocol.Transform{
			Position: protocol.FromVec3(h.BonePosition(side.Bone())),
			Rotation: protocol.FromQuat(h.BoneRotation(side.Bone())),
		}
		f.Feet[side] = t
		f.Goals[side] = t
	}
	return f
}

// roundTrip sends a message and returns the first reply that is not a pong.
// Error replies become errors.
func roundTrip(conn *websocket.Conn, msg *protocol.Message) (*protocol.Message, error) {
	data, err := msg.Bytes()
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	for {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		reply, err := protocol.ParseMessage(data)
		if err != nil {
			return nil, err
		}
		switch reply.Type {
		case protocol.TypePong:
			continue
		case protocol.TypeError:
			e, err := reply.GetErrorData()
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("bridge error %s: %s", e.Code, e.Message)
		}
		return reply, nil
	}
}

func report(frames int, maxDiff float64, latency time.Duration) error {
	if frames == 0 {
		fmt.Println("No frames replayed")
		return nil
	}
	fmt.Println()
	fmt.Printf("Replayed %d frames\n", frames)
	fmt.Printf("Mean round trip: %s\n", (latency / time.Duration(frames)).Round(time.Microsecond))
	fmt.Printf("Max foot height difference vs local solve: %.2e m\n", maxDiff)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var stats bridge.Stats
	statsURL := url.URL{Scheme: "http", Host: *addr, Path: "/api/rigs/stats"}
	if err := httpc.GetJSON(ctx, statsURL.String(), &stats); err != nil {
		log.Warn("bridge stats unavailable", "error", err)
		return nil
	}
	fmt.Printf("Bridge: %d rigs, %d frames solved, %d errors\n", stats.SessionCount, stats.FramesSolved, stats.Errors)
	return nil
}
