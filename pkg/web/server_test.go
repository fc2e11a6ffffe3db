package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/landing"
	"github.com/teslashibe/go-footik/pkg/rig"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

// fixedConfig is a config source that never changes.
type fixedConfig footik.Config

func (c fixedConfig) Config() footik.Config { return footik.Config(c) }

type envelope struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func frame(n uint64) footik.Snapshot {
	return footik.Snapshot{
		Frame:     n,
		DeltaTime: 1.0 / 60,
		Feet: [2]footik.FootSnapshot{
			{Side: "left", Grounded: true, Mode: "tracking"},
			{Side: "right", Grounded: true, Mode: "holding"},
		},
	}
}

func TestStatus_NoFramesYet(t *testing.T) {
	s := NewServer("0", fixedConfig(footik.DefaultConfig()), 10)
	if code, _ := get(t, s, "/api/status"); code != 204 {
		t.Errorf("status = %d, want 204", code)
	}
}

func TestStatus_LatestFrame(t *testing.T) {
	s := NewServer("0", fixedConfig(footik.DefaultConfig()), 10)
	s.PublishFrame(frame(1))
	s.PublishFrame(frame(2))

	code, body := get(t, s, "/api/status")
	if code != 200 {
		t.Fatalf("status = %d, want 200", code)
	}
	var snap footik.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Frame != 2 || snap.Feet[1].Mode != "holding" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestConfigEndpoint(t *testing.T) {
	cfg := footik.ResponsiveConfig()
	solver, err := footik.New(cfg, rig.NewSimHost(rig.Identity()), terrain.NewScene("flat", terrain.Flat("ground", 0)), rig.FixedClock(1.0/60))
	if err != nil {
		t.Fatalf("footik.New error: %v", err)
	}
	s := NewServer("0", solver, 10)

	readConfig := func() footik.Config {
		t.Helper()
		code, body := get(t, s, "/api/config")
		if code != 200 {
			t.Fatalf("status = %d, want 200", code)
		}
		var got footik.Config
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return got
	}

	if got := readConfig(); got != cfg {
		t.Errorf("config = %+v, want %+v", got, cfg)
	}

	// A landing fades the weight; the endpoint follows the solver
	solver.SetGlobalWeight(0.3)
	if got := readConfig(); got.GlobalWeight != 0.3 {
		t.Errorf("global weight = %v, want 0.3", got.GlobalWeight)
	}
}

func TestFramesEndpoint_Last(t *testing.T) {
	s := NewServer("0", fixedConfig(footik.DefaultConfig()), 10)
	for i := uint64(1); i <= 5; i++ {
		s.PublishFrame(frame(i))
	}

	_, body := get(t, s, "/api/frames?last=2")
	var frames []footik.Snapshot
	if err := json.Unmarshal(body, &frames); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(frames) != 2 || frames[0].Frame != 4 || frames[1].Frame != 5 {
		t.Errorf("frames = %+v", frames)
	}

	_, body = get(t, s, "/api/frames")
	frames = nil
	json.Unmarshal(body, &frames)
	if len(frames) != 5 {
		t.Errorf("len = %d, want 5", len(frames))
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := NewServer("0", fixedConfig(footik.DefaultConfig()), 10)
	s.PublishFrame(frame(1))
	s.PublishFrame(frame(2))

	_, body := get(t, s, "/api/summary")
	var summary struct {
		Frames int `json:"frames"`
		Feet   [2]struct {
			Side         string  `json:"side"`
			HoldingRatio float64 `json:"holding_ratio"`
		} `json:"feet"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Frames != 2 {
		t.Errorf("frames = %d, want 2", summary.Frames)
	}
	if summary.Feet[1].Side != "right" || summary.Feet[1].HoldingRatio != 1 {
		t.Errorf("right foot = %+v", summary.Feet[1])
	}
}

func TestEventsEndpoint_KeepsRecent(t *testing.T) {
	s := NewServer("0", fixedConfig(footik.DefaultConfig()), 10)
	for i := 0; i < maxEvents+5; i++ {
		s.OnLanding(landing.Event{Kind: landing.FallStarted, Timestamp: int64(i)})
	}

	_, body := get(t, s, "/api/events")
	var events []landing.Event
	if err := json.Unmarshal(body, &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != maxEvents {
		t.Fatalf("len = %d, want %d", len(events), maxEvents)
	}
	if events[0].Timestamp != 5 {
		t.Errorf("oldest = %d, want 5", events[0].Timestamp)
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := NewServer("0", fixedConfig(footik.DefaultConfig()), 10)
	if code, _ := get(t, s, "/ws/frames"); code != 426 {
		t.Errorf("status = %d, want 426", code)
	}
}

func readEnvelope(t *testing.T, ws *websocket.Conn) envelope {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestFramesWebSocket(t *testing.T) {
	s := NewServer("18090", fixedConfig(footik.DefaultConfig()), 10)
	s.PublishFrame(frame(1))
	s.StartAsync()
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18090/ws/frames", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	// Latest frame arrives on connect
	env := readEnvelope(t, ws)
	if env.Topic != topicFrame {
		t.Fatalf("topic = %q, want frame", env.Topic)
	}
	var snap footik.Snapshot
	json.Unmarshal(env.Data, &snap)
	if snap.Frame != 1 {
		t.Errorf("initial frame = %d, want 1", snap.Frame)
	}

	time.Sleep(50 * time.Millisecond)
	if frames, _ := s.Clients(); frames != 1 {
		t.Errorf("frame clients = %d, want 1", frames)
	}

	s.PublishFrame(frame(2))
	env = readEnvelope(t, ws)
	json.Unmarshal(env.Data, &snap)
	if snap.Frame != 2 {
		t.Errorf("streamed frame = %d, want 2", snap.Frame)
	}
}

func TestEventsWebSocket(t *testing.T) {
	s := NewServer("18091", fixedConfig(footik.DefaultConfig()), 10)
	s.OnLanding(landing.Event{Kind: landing.FallStarted})
	s.StartAsync()
	defer s.Shutdown()
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18091/ws/events", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	var e landing.Event
	env := readEnvelope(t, ws)
	json.Unmarshal(env.Data, &e)
	if env.Topic != topicLanding || e.Kind != landing.FallStarted {
		t.Errorf("replayed = %s/%v, want landing/fall_started", env.Topic, e.Kind)
	}

	time.Sleep(50 * time.Millisecond)
	s.OnLanding(landing.Event{Kind: landing.LandingStarted, Clip: "Landing"})
	env = readEnvelope(t, ws)
	json.Unmarshal(env.Data, &e)
	if e.Kind != landing.LandingStarted || e.Clip != "Landing" {
		t.Errorf("streamed = %+v", e)
	}
}
