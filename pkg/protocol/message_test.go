package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    interface{}
		wantErr bool
	}{
		{
			name:    "frame message",
			msgType: TypeFrame,
			data:    FrameData{Frame: 1, DeltaTime: 1.0 / 60},
			wantErr: false,
		},
		{
			name:    "error message",
			msgType: TypeError,
			data:    ErrorData{Code: "bad_message", Message: "nope"},
			wantErr: false,
		},
		{
			name:    "nil data",
			msgType: TypePing,
			data:    nil,
			wantErr: false,
		},
		{
			name:    "unencodable data",
			msgType: TypeFrame,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestQuatConversion(t *testing.T) {
	q := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})
	wire := FromQuat(q)
	if wire[3] != q.W || wire[1] != q.V[1] {
		t.Errorf("wire = %v, want xyzw order of %v", wire, q)
	}
	if back := wire.ToQuat(); back != q {
		t.Errorf("ToQuat() = %v, want %v", back, q)
	}

	if got := (Quat{}).ToQuat(); got != mgl64.QuatIdent() {
		t.Errorf("zero quat = %v, want identity", got)
	}
}

func TestHelloRoundTrip(t *testing.T) {
	cfg := footik.SmoothConfig()
	scene := terrain.Walkway(20)
	root := Transform{Position: Vec3{1, 0, 2}}

	msg, err := NewHelloMessage("", &cfg, scene, root, nil)
	if err != nil {
		t.Fatalf("NewHelloMessage() error = %v", err)
	}
	bytes, _ := msg.Bytes()

	parsed, err := ParseMessage(bytes)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeHello {
		t.Fatalf("Type = %v, want hello", parsed.Type)
	}
	hello, err := parsed.GetHelloData()
	if err != nil {
		t.Fatalf("GetHelloData() error = %v", err)
	}
	if hello.Scene == nil || len(hello.Scene.Planes) != len(scene.Planes) {
		t.Errorf("scene did not survive: %+v", hello.Scene)
	}
	if hello.Root.Position != root.Position {
		t.Errorf("root = %v, want %v", hello.Root.Position, root.Position)
	}

	got, err := hello.ResolveConfig()
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if got != cfg {
		t.Errorf("config = %+v, want %+v", got, cfg)
	}
}

func TestHelloResolveConfig(t *testing.T) {
	bad := footik.DefaultConfig()
	bad.SmoothTime = -1
	badRaw, _ := json.Marshal(bad)

	partial := footik.DefaultConfig()
	partial.SmoothTime = 0.1
	partial.ProbeRadius = 0.05
	partial.ProbeRange = 2

	halfWeight := footik.ResponsiveConfig()
	halfWeight.GlobalWeight = 0.5

	tests := []struct {
		name    string
		hello   HelloData
		want    footik.Config
		wantErr bool
	}{
		{name: "default", hello: HelloData{}, want: footik.DefaultConfig()},
		{name: "preset", hello: HelloData{Preset: "responsive"}, want: footik.ResponsiveConfig()},
		{name: "null config", hello: HelloData{Config: json.RawMessage(`null`)}, want: footik.DefaultConfig()},
		{
			name:  "partial overrides keep defaults",
			hello: HelloData{Config: json.RawMessage(`{"smooth_time":0.1,"probe_radius":0.05,"probe_range":2}`)},
			want:  partial,
		},
		{
			name:  "overrides apply over preset",
			hello: HelloData{Preset: "responsive", Config: json.RawMessage(`{"global_weight":0.5}`)},
			want:  halfWeight,
		},
		{name: "unknown preset", hello: HelloData{Preset: "wobbly"}, wantErr: true},
		{name: "invalid config", hello: HelloData{Preset: "smooth", Config: badRaw}, wantErr: true},
		{name: "unknown field", hello: HelloData{Config: json.RawMessage(`{"smoth_time":0.1}`)}, wantErr: true},
		{name: "malformed", hello: HelloData{Config: json.RawMessage(`{"smooth_time":"fast"}`)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.hello.ResolveConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, footik.ErrInvalidConfig) {
					t.Errorf("error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("config = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFrameMessage(t *testing.T) {
	frame := FrameData{
		Frame:     42,
		DeltaTime: 0.02,
		Root:      Transform{Position: Vec3{0, 0, 1}},
		Body:      Vec3{0, 1, 1},
		Feet: [2]Transform{
			{Position: Vec3{-0.1, 0.1, 1}},
			{Position: Vec3{0.1, 0.1, 1}},
		},
	}

	msg, err := NewFrameMessage(frame)
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}
	got, err := msg.GetFrameData()
	if err != nil {
		t.Fatalf("GetFrameData() error = %v", err)
	}
	if got.Frame != 42 || got.Feet[1].Position != frame.Feet[1].Position {
		t.Errorf("frame = %+v", got)
	}
	if got.Goals[0].Rotation.ToQuat() != mgl64.QuatIdent() {
		t.Error("omitted goal rotation should read as identity")
	}

	bad := &Message{Type: TypeFrame, Data: json.RawMessage(`{"frame":3,"dt":-1}`)}
	if _, err := bad.GetFrameData(); err == nil {
		t.Error("negative dt should be rejected")
	}
}

func TestPoseMessage(t *testing.T) {
	pose := PoseData{
		Frame:      7,
		Body:       Vec3{0, 0.95, 0},
		BodyOffset: -0.05,
		Goals: [2]GoalPose{
			{Side: "left", PositionWeight: 1, RotationWeight: 1, Grounded: true, Mode: "tracking"},
			{Side: "right", PositionWeight: 0.5, RotationWeight: 0.5, Mode: "holding"},
		},
	}

	msg, err := NewPoseMessage(pose)
	if err != nil {
		t.Fatalf("NewPoseMessage() error = %v", err)
	}
	got, err := msg.GetPoseData()
	if err != nil {
		t.Fatalf("GetPoseData() error = %v", err)
	}
	if *got != pose {
		t.Errorf("pose = %+v, want %+v", *got, pose)
	}
}

func TestWelcomeAndErrorMessages(t *testing.T) {
	msg, err := NewWelcomeMessage("abc", footik.DefaultConfig(), 3)
	if err != nil {
		t.Fatalf("NewWelcomeMessage() error = %v", err)
	}
	welcome, _ := msg.GetWelcomeData()
	if welcome.Session != "abc" || welcome.Planes != 3 {
		t.Errorf("welcome = %+v", welcome)
	}

	msg, err = NewErrorMessage("no_session", errors.New("send hello first"))
	if err != nil {
		t.Fatalf("NewErrorMessage() error = %v", err)
	}
	e, _ := msg.GetErrorData()
	if e.Code != "no_session" || e.Message != "send hello first" {
		t.Errorf("error data = %+v", e)
	}
}

func TestPingPongMessage(t *testing.T) {
	pingMsg, err := NewPingMessage("test-123")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}

	pingData, err := pingMsg.GetPingData()
	if err != nil {
		t.Fatalf("GetPingData() error = %v", err)
	}
	if pingData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pingData.ID)
	}

	now := time.Now().UnixMilli()
	pongMsg, err := NewPongMessage("test-123", pingMsg.Timestamp, now)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	pongData, err := pongMsg.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if pongData.ID != "test-123" {
		t.Errorf("ID = %v, want test-123", pongData.ID)
	}
	if pongData.LatencyMs < 0 {
		t.Errorf("LatencyMs = %v, should be >= 0", pongData.LatencyMs)
	}
}

func TestParseInvalidMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "invalid json", input: "not json", wantErr: true},
		{name: "empty json", input: "{}", wantErr: false},
		{name: "valid message", input: `{"type":"ping","ts":1234567890}`, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageJSON(t *testing.T) {
	msg, _ := NewPoseMessage(PoseData{Frame: 1})
	bytes, _ := msg.Bytes()

	var parsed map[string]interface{}
	if err := json.Unmarshal(bytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal as map: %v", err)
	}
	if parsed["type"] != "pose" {
		t.Errorf("type = %v, want pose", parsed["type"])
	}
	if _, ok := parsed["ts"]; !ok {
		t.Error("ts field should be present")
	}
	if _, ok := parsed["data"]; !ok {
		t.Error("data field should be present")
	}
}

func BenchmarkParseFrame(b *testing.B) {
	msg, _ := NewFrameMessage(FrameData{Frame: 1, DeltaTime: 1.0 / 60})
	bytes, _ := msg.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, _ := ParseMessage(bytes)
		m.GetFrameData()
	}
}
