package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewHelloMessage creates a session hello. cfg, scene and bind may be nil.
// A non-nil cfg is sent whole, so it overrides every preset field.
func NewHelloMessage(preset string, cfg *footik.Config, scene *terrain.Scene, root Transform, bind *[2]Transform) (*Message, error) {
	hello := HelloData{
		Preset:   preset,
		Scene:    scene,
		Root:     root,
		BindPose: bind,
	}
	if cfg != nil {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		hello.Config = raw
	}
	return NewMessage(TypeHello, hello)
}

// NewFrameMessage creates a frame message
func NewFrameMessage(frame FrameData) (*Message, error) {
	return NewMessage(TypeFrame, frame)
}

// NewWelcomeMessage creates a welcome message
func NewWelcomeMessage(session string, cfg footik.Config, planes int) (*Message, error) {
	return NewMessage(TypeWelcome, WelcomeData{
		Session: session,
		Config:  cfg,
		Planes:  planes,
	})
}

// NewPoseMessage creates a pose message
func NewPoseMessage(pose PoseData) (*Message, error) {
	return NewMessage(TypePose, pose)
}

// NewErrorMessage creates an error message
func NewErrorMessage(code string, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{
		Code:    code,
		Message: err.Error(),
	})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID: id,
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetHelloData extracts hello data from a message
func (m *Message) GetHelloData() (*HelloData, error) {
	var data HelloData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ResolveConfig decodes the config overrides over the named preset. Unknown
// fields are rejected and the result is validated.
func (h *HelloData) ResolveConfig() (footik.Config, error) {
	cfg, err := footik.Preset(h.Preset)
	if err != nil {
		return footik.Config{}, err
	}
	if len(h.Config) == 0 || string(h.Config) == "null" {
		return cfg, nil
	}

	dec := json.NewDecoder(bytes.NewReader(h.Config))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return footik.Config{}, fmt.Errorf("%w: config overrides: %v", footik.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return footik.Config{}, err
	}
	return cfg, nil
}

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	if data.DeltaTime < 0 {
		return nil, fmt.Errorf("frame %d: negative dt %v", data.Frame, data.DeltaTime)
	}
	return &data, nil
}

// GetWelcomeData extracts welcome data from a message
func (m *Message) GetWelcomeData() (*WelcomeData, error) {
	var data WelcomeData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPoseData extracts pose data from a message
func (m *Message) GetPoseData() (*PoseData, error) {
	var data PoseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
