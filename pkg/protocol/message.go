// Package protocol defines the websocket messages exchanged between a remote
// animation host and the foot IK bridge.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-footik/pkg/footik"
	"github.com/teslashibe/go-footik/pkg/rig"
	"github.com/teslashibe/go-footik/pkg/terrain"
)

// MessageType identifies the type of websocket message
type MessageType string

const (
	// Host → bridge
	TypeHello MessageType = "hello" // Session setup: config and scene
	TypeFrame MessageType = "frame" // Animated pose for one frame

	// Bridge → host
	TypeWelcome MessageType = "welcome" // Session accepted
	TypePose    MessageType = "pose"    // Solved IK goals and body position
	TypeError   MessageType = "error"   // Request rejected

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// Message is the base wrapper for all websocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Geometry
// =============================================================================

// Vec3 is a position or direction as [x, y, z].
type Vec3 [3]float64

// Quat is a rotation as [x, y, z, w].
type Quat [4]float64

// ToVec3 converts to the solver's vector type.
func (v Vec3) ToVec3() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// FromVec3 converts from the solver's vector type.
func FromVec3(v mgl64.Vec3) Vec3 {
	return Vec3(v)
}

// ToQuat converts to the solver's quaternion type. The zero value maps to the
// identity so omitted rotations are harmless.
func (q Quat) ToQuat() mgl64.Quat {
	if q == (Quat{}) {
		return mgl64.QuatIdent()
	}
	return mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}
}

// FromQuat converts from the solver's quaternion type.
func FromQuat(q mgl64.Quat) Quat {
	return Quat{q.V[0], q.V[1], q.V[2], q.W}
}

// Transform is a world-space position and rotation.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Quat `json:"rotation"`
}

// ToRig converts to a rig transform.
func (t Transform) ToRig() rig.Transform {
	return rig.Transform{Position: t.Position.ToVec3(), Rotation: t.Rotation.ToQuat()}
}

// FromRig converts from a rig transform.
func FromRig(t rig.Transform) Transform {
	return Transform{Position: FromVec3(t.Position), Rotation: FromQuat(t.Rotation)}
}

// =============================================================================
// Host → Bridge Message Types
// =============================================================================

// HelloData opens a session. Config holds overrides decoded over Preset (the
// default preset when empty), so it only needs the fields it changes. Scene
// is the ground the feet probe. BindPose is the foot bones at bind pose, left
// then right; without it the first frame's feet are taken as the bind pose.
type HelloData struct {
	Preset   string          `json:"preset,omitempty"` // "default", "responsive", "smooth"
	Config   json.RawMessage `json:"config,omitempty"`
	Scene    *terrain.Scene  `json:"scene,omitempty"`
	Root     Transform       `json:"root"`
	BindPose *[2]Transform   `json:"bind_pose,omitempty"`
}

// FrameData is the animated pose for one frame, before foot IK.
type FrameData struct {
	Frame     uint64       `json:"frame"`
	DeltaTime float64      `json:"dt"`
	Root      Transform    `json:"root"`
	Body      Vec3         `json:"body"`  // Animated body (hips) position
	Feet      [2]Transform `json:"feet"`  // Foot bones, [left, right]
	Goals     [2]Transform `json:"goals"` // Animated foot IK goals, [left, right]
}

// =============================================================================
// Bridge → Host Message Types
// =============================================================================

// WelcomeData acknowledges a hello.
type WelcomeData struct {
	Session string        `json:"session"`
	Config  footik.Config `json:"config"`
	Planes  int           `json:"planes"`
}

// GoalPose is one solved foot goal with its weights.
type GoalPose struct {
	Side           string    `json:"side"`
	Transform      Transform `json:"transform"`
	PositionWeight float64   `json:"position_weight"`
	RotationWeight float64   `json:"rotation_weight"`
	Grounded       bool      `json:"grounded"`
	Mode           string    `json:"mode"` // "tracking" or "holding"
}

// PoseData is the solved pose the host applies before its IK pass.
type PoseData struct {
	Frame      uint64      `json:"frame"`
	Body       Vec3        `json:"body"`
	BodyOffset float64     `json:"body_offset"`
	Goals      [2]GoalPose `json:"goals"`
}

// Error codes carried by ErrorData.
const (
	CodeBadMessage = "bad_message"
	CodeNoSession  = "no_session"
	CodeBadConfig  = "bad_config"
)

// ErrorData reports a rejected message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
