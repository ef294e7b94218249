package simulation

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"google.golang.org/protobuf/types/known/structpb"
)

// Pose is what a boid looks like at the end of a frame.
// It is the only thing handed to the outside world: renderers, keyframe writers.
type Pose struct {
	AgentID  string           `json:"id"`
	Index    int              `json:"index"`
	Frame    int              `json:"frame"`
	Position geometry.Vector3 `json:"position"`
	Velocity geometry.Vector3 `json:"velocity"`
}

// AgentInfo describes a boid once, at creation, so a collaborator can build its geometry.
type AgentInfo struct {
	AgentID  string           `json:"id"`
	Index    int              `json:"index"`
	Size     float64          `json:"size"`
	Position geometry.Vector3 `json:"position"`
	Color    Color            `json:"color"`
}

// Color is a linear RGB shade in [0, 1], drawn once per boid.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// PoseSink is the external collaborator consuming the simulation output.
// Spawned is called once per boid when the world is built,
// Emit once per boid per frame.
type PoseSink interface {
	Spawned(info AgentInfo) error
	Emit(pose Pose) error
}

type discardSink struct{}

func (discardSink) Spawned(AgentInfo) error { return nil }
func (discardSink) Emit(Pose) error         { return nil }

// Orientation gives the heading in degrees to each axis, derived from the velocity.
func (p Pose) Orientation() (geometry.Vector3, error) {
	return p.Velocity.CosineDirectionDegrees()
}

func poseOf(b *behavior.Boid, frame int) Pose {
	return Pose{
		AgentID:  b.ID,
		Index:    b.Index,
		Frame:    frame,
		Position: b.Position,
		Velocity: b.Velocity,
	}
}

func infoOf(b *behavior.Boid, c Color) AgentInfo {
	return AgentInfo{
		AgentID:  b.ID,
		Index:    b.Index,
		Size:     b.Settings.Size,
		Position: b.Position,
		Color:    c,
	}
}

// ToProto converts the Pose into a protobuf Struct "Envelope"
func (p Pose) ToProto() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":       p.AgentID,
		"index":    float64(p.Index),
		"frame":    float64(p.Frame),
		"position": vectorFields(p.Position),
		"velocity": vectorFields(p.Velocity),
	})
}

// PoseFromProto converts an incoming envelope back to a Pose.
func PoseFromProto(s *structpb.Struct) (Pose, error) {
	f := s.GetFields()
	id, ok := f["id"]
	if !ok {
		return Pose{}, fmt.Errorf("pose envelope without id")
	}
	pos, err := vectorFromProto(f["position"])
	if err != nil {
		return Pose{}, fmt.Errorf("pose %s position: %w", id.GetStringValue(), err)
	}
	vel, err := vectorFromProto(f["velocity"])
	if err != nil {
		return Pose{}, fmt.Errorf("pose %s velocity: %w", id.GetStringValue(), err)
	}
	return Pose{
		AgentID:  id.GetStringValue(),
		Index:    int(f["index"].GetNumberValue()),
		Frame:    int(f["frame"].GetNumberValue()),
		Position: pos,
		Velocity: vel,
	}, nil
}

func vectorFields(v geometry.Vector3) map[string]interface{} {
	return map[string]interface{}{"x": v.X, "y": v.Y, "z": v.Z}
}

func vectorFromProto(v *structpb.Value) (geometry.Vector3, error) {
	s := v.GetStructValue()
	if s == nil {
		return geometry.Zero, fmt.Errorf("missing vector")
	}
	f := s.GetFields()
	return geometry.Vector3{
		X: f["x"].GetNumberValue(),
		Y: f["y"].GetNumberValue(),
		Z: f["z"].GetNumberValue(),
	}, nil
}
