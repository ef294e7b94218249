// Package keyframe turns simulation poses into keyframe streams a host
// application (3D package, renderer) can import: one spawn record per boid,
// then one key record per boid per frame with position, velocity and rotation.
package keyframe

import (
	"errors"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// Supported stream formats.
const (
	FormatJSON  = "jsonl"
	FormatProto = "proto"
)

// Record kinds.
const (
	KindSpawn = "spawn"
	KindKey   = "key"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown keyframe format")

// Record is one line (or message) of a keyframe stream.
type Record struct {
	Kind     string            `json:"kind"`
	ID       string            `json:"id"`
	Index    int               `json:"index"`
	Frame    int               `json:"frame,omitempty"`
	Size     float64           `json:"size,omitempty"`
	Position geometry.Vector3  `json:"position"`
	Velocity *geometry.Vector3 `json:"velocity,omitempty"`
	Rotation *geometry.Vector3 `json:"rotation,omitempty"`
	Color    *simulation.Color `json:"color,omitempty"`
}

// Writer is a simulation.PoseSink that buffers its output.
// Flush must be called once the run is over.
type Writer interface {
	simulation.PoseSink
	Flush() error
}

// New returns the writer for format.
func New(format string, w io.Writer) (Writer, error) {
	switch format {
	case FormatJSON, "json":
		return NewJSONWriter(w), nil
	case FormatProto, "protodelim":
		return NewProtoWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Read decodes a stream written in format.
func Read(format string, r io.Reader) ([]Record, error) {
	switch format {
	case FormatJSON, "json":
		return ReadJSON(r)
	case FormatProto, "protodelim":
		return ReadProto(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func spawnRecord(info simulation.AgentInfo) Record {
	c := info.Color
	return Record{
		Kind:     KindSpawn,
		ID:       info.AgentID,
		Index:    info.Index,
		Size:     info.Size,
		Position: info.Position,
		Color:    &c,
	}
}

// keyRecord fails for a boid at rest: it has no heading to orient its geometry with.
func keyRecord(p simulation.Pose) (Record, error) {
	rot, err := p.Orientation()
	if err != nil {
		return Record{}, fmt.Errorf("orient %s at frame %d: %w", p.AgentID, p.Frame, err)
	}
	vel := p.Velocity
	return Record{
		Kind:     KindKey,
		ID:       p.AgentID,
		Index:    p.Index,
		Frame:    p.Frame,
		Position: p.Position,
		Velocity: &vel,
		Rotation: &rot,
	}, nil
}

// Summary describes a decoded stream.
type Summary struct {
	Agents     int
	Keys       int
	FirstFrame int
	LastFrame  int
}

// Summarize counts spawned agents, key records and the frame range.
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		switch r.Kind {
		case KindSpawn:
			s.Agents++
		case KindKey:
			if s.Keys == 0 || r.Frame < s.FirstFrame {
				s.FirstFrame = r.Frame
			}
			if s.Keys == 0 || r.Frame > s.LastFrame {
				s.LastFrame = r.Frame
			}
			s.Keys++
		}
	}
	return s
}
