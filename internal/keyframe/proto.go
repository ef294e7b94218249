package keyframe

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoWriter writes size-delimited protobuf Struct messages,
// the pose envelope of simulation.Pose.ToProto plus kind and rotation.
type ProtoWriter struct {
	bw *bufio.Writer
}

var _ Writer = (*ProtoWriter)(nil)

func NewProtoWriter(w io.Writer) *ProtoWriter {
	return &ProtoWriter{bw: bufio.NewWriter(w)}
}

func (p *ProtoWriter) Spawned(info simulation.AgentInfo) error {
	s, err := structpb.NewStruct(map[string]interface{}{
		"kind":     KindSpawn,
		"id":       info.AgentID,
		"index":    float64(info.Index),
		"size":     info.Size,
		"position": vectorFields(info.Position),
		"color": map[string]interface{}{
			"r": info.Color.R,
			"g": info.Color.G,
			"b": info.Color.B,
		},
	})
	if err != nil {
		return fmt.Errorf("spawn envelope %s: %w", info.AgentID, err)
	}
	return p.write(s)
}

func (p *ProtoWriter) Emit(pose simulation.Pose) error {
	rec, err := keyRecord(pose)
	if err != nil {
		return err
	}
	s, err := pose.ToProto()
	if err != nil {
		return fmt.Errorf("pose envelope %s: %w", pose.AgentID, err)
	}
	rot, err := structpb.NewValue(vectorFields(*rec.Rotation))
	if err != nil {
		return fmt.Errorf("rotation envelope %s: %w", pose.AgentID, err)
	}
	s.Fields["kind"] = structpb.NewStringValue(KindKey)
	s.Fields["rotation"] = rot
	return p.write(s)
}

func (p *ProtoWriter) write(s *structpb.Struct) error {
	if _, err := protodelim.MarshalTo(p.bw, s); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

func (p *ProtoWriter) Flush() error {
	return p.bw.Flush()
}

// ReadProto decodes a size-delimited stream written by ProtoWriter.
func ReadProto(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	var records []Record
	for {
		s := &structpb.Struct{}
		err := protodelim.UnmarshalFrom(br, s)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("record %d: %w", len(records), err)
		}
		rec, err := recordFromProto(s)
		if err != nil {
			return records, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}

func recordFromProto(s *structpb.Struct) (Record, error) {
	f := s.GetFields()
	switch kind := f["kind"].GetStringValue(); kind {
	case KindSpawn:
		c := f["color"].GetStructValue().GetFields()
		return Record{
			Kind:     KindSpawn,
			ID:       f["id"].GetStringValue(),
			Index:    int(f["index"].GetNumberValue()),
			Size:     f["size"].GetNumberValue(),
			Position: vectorFromValue(f["position"]),
			Color: &simulation.Color{
				R: c["r"].GetNumberValue(),
				G: c["g"].GetNumberValue(),
				B: c["b"].GetNumberValue(),
			},
		}, nil
	case KindKey:
		pose, err := simulation.PoseFromProto(s)
		if err != nil {
			return Record{}, err
		}
		vel := pose.Velocity
		rot := vectorFromValue(f["rotation"])
		return Record{
			Kind:     KindKey,
			ID:       pose.AgentID,
			Index:    pose.Index,
			Frame:    pose.Frame,
			Position: pose.Position,
			Velocity: &vel,
			Rotation: &rot,
		}, nil
	default:
		return Record{}, fmt.Errorf("unknown record kind %q", kind)
	}
}

func vectorFields(v geometry.Vector3) map[string]interface{} {
	return map[string]interface{}{"x": v.X, "y": v.Y, "z": v.Z}
}

func vectorFromValue(v *structpb.Value) geometry.Vector3 {
	f := v.GetStructValue().GetFields()
	return geometry.Vector3{
		X: f["x"].GetNumberValue(),
		Y: f["y"].GetNumberValue(),
		Z: f["z"].GetNumberValue(),
	}
}
