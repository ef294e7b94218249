package simulation

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestPose_ProtoEnvelope(t *testing.T) {
	p := Pose{
		AgentID:  "Boid-0007",
		Index:    7,
		Frame:    12,
		Position: geometry.Vector3{X: 1.5, Y: -2.25, Z: 107},
		Velocity: geometry.Vector3{X: 0.1, Y: 0.2, Z: -0.3},
	}

	s, err := p.ToProto()
	require.NoError(t, err)
	assert.Equal(t, "Boid-0007", s.GetFields()["id"].GetStringValue())

	back, err := PoseFromProto(s)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestPoseFromProto_Incomplete(t *testing.T) {
	noID, err := structpb.NewStruct(map[string]interface{}{"frame": 1.0})
	require.NoError(t, err)
	_, err = PoseFromProto(noID)
	assert.Error(t, err)

	noVelocity, err := structpb.NewStruct(map[string]interface{}{
		"id":       "Boid-0000",
		"position": map[string]interface{}{"x": 1.0, "y": 2.0, "z": 3.0},
	})
	require.NoError(t, err)
	_, err = PoseFromProto(noVelocity)
	assert.ErrorContains(t, err, "velocity")
}

func TestPose_Orientation(t *testing.T) {
	rot, err := Pose{Velocity: geometry.Vector3{Z: -3}}.Orientation()
	require.NoError(t, err)
	assert.InDelta(t, 90, rot.X, 1e-9)
	assert.InDelta(t, 90, rot.Y, 1e-9)
	assert.InDelta(t, 180, rot.Z, 1e-9)

	_, err = Pose{}.Orientation()
	assert.ErrorIs(t, err, geometry.ErrInvalidDirection)
}
