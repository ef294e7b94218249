package simulation

import (
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// FrameStats summarises the flock at a frame boundary.
type FrameStats struct {
	Frame       int
	MeanSpeed   float64
	SpeedStdDev float64
	Centroid    geometry.Vector3
	// Polarization is the length of the mean heading: 1 when every boid flies
	// the same way, close to 0 for a disordered swarm.
	Polarization float64
}

func computeStats(frame int, boids []*behavior.Boid) FrameStats {
	n := len(boids)
	speeds := make([]float64, n)
	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	heading := geometry.Zero
	for i, b := range boids {
		speeds[i] = b.Velocity.Len()
		xs[i], ys[i], zs[i] = b.Position.X, b.Position.Y, b.Position.Z
		heading = heading.Add(b.Velocity.Normalize())
	}

	fs := FrameStats{Frame: frame}
	if n == 0 {
		return fs
	}
	fs.MeanSpeed, fs.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	if n == 1 {
		fs.SpeedStdDev = 0
	}
	fs.Centroid = geometry.Vector3{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
	fs.Polarization = heading.Len() / float64(n)
	return fs
}

func (fs FrameStats) fields() []zap.Field {
	return []zap.Field{
		zap.Int("frame", fs.Frame),
		zap.Float64("meanSpeed", fs.MeanSpeed),
		zap.Float64("speedStdDev", fs.SpeedStdDev),
		zap.Stringer("centroid", fs.Centroid),
		zap.Float64("polarization", fs.Polarization),
	}
}
