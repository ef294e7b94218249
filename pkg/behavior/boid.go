package behavior

import (
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
)

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
// Position, Velocity and Acceleration are owned by the boid: other boids read
// them during a neighbour pass but never write them.
type Boid struct {
	ID    string
	Index int

	Position     geometry.Vector3
	Velocity     geometry.Vector3
	Acceleration geometry.Vector3

	Settings Settings
}

// Settings holds the per-boid tuning constants, fixed at creation.
type Settings struct {
	Size              float64
	MaxSteeringSpeed  float64 // Length of the desired velocity
	MaxSteeringForce  float64 // Clamp applied to every steering force
	DesiredSeparation float64 // Personal space radius
	NeighbourDistance float64 // How far can they see?
}

// DeriveSettings computes the tuning constants from the boid size and the world width.
// The desired separation grows with the square of the size.
func DeriveSettings(size, separationPadding, worldWidth, maxSpeed, maxForce float64) Settings {
	return Settings{
		Size:              size,
		MaxSteeringSpeed:  maxSpeed,
		MaxSteeringForce:  maxForce,
		DesiredSeparation: size*size + separationPadding,
		NeighbourDistance: worldWidth / 2,
	}
}

// Weights scales each rule before it is applied by Flock.
type Weights struct {
	Separation float64
	Alignment  float64
	Cohesion   float64
}

// New creates a boid at rest acceleration with the given position and velocity.
func New(id string, index int, pos, vel geometry.Vector3, s Settings) *Boid {
	return &Boid{
		ID:       id,
		Index:    index,
		Position: pos,
		Velocity: vel,
		Settings: s,
	}
}

// Flock computes separation, alignment and cohesion against the same neighbour
// state, then applies the three weighted forces in that order.
func (b *Boid) Flock(neighbours []*Boid, w Weights) {
	separation := b.Separate(neighbours).Mul(w.Separation)
	alignment := b.Align(neighbours).Mul(w.Alignment)
	cohesion := b.Cohesion(neighbours).Mul(w.Cohesion)

	b.ApplyForce(separation)
	b.ApplyForce(alignment)
	b.ApplyForce(cohesion)
}

// ApplyForce accumulates force into the acceleration.
func (b *Boid) ApplyForce(force geometry.Vector3) {
	b.Acceleration = b.Acceleration.Add(force)
}

// Integrate advances one step with an implicit unit time step:
// velocity += acceleration, position += velocity, acceleration reset.
func (b *Boid) Integrate() {
	b.Velocity = b.Velocity.Add(b.Acceleration)
	b.Position = b.Position.Add(b.Velocity)
	b.Acceleration = geometry.Zero
}

// Orientation returns the heading as angles in degrees to each axis.
// A boid at rest has no heading and gets geometry.ErrInvalidDirection.
func (b *Boid) Orientation() (geometry.Vector3, error) {
	return b.Velocity.CosineDirectionDegrees()
}

// ---------------------------------------------------------------------
// Steering rules
// ---------------------------------------------------------------------

// Seek steers towards target: desired velocity minus current velocity.
func (b *Boid) Seek(target geometry.Vector3) geometry.Vector3 {
	desired := target.Sub(b.Position).Normalize().Mul(b.Settings.MaxSteeringSpeed)
	return desired.Sub(b.Velocity).Limit(b.Settings.MaxSteeringForce)
}

// Separate averages the vectors pointing away from the boids closer than
// DesiredSeparation, each weighted by 1/distance so closer boids push harder.
// With nobody too close the steer is the current velocity, which keeps the drift.
func (b *Boid) Separate(neighbours []*Boid) geometry.Vector3 {
	sum := geometry.Zero
	count := 0
	for _, other := range neighbours {
		d := b.Position.DistanceTo(other.Position)
		if d > 0 && d < b.Settings.DesiredSeparation {
			away := b.Position.Sub(other.Position).Normalize()
			sum = sum.Add(quo(away, d))
			count++
		}
	}

	steer := b.Velocity
	if count > 0 {
		desired := quo(sum, float64(count)).Normalize().Mul(b.Settings.MaxSteeringSpeed)
		steer = desired.Sub(b.Velocity)
	}
	return steer.Limit(b.Settings.MaxSteeringForce)
}

// Align steers towards the average heading of the boids within NeighbourDistance.
func (b *Boid) Align(neighbours []*Boid) geometry.Vector3 {
	sum := geometry.Zero
	count := 0
	for _, other := range neighbours {
		d := b.Position.DistanceTo(other.Position)
		if d > 0 && d < b.Settings.NeighbourDistance {
			sum = sum.Add(other.Velocity)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}

	desired := quo(sum, float64(count)).Normalize().Mul(b.Settings.MaxSteeringSpeed)
	return desired.Sub(b.Velocity).Limit(b.Settings.MaxSteeringForce)
}

// Cohesion seeks the centroid of the boids within NeighbourDistance.
func (b *Boid) Cohesion(neighbours []*Boid) geometry.Vector3 {
	sum := geometry.Zero
	count := 0
	for _, other := range neighbours {
		d := b.Position.DistanceTo(other.Position)
		if d > 0 && d < b.Settings.NeighbourDistance {
			sum = sum.Add(other.Position)
			count++
		}
	}
	if count == 0 {
		return geometry.Zero
	}
	return b.Seek(quo(sum, float64(count)))
}

// quo divides v by a divisor the caller already knows to be strictly positive.
func quo(v geometry.Vector3, divisor float64) geometry.Vector3 {
	return geometry.Vector3{X: v.X / divisor, Y: v.Y / divisor, Z: v.Z / divisor}
}
