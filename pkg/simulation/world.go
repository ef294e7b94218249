package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/geometry"
	"go.uber.org/zap"
)

var (
	// ErrNonFiniteState is returned when integration produced a NaN or infinite value.
	ErrNonFiniteState = errors.New("boid state is not finite")
	// ErrComplete is returned by Step once every frame has been simulated.
	ErrComplete = errors.New("simulation complete")
)

// RandomSource provides uniform numbers in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NeighbourQuery returns the boids that b may interact with.
// The steering rules still filter by distance, so an implementation may
// return more than needed but never less.
type NeighbourQuery interface {
	Neighbours(b *behavior.Boid, population []*behavior.Boid) []*behavior.Boid
}

// BruteForce hands every boid the whole population: O(n²) per frame.
type BruteForce struct{}

// Neighbours returns population unfiltered, b included; the rules skip b
// through their zero-distance guard.
func (BruteForce) Neighbours(_ *behavior.Boid, population []*behavior.Boid) []*behavior.Boid {
	return population
}

// Option customizes a World at construction.
type Option func(*World)

// WithRandom injects the random source used to seed positions and velocities.
func WithRandom(r RandomSource) Option {
	return func(w *World) { w.rng = r }
}

// WithSink sets the collaborator receiving spawn records and poses.
func WithSink(s PoseSink) Option {
	return func(w *World) { w.sink = s }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithNeighbourQuery replaces the brute force neighbour scan.
func WithNeighbourQuery(q NeighbourQuery) Option {
	return func(w *World) { w.query = q }
}

// World owns the population, the bounds and the frame clock.
// It is Running while frame < cfg.Frames and Complete afterwards.
type World struct {
	cfg     *Config
	boids   []*behavior.Boid
	weights behavior.Weights
	frame   int // frames simulated so far
	runID   string

	rng    RandomSource
	sink   PoseSink
	query  NeighbourQuery
	logger *zap.Logger
}

// NewWorld validates cfg and creates the whole population.
// Without WithRandom the population is seeded from cfg.Seed.
func NewWorld(cfg *Config, opts ...Option) (*World, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg: cfg,
		weights: behavior.Weights{
			Separation: cfg.SeparationWeight,
			Alignment:  cfg.AlignmentWeight,
			Cohesion:   cfg.CohesionWeight,
		},
		runID:  uuid.NewString(),
		sink:   discardSink{},
		query:  BruteForce{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	w.logger = w.logger.With(zap.String("run", w.runID))

	if err := w.spawnFlock(); err != nil {
		return nil, err
	}
	w.logger.Info("world created",
		zap.Int("population", cfg.Population),
		zap.Int("frames", cfg.Frames),
		zap.String("order", cfg.UpdateOrder),
		zap.Float64("width", cfg.WorldWidth),
		zap.Float64("height", cfg.WorldHeight),
		zap.Float64("depth", cfg.WorldDepth))
	return w, nil
}

// spawnFlock creates every boid in index order. For each boid the position is
// drawn first, then the velocity, then the colour.
func (w *World) spawnFlock() error {
	settings := behavior.DeriveSettings(
		w.cfg.BoidSize,
		w.cfg.SeparationPadding,
		w.cfg.WorldWidth,
		w.cfg.MaxSteeringSpeed,
		w.cfg.MaxSteeringForce,
	)

	w.boids = make([]*behavior.Boid, 0, w.cfg.Population)
	for i := 0; i < w.cfg.Population; i++ {
		name := fmt.Sprintf("Boid-%04d", i)
		pos := geometry.Vector3{
			X: uniform(w.rng, 0, w.cfg.WorldWidth),
			Y: uniform(w.rng, 0, w.cfg.WorldHeight),
			Z: uniform(w.rng, 0, w.cfg.WorldDepth),
		}
		b := behavior.New(name, i, pos, w.randomVelocity(), settings)
		w.boids = append(w.boids, b)

		if err := w.sink.Spawned(infoOf(b, w.randomColor())); err != nil {
			return fmt.Errorf("spawn %s: %w", name, err)
		}
	}
	return nil
}

// randomVelocity keeps the historical distribution: cos, sin and tan of three
// independent angles. It is not a unit vector unless VelocityUnit is configured.
func (w *World) randomVelocity() geometry.Vector3 {
	v := geometry.Vector3{
		X: math.Cos(uniform(w.rng, 0.4, 1)),
		Y: math.Sin(uniform(w.rng, 0.4, 1)),
		Z: math.Tan(uniform(w.rng, 0.4, 1)),
	}
	if w.cfg.InitialVelocity == VelocityUnit {
		return v.Normalize()
	}
	return v
}

// randomColor gives a blue-green shade with little red.
func (w *World) randomColor() Color {
	return Color{
		R: uniform(w.rng, 0, 0.1),
		G: uniform(w.rng, 0, 1),
		B: uniform(w.rng, 0.3, 1),
	}
}

func uniform(r RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// WrapBoundary teleports a boid that left the box padded by its desired
// separation to the opposite face, axis by axis.
func (w *World) WrapBoundary(b *behavior.Boid) {
	pad := b.Settings.DesiredSeparation
	b.Position.X = wrap(b.Position.X, w.cfg.WorldWidth, pad)
	b.Position.Y = wrap(b.Position.Y, w.cfg.WorldHeight, pad)
	b.Position.Z = wrap(b.Position.Z, w.cfg.WorldDepth, pad)
}

func wrap(c, dim, pad float64) float64 {
	if c < -pad {
		return dim + pad
	}
	if c > dim+pad {
		return -pad
	}
	return c
}

// Step simulates one frame and emits one pose per boid.
func (w *World) Step() error {
	if w.Done() {
		return ErrComplete
	}
	frame := w.cfg.FirstFrame + w.frame

	var err error
	if w.cfg.UpdateOrder == OrderSnapshot {
		err = w.stepSnapshot(frame)
	} else {
		err = w.stepSequential(frame)
	}
	if err != nil {
		return err
	}

	w.frame++
	if w.cfg.StatsEvery > 0 && w.frame%w.cfg.StatsEvery == 0 {
		w.logger.Info("flock stats", w.Stats().fields()...)
	}
	return nil
}

// stepSequential updates boids one after the other: a boid sees the already
// moved state of the boids before it in the population.
func (w *World) stepSequential(frame int) error {
	for _, b := range w.boids {
		w.WrapBoundary(b)
		b.Flock(w.query.Neighbours(b, w.boids), w.weights)
		b.Integrate()
		if err := w.emit(b, frame); err != nil {
			return err
		}
	}
	return nil
}

// stepSnapshot computes every force before anybody moves. Flock only writes
// the acting boid's acceleration, so the live population is the snapshot
// until the integration pass starts.
func (w *World) stepSnapshot(frame int) error {
	for _, b := range w.boids {
		w.WrapBoundary(b)
	}
	for _, b := range w.boids {
		b.Flock(w.query.Neighbours(b, w.boids), w.weights)
	}
	for _, b := range w.boids {
		b.Integrate()
		if err := w.emit(b, frame); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) emit(b *behavior.Boid, frame int) error {
	if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
		return fmt.Errorf("%w: %s at frame %d: position %v velocity %v",
			ErrNonFiniteState, b.ID, frame, b.Position, b.Velocity)
	}
	if err := w.sink.Emit(poseOf(b, frame)); err != nil {
		return fmt.Errorf("emit %s at frame %d: %w", b.ID, frame, err)
	}
	return nil
}

// Run steps until every frame is done. ctx is checked at each frame boundary,
// a cancelled run keeps the frames already emitted.
func (w *World) Run(ctx context.Context) error {
	w.logger.Info("simulation started", zap.Int("fromFrame", w.cfg.FirstFrame+w.frame))
	for !w.Done() {
		if err := ctx.Err(); err != nil {
			w.logger.Warn("simulation cancelled", zap.Int("framesDone", w.frame), zap.Error(err))
			return fmt.Errorf("cancelled after %d frames: %w", w.frame, err)
		}
		if err := w.Step(); err != nil {
			w.logger.Error("simulation failed", zap.Int("framesDone", w.frame), zap.Error(err))
			return err
		}
	}
	w.logger.Info("simulation complete", w.Stats().fields()...)
	return nil
}

// Done reports whether the world reached its Complete state.
func (w *World) Done() bool {
	return w.frame >= w.cfg.Frames
}

// FramesDone returns how many frames have been simulated.
func (w *World) FramesDone() int {
	return w.frame
}

// RunID identifies this world in logs.
func (w *World) RunID() string {
	return w.runID
}

// Boids returns a copy of the population state, in index order.
func (w *World) Boids() []behavior.Boid {
	out := make([]behavior.Boid, len(w.boids))
	for i, b := range w.boids {
		out[i] = *b
	}
	return out
}

// Stats summarises the current state of the flock.
func (w *World) Stats() FrameStats {
	return computeStats(w.cfg.FirstFrame+w.frame-1, w.boids)
}
