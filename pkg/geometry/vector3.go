package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon Precision constant used by Eq for float64 comparisons.
const (
	Epsilon = 1e-9
)

var (
	// ErrDivideByZero is returned when a vector is divided by a zero scalar
	// or by a vector holding a zero component.
	ErrDivideByZero = errors.New("vector cannot be divided by zero")
	// ErrInvalidDirection is returned when direction cosines are requested
	// for a zero-magnitude vector.
	ErrInvalidDirection = errors.New("direction of a zero vector is undefined")
)

// Vector3 represents a 3D vector or point in cartesian space.
// Fields are public because they are fundamental data, not internal state,
// so literals like Vector3{1, 2, 3} stay readable.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Zero is the null vector.
var Zero = Vector3{}

// NewVector3 creates a new Vector3.
func NewVector3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// ---------------------------------------------------------------------
// Stringer Interface
// ---------------------------------------------------------------------

// String implements the fmt.Stringer interface.
func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values: a Vector3 is never shared
// between two boids, each one owns its own copies.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector3) Mul(scalar float64) Vector3 {
	return Vector3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MulVec multiplies the two vectors component by component.
func (v Vector3) MulVec(other Vector3) Vector3 {
	return Vector3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Div divides every component by scalar.
// A zero scalar returns ErrDivideByZero and the receiver unchanged.
func (v Vector3) Div(scalar float64) (Vector3, error) {
	if scalar == 0 {
		return v, ErrDivideByZero
	}
	return Vector3{v.X / scalar, v.Y / scalar, v.Z / scalar}, nil
}

// DivVec divides the vector component by component.
// Any zero component in other returns ErrDivideByZero.
func (v Vector3) DivVec(other Vector3) (Vector3, error) {
	if other.X == 0 || other.Y == 0 || other.Z == 0 {
		return v, fmt.Errorf("%w: divisor %s", ErrDivideByZero, other)
	}
	return Vector3{v.X / other.X, v.Y / other.Y, v.Z / other.Z}, nil
}

// Neg returns the opposite vector.
func (v Vector3) Neg() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

// ---------------------------------------------------------------------
// Vector3 Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns a new vector at right angles to v and other.
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Cheaper than Len() as it avoids the square root. Use for comparisons.
func (v Vector3) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (Euclidean norm) of the vector.
// Outside the range where the squared sum is representable, the components
// are scaled by the largest one first.
func (v Vector3) Len() float64 {
	s := v.LenSqr()
	if s >= minSafeLenSqr && s <= maxSafeLenSqr {
		return math.Sqrt(s)
	}
	m := v.maxAbs()
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return m
	}
	return m * Vector3{v.X / m, v.Y / m, v.Z / m}.Len()
}

// Squared sums in this range neither overflow nor lose precision to underflow.
const (
	minSafeLenSqr = 0x1p-968
	maxSafeLenSqr = 0x1p1020
)

func (v Vector3) maxAbs() float64 {
	return math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector when the length is exactly zero.
func (v Vector3) Normalize() Vector3 {
	m := v.maxAbs()
	if m == 0 {
		return Zero
	}
	u := Vector3{v.X / m, v.Y / m, v.Z / m}
	l := u.Len()
	return Vector3{u.X / l, u.Y / l, u.Z / l}
}

// Limit clamps the magnitude of the vector to maximum, keeping its direction.
// Vectors already within the bound are returned untouched.
func (v Vector3) Limit(maximum float64) Vector3 {
	if v.Len() > maximum {
		return v.Normalize().Mul(maximum)
	}
	return v
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3) DistanceTo(other Vector3) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3) DistanceSquaredTo(other Vector3) float64 {
	return v.Sub(other).LenSqr()
}

// CosineDirectionDegrees returns the angles, in degrees, between the vector
// and the X, Y and Z axes. Renderers use it to orient geometry along the heading.
func (v Vector3) CosineDirectionDegrees() (Vector3, error) {
	if v.IsZero() {
		return Zero, ErrInvalidDirection
	}
	u := v.Normalize()
	return Vector3{
		X: degrees(math.Acos(clampUnit(u.X))),
		Y: degrees(math.Acos(clampUnit(u.Y))),
		Z: degrees(math.Acos(clampUnit(u.Z))),
	}, nil
}

// clampUnit keeps rounding from pushing a cosine out of Acos's domain.
func clampUnit(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3) Eq(other Vector3) bool {
	return math.Abs(v.X-other.X) <= Epsilon &&
		math.Abs(v.Y-other.Y) <= Epsilon &&
		math.Abs(v.Z-other.Z) <= Epsilon
}

// IsZero reports whether every component is exactly zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
