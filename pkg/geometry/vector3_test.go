package geometry

import (
	"errors"
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVector3(t *testing.T) {
	v := NewVector3(1, 2, 3)
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("NewVector3(1, 2, 3) = %v; want (1, 2, 3)", v)
	}
}

func TestVector3_String(t *testing.T) {
	v := Vector3{1.234, 5.678, -0.001}
	want := "(1.23, 5.68, -0.00)"
	if got := v.String(); got != want {
		t.Errorf("Vector3.String() = %q; want %q", got, want)
	}
}

func TestVector3_Arithmetic(t *testing.T) {
	v1 := Vector3{1, 2, 3}
	v2 := Vector3{4, 5, 6}

	t.Run("Add", func(t *testing.T) {
		want := Vector3{5, 7, 9}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector3{-3, -3, -3}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector3{2, 4, 6}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("MulVec", func(t *testing.T) {
		want := Vector3{4, 10, 18}
		if got := v1.MulVec(v2); !got.Eq(want) {
			t.Errorf("%v.MulVec(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Neg", func(t *testing.T) {
		want := Vector3{-1, -2, -3}
		if got := v1.Neg(); !got.Eq(want) {
			t.Errorf("%v.Neg() = %v; want %v", v1, got, want)
		}
	})

	t.Run("Div", func(t *testing.T) {
		want := Vector3{0.5, 1, 1.5}
		got, err := v1.Div(2)
		if err != nil {
			t.Fatalf("%v.Div(2) returned error %v", v1, err)
		}
		if !got.Eq(want) {
			t.Errorf("%v.Div(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("DivByZero", func(t *testing.T) {
		got, err := v1.Div(0)
		if !errors.Is(err, ErrDivideByZero) {
			t.Errorf("%v.Div(0) error = %v; want ErrDivideByZero", v1, err)
		}
		if !got.IsFinite() {
			t.Errorf("Div(0) must not leak non-finite values, got %v", got)
		}
	})

	t.Run("DivVec", func(t *testing.T) {
		want := Vector3{0.25, 0.4, 0.5}
		got, err := v1.DivVec(v2)
		if err != nil {
			t.Fatalf("%v.DivVec(%v) returned error %v", v1, v2, err)
		}
		if !got.Eq(want) {
			t.Errorf("%v.DivVec(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("DivVecZeroComponent", func(t *testing.T) {
		_, err := v1.DivVec(Vector3{1, 0, 1})
		if !errors.Is(err, ErrDivideByZero) {
			t.Errorf("DivVec with zero component error = %v; want ErrDivideByZero", err)
		}
	})

	t.Run("Immutability", func(t *testing.T) {
		orig := v1
		_ = v1.Add(v2).Mul(3).Normalize().Limit(0.1)
		if v1 != orig {
			t.Errorf("receiver mutated: %v; want %v", v1, orig)
		}
	})
}

func TestVector3_Products(t *testing.T) {
	x := Vector3{1, 0, 0}
	y := Vector3{0, 1, 0}
	z := Vector3{0, 0, 1}

	t.Run("Dot", func(t *testing.T) {
		if got := x.Dot(y); got != 0 {
			t.Errorf("Dot orthogonal = %v; want 0", got)
		}
		if got := (Vector3{1, 2, 3}).Dot(Vector3{4, 5, 6}); got != 32 {
			t.Errorf("Dot = %v; want 32", got)
		}
	})

	t.Run("Cross", func(t *testing.T) {
		if got := x.Cross(y); !got.Eq(z) {
			t.Errorf("X cross Y = %v; want %v", got, z)
		}
		if got := y.Cross(x); !got.Eq(z.Neg()) {
			t.Errorf("Y cross X = %v; want %v", got, z.Neg())
		}
		v := Vector3{1, 2, 3}
		if got := v.Cross(v); !got.IsZero() {
			t.Errorf("Cross self = %v; want zero", got)
		}
	})
}

func TestVector3_Magnitude(t *testing.T) {
	v := Vector3{2, 3, 6} // 2-3-6-7 quadruple

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); got != 7 {
			t.Errorf("Len = %v; want 7", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 49 {
			t.Errorf("LenSqr = %v; want 49", got)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		vectors := []Vector3{v, {1, 0, 0}, {-3, 4, 12}, {1e-7, 2e-7, -5e-8}, {123456, -7, 0.5}}
		for _, in := range vectors {
			got := in.Normalize()
			if !floatEquals(got.Len(), 1.0) {
				t.Errorf("%v.Normalize() length = %v; want 1", in, got.Len())
			}
		}
	})

	t.Run("ExtremeMagnitudes", func(t *testing.T) {
		tests := []struct {
			v    Vector3
			want float64
		}{
			{Vector3{1e200, 0, 0}, 1e200},
			{Vector3{0, -3e200, 4e200}, 5e200},
			{Vector3{1e-200, 0, 0}, 1e-200},
			{Vector3{3e-200, 4e-200, 0}, 5e-200},
			{Vector3{1e300, 1e300, 1e300}, math.Sqrt(3) * 1e300},
		}
		for _, tt := range tests {
			if got := tt.v.Len(); math.Abs(got-tt.want) > tt.want*1e-14 {
				t.Errorf("%v.Len() = %v; want %v", tt.v, got, tt.want)
			}
			if got := tt.v.Normalize(); !floatEquals(got.Len(), 1.0) {
				t.Errorf("%v.Normalize() = %v, length %v; want 1", tt.v, got, got.Len())
			}
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		got := Zero.Normalize()
		if !got.IsZero() {
			t.Errorf("Normalize(0,0,0) = %v; want zero", got)
		}
	})
}

func TestVector3_Limit(t *testing.T) {
	tests := []struct {
		name string
		v    Vector3
		max  float64
	}{
		{"above bound", Vector3{3, 4, 12}, 2},
		{"exactly on bound", Vector3{0, 3, 4}, 5},
		{"below bound", Vector3{0.1, 0.2, 0.3}, 5},
		{"zero vector", Zero, 1},
		{"negative components", Vector3{-10, -10, -10}, 1.6},
		{"huge vector", Vector3{1e200, 0, 0}, 1.6},
		{"huge diagonal", Vector3{-1e300, 1e300, 1e300}, 2.4},
		{"tiny vector", Vector3{1e-200, 0, 0}, 1.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Limit(tt.max)
			if got.Len() > tt.max+Epsilon {
				t.Errorf("%v.Limit(%v) length = %v; want <= %v", tt.v, tt.max, got.Len(), tt.max)
			}
			if tt.v.Len() <= tt.max && got != tt.v {
				t.Errorf("%v.Limit(%v) = %v; want unchanged", tt.v, tt.max, got)
			}
			if tt.v.Len() > tt.max && !got.Normalize().Eq(tt.v.Normalize()) {
				t.Errorf("%v.Limit(%v) changed direction: %v", tt.v, tt.max, got)
			}
		})
	}
}

func TestVector3_Distance(t *testing.T) {
	v1 := Vector3{1, 1, 1}
	v2 := Vector3{3, 4, 7} // dx=2, dy=3, dz=6, dist=7

	if got := v1.DistanceTo(v2); got != 7 {
		t.Errorf("DistanceTo = %v; want 7", got)
	}
	if got := v1.DistanceSquaredTo(v2); got != 49 {
		t.Errorf("DistanceSquaredTo = %v; want 49", got)
	}

	pairs := [][2]Vector3{
		{v1, v2},
		{{-1.5, 2.25, 1e3}, {0.1, -0.2, 0.3}},
		{{1e-9, 0, 0}, Zero},
	}
	for _, p := range pairs {
		if p[0].DistanceTo(p[1]) != p[1].DistanceTo(p[0]) {
			t.Errorf("DistanceTo not symmetric for %v and %v", p[0], p[1])
		}
	}
}

func TestVector3_CosineDirectionDegrees(t *testing.T) {
	tests := []struct {
		name string
		v    Vector3
		want Vector3
	}{
		{"X axis", Vector3{5, 0, 0}, Vector3{0, 90, 90}},
		{"negative Y axis", Vector3{0, -2, 0}, Vector3{90, 180, 90}},
		{"Z axis", Vector3{0, 0, 0.5}, Vector3{90, 90, 0}},
		{"XY diagonal", Vector3{1, 1, 0}, Vector3{45, 45, 90}},
		{"huge X", Vector3{1e200, 0, 0}, Vector3{0, 90, 90}},
		{"tiny Y", Vector3{0, 1e-200, 0}, Vector3{90, 0, 90}},
		{"huge XY diagonal", Vector3{1e300, 1e300, 0}, Vector3{45, 45, 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.CosineDirectionDegrees()
			if err != nil {
				t.Fatalf("%v.CosineDirectionDegrees() returned error %v", tt.v, err)
			}
			if math.Abs(got.X-tt.want.X) > 1e-6 || math.Abs(got.Y-tt.want.Y) > 1e-6 || math.Abs(got.Z-tt.want.Z) > 1e-6 {
				t.Errorf("%v.CosineDirectionDegrees() = %v; want %v", tt.v, got, tt.want)
			}
		})
	}

	t.Run("zero vector", func(t *testing.T) {
		_, err := Zero.CosineDirectionDegrees()
		if !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("Zero.CosineDirectionDegrees() error = %v; want ErrInvalidDirection", err)
		}
	})
}

func TestVector3_Eq(t *testing.T) {
	v := Vector3{1, 2, 3}

	if !v.Eq(Vector3{1, 2, 3}) {
		t.Error("Eq exact match failed")
	}
	if !v.Eq(Vector3{1 + Epsilon/2, 2 - Epsilon/2, 3}) {
		t.Error("Eq epsilon match failed")
	}
	if v.Eq(Vector3{1, 2, 3.1}) {
		t.Error("Eq mismatch failed")
	}
}

func TestVector3_IsFinite(t *testing.T) {
	if !(Vector3{1, -2, 3}).IsFinite() {
		t.Error("IsFinite rejected a finite vector")
	}
	if (Vector3{math.NaN(), 0, 0}).IsFinite() {
		t.Error("IsFinite accepted NaN")
	}
	if (Vector3{0, 0, math.Inf(-1)}).IsFinite() {
		t.Error("IsFinite accepted -Inf")
	}
}
