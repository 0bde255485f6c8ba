package vector

import "math"

// Epsilon is the magnitude below which a vector is treated as zero.
const Epsilon = 1e-9

// Vector2 is an immutable 2D vector. Every operation returns a new value.
type Vector2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec2 is shorthand for Vector2{x, y}.
func Vec2(x, y float64) Vector2 { return Vector2{X: x, Y: y} }

// Zero is the zero vector.
var Zero = Vector2{}

func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }
func (v Vector2) Scale(f float64) Vector2 { return Vector2{v.X * f, v.Y * f} }

// Div divides by f. Division by zero yields the zero vector.
func (v Vector2) Div(f float64) Vector2 {
	if f == 0 {
		return Zero
	}
	return Vector2{v.X / f, v.Y / f}
}

func (v Vector2) Neg() Vector2 { return Vector2{-v.X, -v.Y} }

func (v Vector2) Dot(o Vector2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross is the z component of the 3D cross product of v and o.
func (v Vector2) Cross(o Vector2) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vector2) Magnitude() float64 { return math.Hypot(v.X, v.Y) }

func (v Vector2) SqrMagnitude() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vector2) IsZero() bool { return v.Magnitude() < Epsilon }

// Normalize returns the unit vector of v, or the zero vector when v is
// (near) zero.
func (v Vector2) Normalize() Vector2 {
	m := v.Magnitude()
	if m < Epsilon {
		return Zero
	}
	return Vector2{v.X / m, v.Y / m}
}

// ClampMagnitude shortens v to at most limit. A non-positive limit disables clamping.
func (v Vector2) ClampMagnitude(limit float64) Vector2 {
	if limit <= 0 {
		return v
	}
	if m := v.Magnitude(); m > limit {
		return v.Scale(limit / m)
	}
	return v
}

func (v Vector2) Distance(o Vector2) float64 { return v.Sub(o).Magnitude() }

func (v Vector2) ApproxEqual(o Vector2, tolerance float64) bool {
	return math.Abs(v.X-o.X) <= tolerance && math.Abs(v.Y-o.Y) <= tolerance
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Vector2) float64 { return a.Distance(b) }

// Angle returns the unsigned angle between a and b in degrees, in [0, 180].
// Zero-length inputs yield 0.
func Angle(a, b Vector2) float64 {
	denom := a.Magnitude() * b.Magnitude()
	if denom < Epsilon {
		return 0
	}
	c := math.Max(-1, math.Min(1, a.Dot(b)/denom))
	return math.Acos(c) * 180 / math.Pi
}

// SignedAngle returns the rotation in degrees taking from onto to, in
// (-180, 180]. Positive is counter-clockwise in a y-up frame, which is
// clockwise on screen where y grows downward.
func SignedAngle(from, to Vector2) float64 {
	d := math.Atan2(to.Y, to.X) - math.Atan2(from.Y, from.X)
	deg := d * 180 / math.Pi
	for deg <= -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}

// Reflect mirrors v about the surface with normal n: v - 2(v·n)n.
// n is normalized first. When n has no length the normalized v is used as
// the normal, which sends v straight back; a zero v stays zero.
func Reflect(v, n Vector2) Vector2 {
	n = n.Normalize()
	if n.IsZero() {
		n = v.Normalize()
	}
	return v.Sub(n.Scale(2 * v.Dot(n)))
}
