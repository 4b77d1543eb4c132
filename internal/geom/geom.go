// Package geom holds the vector helpers shared by the planner and the
// follow controller.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the length below which a vector normalizes to zero.
const Epsilon = 1e-4

// Normalize returns the unit vector along v, or the zero vector when v is
// shorter than Epsilon.
func Normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < Epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// Collinear reports whether a, b and c lie on one line.
func Collinear(a, b, c r3.Vec) bool {
	return r3.Norm2(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) < 1e-6
}

// WeightedDistance damps the vertical component: sqrt(dx² + w·dy² + dz²).
func WeightedDistance(a, b r3.Vec, w float64) float64 {
	d := r3.Sub(a, b)
	return math.Sqrt(d.X*d.X + w*d.Y*d.Y + d.Z*d.Z)
}

func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// LookVector converts pitch and yaw in degrees into a unit view direction.
// Yaw 0 faces +Z, yaw 90 faces -X, pitch 90 faces down.
func LookVector(pitch, yaw float64) r3.Vec {
	p := pitch * math.Pi / 180
	y := yaw * math.Pi / 180
	return r3.Vec{
		X: -math.Sin(y) * math.Cos(p),
		Y: -math.Sin(p),
		Z: math.Cos(y) * math.Cos(p),
	}
}

// YawPitch is the inverse of LookVector for a non-zero direction.
func YawPitch(dir r3.Vec) (yaw, pitch float64) {
	yaw = WrapDegrees(math.Atan2(dir.Z, dir.X)*180/math.Pi - 90)
	pitch = WrapDegrees(math.Atan2(math.Hypot(dir.X, dir.Z), dir.Y)*180/math.Pi - 90)
	return yaw, pitch
}

// WrapDegrees maps a into [-180, 180).
func WrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a >= 180 {
		a -= 360
	}
	if a < -180 {
		a += 360
	}
	return a
}

// RoundHalfUp rounds to the nearest integer, halves toward +Inf.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
