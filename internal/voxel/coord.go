package voxel

import "gonum.org/v1/gonum/spatial/r3"

// Coord is an integer block position.
type Coord struct {
	X int
	Y int
	Z int
}

func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

func (c Coord) Offset(dx, dy, dz int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

func (c Coord) Up() Coord   { return c.Offset(0, 1, 0) }
func (c Coord) Down() Coord { return c.Offset(0, -1, 0) }

// LenSq is the squared euclidean length of c seen as an offset.
func (c Coord) LenSq() int {
	return c.X*c.X + c.Y*c.Y + c.Z*c.Z
}

// Center is the geometric center of the block.
func (c Coord) Center() r3.Vec {
	return r3.Vec{X: float64(c.X) + 0.5, Y: float64(c.Y) + 0.5, Z: float64(c.Z) + 0.5}
}

// Floor returns the block containing p.
func Floor(p r3.Vec) Coord {
	return Coord{X: floorInt(p.X), Y: floorInt(p.Y), Z: floorInt(p.Z)}
}

func floorInt(f float64) int {
	i := int(f)
	if float64(i) > f {
		i--
	}
	return i
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
