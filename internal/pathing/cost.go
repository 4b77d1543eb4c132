package pathing

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/geom"
	"wanderer.ai/internal/voxel"
)

// CostModel scores transitions. Acceleration rewards sustained straight
// motion: the higher it is, the more the search prefers long runs over
// turns.
type CostModel struct {
	Acceleration float64
}

// Heuristic is twice the straight-line distance to the goal cell center. It
// overestimates on purpose.
func (CostModel) Heuristic(n Node, g Goal) float64 {
	return 2 * r3.Norm(r3.Sub(n.Position(), g.Pos.Center()))
}

func (CostModel) EdgeCost(a, b Node) float64 {
	return r3.Norm(r3.Sub(a.Position(), b.Position()))
}

// Velocity is the speed projected on arrival after stepping delta from from.
func (c CostModel) Velocity(from Node, delta voxel.Coord) float64 {
	d := coordVec(delta)
	gained := math.Sqrt(2 * c.Acceleration * r3.Norm(d))
	carried := r3.Scale(from.Velocity, geom.Normalize(coordVec(from.Delta)))
	return gained + r3.Dot(carried, geom.Normalize(d))
}

// Admit reports whether a transition is accepted: the tentative g, discounted
// by the arrival velocity, must beat the cell's recorded g discounted by the
// velocity of the node being expanded.
func Admit(gTent, vNew, gBest, vPrev float64) bool {
	return gTent-0.5*vNew < gBest-0.5*vPrev
}

// frontierKey orders the open set.
func frontierKey(f, velocity float64) float64 {
	return f - velocity
}

func coordVec(c voxel.Coord) r3.Vec {
	return r3.Vec{X: float64(c.X), Y: float64(c.Y), Z: float64(c.Z)}
}
