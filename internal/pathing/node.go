package pathing

import (
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/voxel"
)

// Node is a cell on a path together with the manoeuvre that reaches it.
// Velocity and Delta are search annotations: the projected speed on arrival
// and the step that led here.
type Node struct {
	Pos       voxel.Coord
	Manoeuvre Manoeuvre
	Key       Key

	Velocity float64
	Delta    voxel.Coord
}

func NewNode(pos voxel.Coord, m Manoeuvre) Node {
	return Node{Pos: pos, Manoeuvre: m, Key: Pack(pos)}
}

// Standing is the foot position at the center of the cell floor.
func (n Node) Standing() r3.Vec {
	return r3.Vec{X: float64(n.Pos.X) + 0.5, Y: float64(n.Pos.Y), Z: float64(n.Pos.Z) + 0.5}
}

// Position is the nominal position: mid-body for swimming, standing otherwise.
func (n Node) Position() r3.Vec {
	if n.Manoeuvre == ManoeuvreSwim {
		return n.Pos.Center()
	}
	return n.Standing()
}

type Goal struct {
	Pos voxel.Coord
	Key Key
}

func NewGoal(pos voxel.Coord) Goal {
	return Goal{Pos: pos, Key: Pack(pos)}
}

// Path is a start-to-goal node sequence.
type Path []Node

func (p Path) Coords() []voxel.Coord {
	out := make([]voxel.Coord, len(p))
	for i, n := range p {
		out[i] = n.Pos
	}
	return out
}
