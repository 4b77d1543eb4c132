package pathing

import "wanderer.ai/internal/voxel"

// MaxDrop is how far below the current cell a neighbor may lie.
const MaxDrop = 5

// Classify picks the manoeuvre that reaches c, or ManoeuvreNone when c is
// unsafe or unsupported.
func Classify(w World, c voxel.Coord) Manoeuvre {
	if w.Standable(c) && !w.Submerged(c) {
		return ManoeuvreWalk
	}
	switch w.Fluid(c) {
	case voxel.FluidWater:
		return ManoeuvreSwim
	case voxel.FluidLava:
		if w.FireImmune() {
			return ManoeuvreSwim
		}
	}
	return ManoeuvreNone
}

// stepClear checks body and head corridors for moves longer than one block.
func stepClear(w World, from, to voxel.Coord) bool {
	if to.Sub(from).LenSq() <= 1 {
		return true
	}
	return !w.RaycastHitsAny(from, to) && !w.RaycastHitsAny(from.Up(), to.Up())
}

// Neighbors enumerates the cells reachable from n in one step, in x, y, z
// order. Unsafe cells are dropped unless allowUnsafe is set.
func Neighbors(w World, n Node, allowUnsafe bool) []Node {
	out := make([]Node, 0, 16)
	for dx := -1; dx <= 1; dx++ {
		for dy := -MaxDrop; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				c := n.Pos.Offset(dx, dy, dz)
				if w.Occupancy(c) == voxel.OccUnknown {
					continue
				}
				if !stepClear(w, n.Pos, c) {
					continue
				}
				m := Classify(w, c)
				if m == ManoeuvreNone && !allowUnsafe {
					continue
				}
				out = append(out, NewNode(c, m))
			}
		}
	}
	return out
}

// HorizontalNeighbors returns the 8 same-height cells around n, classified
// but never filtered by safety.
func HorizontalNeighbors(w World, n Node) []Node {
	out := make([]Node, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			c := n.Pos.Offset(dx, 0, dz)
			if w.Occupancy(c) == voxel.OccUnknown {
				continue
			}
			out = append(out, NewNode(c, Classify(w, c)))
		}
	}
	return out
}
