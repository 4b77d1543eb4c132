package pathing

import "wanderer.ai/internal/voxel"

func c(x, y, z int) voxel.Coord { return voxel.Coord{X: x, Y: y, Z: z} }

// bridgeWorld is a one-wide stone bridge at y=-1, z=0, x in [0,5].
func bridgeWorld() *voxel.Store {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(0, -1, 0), c(5, -1, 0), voxel.Stone)
	return s
}

// dropWorld steps down one block between x=2 and x=3.
func dropWorld() *voxel.Store {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(0, -1, 0), c(2, -1, 0), voxel.Stone)
	s.Fill(c(3, -2, 0), c(6, -2, 0), voxel.Stone)
	return s
}

// wallWorld is a floor split by a three-high wall at x=4 with a gap at z=3.
func wallWorld() *voxel.Store {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-1, -1, -3), c(9, -1, 3), voxel.Stone)
	s.Fill(c(4, 0, -3), c(4, 2, 2), voxel.Stone)
	return s
}

// enclosedWorld seals the goal cell (2,0,2) inside a glass box.
func enclosedWorld() *voxel.Store {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-4, -1, -4), c(4, -1, 4), voxel.Stone)
	s.Fill(c(1, 0, 1), c(3, 2, 3), voxel.Glass)
	s.SetBlock(c(2, 0, 2), voxel.Air)
	s.SetBlock(c(2, 1, 2), voxel.Air)
	return s
}

func walkPath(coords ...voxel.Coord) []Node {
	out := make([]Node, len(coords))
	for i, p := range coords {
		out[i] = NewNode(p, ManoeuvreWalk)
	}
	return out
}
