package voxel

// Traverse walks the cells crossed by the segment between the centers of from
// and to, both included, calling visit for each. It stops and returns false as
// soon as visit does.
//
// Boundary crossings are compared exactly, so a line through a cell edge or
// corner is a tie. On horizontal ties every side cell is visited, which keeps a
// diagonal move from grazing a corner. On ties that involve the vertical axis
// only the upper side cells are visited: a descent leaves the ledge before it
// drops and an ascent rises before it moves over.
func Traverse(from, to Coord, visit func(Coord) bool) bool {
	cur := [3]int{from.X, from.Y, from.Z}
	delta := [3]int{to.X - from.X, to.Y - from.Y, to.Z - from.Z}
	var step, n, k [3]int
	for i, d := range delta {
		switch {
		case d > 0:
			step[i], n[i] = 1, d
		case d < 0:
			step[i], n[i] = -1, -d
		}
		k[i] = 1
	}

	if !visit(from) {
		return false
	}

	// crossing k of axis i happens at t = (2k-1) / (2n).
	cmp := func(i, j int) int {
		a := (2*k[i] - 1) * n[j]
		b := (2*k[j] - 1) * n[i]
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}

	for {
		best := -1
		for i := 0; i < 3; i++ {
			if k[i] > n[i] {
				continue
			}
			if best < 0 || cmp(i, best) < 0 {
				best = i
			}
		}
		if best < 0 {
			return true
		}

		var tied [3]int
		nt := 0
		for i := 0; i < 3; i++ {
			if k[i] <= n[i] && cmp(i, best) == 0 {
				tied[nt] = i
				nt++
			}
		}

		if nt > 1 {
			full := 1<<nt - 1
			for mask := 1; mask < full; mask++ {
				side := cur
				hasY := false
				for b := 0; b < nt; b++ {
					if mask&(1<<b) == 0 {
						continue
					}
					axis := tied[b]
					side[axis] += step[axis]
					if axis == 1 {
						hasY = true
					}
				}
				if yTied(tied[:nt]) {
					if step[1] < 0 && hasY {
						continue
					}
					if step[1] > 0 && !hasY {
						continue
					}
				}
				if !visit(Coord{X: side[0], Y: side[1], Z: side[2]}) {
					return false
				}
			}
		}

		for _, axis := range tied[:nt] {
			cur[axis] += step[axis]
			k[axis]++
		}
		if !visit(Coord{X: cur[0], Y: cur[1], Z: cur[2]}) {
			return false
		}
	}
}

func yTied(axes []int) bool {
	for _, a := range axes {
		if a == 1 {
			return true
		}
	}
	return false
}
