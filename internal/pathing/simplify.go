package pathing

import "wanderer.ai/internal/geom"

// Simplify removes intermediate nodes the agent can skip. Each pass looks at
// disjoint triples (0,1,2), (3,4,5), ... of the sequence as it stood when the
// pass began and drops the middle of every triple that shares one
// simplifiable manoeuvre and is either collinear or has continuous floor and
// a clear body and head corridor between its ends. Passes repeat until one
// removes nothing. The first and last nodes always survive and path is not
// modified.
func Simplify(w World, path []Node) []Node {
	cur := append([]Node(nil), path...)
	for {
		next, removed := simplifyPass(w, cur)
		if !removed {
			return cur
		}
		cur = next
	}
}

func simplifyPass(w World, path []Node) ([]Node, bool) {
	drop := make([]bool, len(path))
	removed := false
	for i := 0; i+2 < len(path); i += 3 {
		p1, p2, p3 := path[i], path[i+1], path[i+2]
		if p1.Manoeuvre != p2.Manoeuvre || p2.Manoeuvre != p3.Manoeuvre {
			continue
		}
		if !p1.Manoeuvre.simplifiable() {
			continue
		}
		if geom.Collinear(p1.Position(), p2.Position(), p3.Position()) || shortcut(w, p1, p3) {
			drop[i+1] = true
			removed = true
		}
	}
	if !removed {
		return path, false
	}
	out := make([]Node, 0, len(path))
	for i, n := range path {
		if !drop[i] {
			out = append(out, n)
		}
	}
	return out, true
}

func shortcut(w World, a, b Node) bool {
	return w.RaycastHitsAll(a.Pos.Down(), b.Pos.Down()) &&
		!w.RaycastHitsAny(a.Pos, b.Pos) &&
		!w.RaycastHitsAny(a.Pos.Up(), b.Pos.Up())
}
