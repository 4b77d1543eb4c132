package follow

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/geom"
	"wanderer.ai/internal/pathing"
)

var ErrMalformedPath = errors.New("follow: path needs at least two nodes")

// DefaultResampling is the number of samples per block of segment length.
const DefaultResampling = 3

// hazardPush is how far a waypoint is moved away from unsafe neighbors.
const hazardPush = 0.5

// DensePath is a node path with each hop [node, next) resampled into
// waypoints. Segments are keyed by the source node; the last node maps to
// its own nominal position.
type DensePath struct {
	Nodes    []pathing.Node
	Segments map[pathing.Key][]r3.Vec
	Flat     []r3.Vec
}

// Segment returns the waypoints that leave node i.
func (d DensePath) Segment(i int) []r3.Vec {
	if i < 0 || i >= len(d.Nodes) {
		return nil
	}
	return d.Segments[d.Nodes[i].Key]
}

// HazardOffset points away from the horizontal neighbors of n that the agent
// cannot stand or swim in, with length hazardPush, or is zero.
func HazardOffset(w pathing.World, n pathing.Node) r3.Vec {
	var sum r3.Vec
	for _, nb := range pathing.HorizontalNeighbors(w, n) {
		if nb.Manoeuvre != pathing.ManoeuvreNone {
			continue
		}
		d := n.Pos.Sub(nb.Pos)
		sum = r3.Add(sum, r3.Vec{X: float64(d.X), Y: float64(d.Y), Z: float64(d.Z)})
	}
	return r3.Scale(hazardPush, geom.Normalize(sum))
}

// Densify interpolates nodes into a DensePath with factor samples per block.
func Densify(w pathing.World, nodes []pathing.Node, factor float64) (DensePath, error) {
	if len(nodes) < 2 {
		return DensePath{}, ErrMalformedPath
	}
	if factor <= 0 {
		factor = DefaultResampling
	}

	dp := DensePath{
		Nodes:    append([]pathing.Node(nil), nodes...),
		Segments: make(map[pathing.Key][]r3.Vec, len(nodes)),
	}
	for i := 0; i < len(nodes)-1; i++ {
		cur, next := nodes[i], nodes[i+1]
		a := r3.Add(cur.Position(), HazardOffset(w, cur))
		b := r3.Add(next.Position(), HazardOffset(w, next))

		n := int(math.Ceil(factor * r3.Norm(r3.Sub(b, a))))
		var samples []r3.Vec
		if n > 0 {
			samples = make([]r3.Vec, 0, n)
			for k := 0; k < n; k++ {
				samples = append(samples, geom.Lerp(a, b, float64(k)/float64(n)))
			}
		} else {
			samples = []r3.Vec{a}
		}
		dp.Segments[cur.Key] = snap(samples, cur.Manoeuvre)
	}
	last := nodes[len(nodes)-1]
	dp.Segments[last.Key] = []r3.Vec{last.Position()}

	for _, n := range nodes {
		dp.Flat = append(dp.Flat, dp.Segments[n.Key]...)
	}
	return dp, nil
}

// snap applies the manoeuvre's positional constraint in place.
func snap(samples []r3.Vec, m pathing.Manoeuvre) []r3.Vec {
	switch m {
	case pathing.ManoeuvreWalk:
		for i := range samples {
			samples[i].Y = geom.RoundHalfUp(samples[i].Y)
		}
	case pathing.ManoeuvreNone, pathing.ManoeuvreSwim, pathing.ManoeuvreFall,
		pathing.ManoeuvreBreak, pathing.ManoeuvreClimb, pathing.ManoeuvreParkour:
	}
	return samples
}
