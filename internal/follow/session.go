package follow

import (
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/pathing"
)

// Unset marks an index that has not been committed yet.
const Unset = -1

// Session is one execution of a path. It is replaced, never edited, when a
// new path is assigned.
type Session struct {
	Dense     DensePath
	NodeIdx   int
	SampleIdx int
}

func newSession(dense DensePath) *Session {
	return &Session{Dense: dense, NodeIdx: Unset, SampleIdx: Unset}
}

func (s *Session) Nodes() []pathing.Node { return s.Dense.Nodes }

func (s *Session) Final() pathing.Node {
	return s.Dense.Nodes[len(s.Dense.Nodes)-1]
}

func (s *Session) Node() pathing.Node {
	return s.Dense.Nodes[s.NodeIdx]
}

func (s *Session) Target() r3.Vec {
	return s.Dense.Segment(s.NodeIdx)[s.SampleIdx]
}
