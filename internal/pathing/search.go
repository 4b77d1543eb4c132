package pathing

import (
	"container/heap"
	"errors"
	"math"
	"time"

	"wanderer.ai/internal/voxel"
)

var (
	ErrSearchExhausted = errors.New("pathing: search exhausted")
	ErrExpansionLimit  = errors.New("pathing: expansion limit reached")
)

type Stats struct {
	Strategy string
	Expanded int
	Relaxed  int
	LazyHits int
	Duration time.Duration
}

type searchState struct {
	w     World
	goal  Goal
	start Node
	cost  CostModel

	entries map[Key]*entry
	open    frontier
	seq     uint64
	stats   Stats

	// prev is the cell expanded before the current one, in pop order.
	prev    voxel.Coord
	hasPrev bool
}

// Search runs A* from start to goal. The returned path begins with start and
// ends at the goal cell. When the open set empties first the error is
// ErrSearchExhausted.
func Search(w World, start Node, goal Goal, strategy Strategy) (Path, Stats, error) {
	began := time.Now()
	if strategy.expand == nil {
		strategy.expand = expandAll
	}
	start.Key = Pack(start.Pos)
	start.Velocity = 0
	start.Delta = voxel.Coord{}

	s := &searchState{
		w:       w,
		goal:    goal,
		start:   start,
		cost:    CostModel{Acceleration: strategy.Acceleration},
		entries: map[Key]*entry{},
		stats:   Stats{Strategy: strategy.Name},
	}
	root := &entry{node: start, g: 0, f: s.cost.Heuristic(start, goal), index: -1}
	s.entries[start.Key] = root
	heap.Push(&s.open, root)

	done := func(p Path, err error) (Path, Stats, error) {
		s.stats.Duration = time.Since(began)
		return p, s.stats, err
	}

	for s.open.Len() > 0 {
		if strategy.MaxExpanded > 0 && s.stats.Expanded >= strategy.MaxExpanded {
			return done(nil, ErrExpansionLimit)
		}
		cur := heap.Pop(&s.open).(*entry)
		if cur.node.Key == goal.Key {
			return done(s.reconstruct(cur), nil)
		}
		s.stats.Expanded++
		strategy.expand(s, cur)
		s.prev, s.hasPrev = cur.node.Pos, true
	}
	return done(nil, ErrSearchExhausted)
}

func (s *searchState) relax(cur *entry, cand Node) {
	delta := cand.Pos.Sub(cur.node.Pos)
	v := s.cost.Velocity(cur.node, delta)
	gTent := cur.g + s.cost.EdgeCost(cur.node, cand)

	gBest := math.Inf(1)
	e := s.entries[cand.Key]
	if e != nil {
		gBest = e.g
	}
	if !Admit(gTent, v, gBest, cur.node.Velocity) {
		return
	}
	s.stats.Relaxed++

	cand.Velocity = v
	cand.Delta = delta
	if e == nil {
		e = &entry{index: -1}
		s.entries[cand.Key] = e
	}
	e.node = cand
	e.g = gTent
	e.f = gTent + s.cost.Heuristic(cand, s.goal)
	e.parent = cur.node.Key
	e.hasParent = true

	if e.index >= 0 {
		heap.Fix(&s.open, e.index)
		return
	}
	s.seq++
	e.seq = s.seq
	heap.Push(&s.open, e)
}

func (s *searchState) reconstruct(last *entry) Path {
	var rev Path
	e := last
	// bounded by the number of recorded cells
	for steps := len(s.entries); e != nil && e.hasParent && e.node.Key != s.start.Key && steps > 0; steps-- {
		rev = append(rev, e.node)
		e = s.entries[e.parent]
	}
	out := make(Path, 0, len(rev)+1)
	out = append(out, s.start)
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}
