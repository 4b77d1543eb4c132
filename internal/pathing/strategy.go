package pathing

import (
	"fmt"
	"strings"

	"wanderer.ai/internal/voxel"
)

// Strategy selects how the search expands a popped node.
type Strategy struct {
	Name         string
	Acceleration float64
	// MaxExpanded stops the search once that many nodes were expanded.
	// Zero means unlimited.
	MaxExpanded int

	expand func(s *searchState, cur *entry)
}

var (
	// Full enumerates every neighbor of every expanded node.
	Full = Strategy{Name: "full", Acceleration: 0, expand: expandAll}
	// Lazy repeats the previous step while it stays valid and only falls
	// back to full enumeration when it does not. Faster on open terrain,
	// not optimal.
	Lazy = Strategy{Name: "lazy", Acceleration: 0.2, expand: expandLazy}
)

func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "full", "astar", "":
		return Full, nil
	case "lazy":
		return Lazy, nil
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q", name)
}

func (s Strategy) WithAcceleration(a float64) Strategy {
	s.Acceleration = a
	return s
}

func (s Strategy) WithLimit(maxExpanded int) Strategy {
	s.MaxExpanded = maxExpanded
	return s
}

func (s Strategy) String() string { return s.Name }

func expandAll(s *searchState, cur *entry) {
	for _, n := range Neighbors(s.w, cur.node, false) {
		s.relax(cur, n)
	}
}

// expandLazy projects the step from the previously expanded cell one step
// past cur. That cell is the last one popped, not necessarily cur's parent.
func expandLazy(s *searchState, cur *entry) {
	if s.hasPrev && s.prev != cur.node.Pos {
		c := cur.node.Pos.Add(cur.node.Pos.Sub(s.prev))
		m := ManoeuvreNone
		if KeyInRange(c) && s.w.Occupancy(c) != voxel.OccUnknown && stepClear(s.w, cur.node.Pos, c) {
			m = Classify(s.w, c)
		}
		if m != ManoeuvreNone {
			s.stats.LazyHits++
			s.relax(cur, NewNode(c, m))
			return
		}
	}
	expandAll(s, cur)
}
