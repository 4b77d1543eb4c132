package pathing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicIsTwiceDistance(t *testing.T) {
	var m CostModel
	n := NewNode(c(0, 0, 0), ManoeuvreWalk)
	g := NewGoal(c(3, 0, 4))
	// standing (0.5,0,0.5) to center (3.5,0.5,4.5)
	want := 2 * math.Sqrt(9+0.25+16)
	assert.InDelta(t, want, m.Heuristic(n, g), 1e-12)
}

func TestEdgeCostUsesNominalPositions(t *testing.T) {
	var m CostModel
	a := NewNode(c(0, 0, 0), ManoeuvreWalk)
	b := NewNode(c(1, 0, 0), ManoeuvreSwim)
	assert.InDelta(t, math.Sqrt(1.25), m.EdgeCost(a, b), 1e-12)
}

func TestVelocity(t *testing.T) {
	m := CostModel{Acceleration: 0.2}
	from := Node{Velocity: 1, Delta: c(1, 0, 0)}
	gained := math.Sqrt(0.4)

	assert.InDelta(t, gained+1, m.Velocity(from, c(1, 0, 0)), 1e-12)
	assert.InDelta(t, gained-1, m.Velocity(from, c(-1, 0, 0)), 1e-12)
	assert.InDelta(t, gained, m.Velocity(from, c(0, 0, 1)), 1e-12)
	assert.InDelta(t, 0, CostModel{}.Velocity(Node{}, c(1, 0, 0)), 1e-12)
}

func TestAdmit(t *testing.T) {
	assert.True(t, Admit(3, 0, math.Inf(1), 0))
	assert.True(t, Admit(3, 2, 3, 0), "same g, faster arrival")
	assert.False(t, Admit(3, 0, 3, 0), "ties are not improvements")
	assert.False(t, Admit(4, 1, 3, 0))
	// The recorded side is discounted by the expanding node's velocity.
	assert.False(t, Admit(10, 4, 10, 4), "straight run at constant speed")
	assert.True(t, Admit(10, 4, 10, 2))
	assert.False(t, Admit(10, 0, 10.5, 2))
}
