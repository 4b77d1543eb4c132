package pathing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderer.ai/internal/voxel"
)

func TestClassify(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(0, -1, 0), c(3, -1, 0), voxel.Stone)
	s.SetBlock(c(1, 0, 0), voxel.Water)
	s.SetBlock(c(2, 0, 0), voxel.Lava)

	assert.Equal(t, ManoeuvreWalk, Classify(s, c(0, 0, 0)))
	assert.Equal(t, ManoeuvreSwim, Classify(s, c(1, 0, 0)))
	assert.Equal(t, ManoeuvreNone, Classify(s, c(2, 0, 0)))
	assert.Equal(t, ManoeuvreNone, Classify(s, c(0, 1, 0)), "floating")
	assert.Equal(t, ManoeuvreNone, Classify(s, c(-5, 0, 0)), "unknown")

	s.SetFireImmune(true)
	assert.Equal(t, ManoeuvreSwim, Classify(s, c(2, 0, 0)))
}

func TestNeighborsOnBridge(t *testing.T) {
	s := bridgeWorld()
	got := Neighbors(s, NewNode(c(2, 0, 0), ManoeuvreWalk), false)
	require.Len(t, got, 2)
	assert.Equal(t, c(1, 0, 0), got[0].Pos, "x ascending order")
	assert.Equal(t, c(3, 0, 0), got[1].Pos)
	for _, n := range got {
		assert.Equal(t, ManoeuvreWalk, n.Manoeuvre)
		assert.Equal(t, Pack(n.Pos), n.Key)
	}
}

func TestNeighborsSkipUnknownCells(t *testing.T) {
	s := bridgeWorld()
	// x=-1 lies in an unloaded chunk.
	for _, n := range Neighbors(s, NewNode(c(0, 0, 0), ManoeuvreWalk), true) {
		assert.GreaterOrEqual(t, n.Pos.X, 0)
	}
}

func TestNeighborsUnsafeIncluded(t *testing.T) {
	s := bridgeWorld()
	safe := Neighbors(s, NewNode(c(2, 0, 0), ManoeuvreWalk), false)
	all := Neighbors(s, NewNode(c(2, 0, 0), ManoeuvreWalk), true)
	assert.Greater(t, len(all), len(safe))
	none := 0
	for _, n := range all {
		if n.Manoeuvre == ManoeuvreNone {
			none++
		}
	}
	assert.Equal(t, len(all)-len(safe), none)
}

func TestNeighborsCornerBlocked(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(0, -1, 0), c(3, -1, 3), voxel.Stone)
	s.Fill(c(2, 0, 1), c(2, 1, 1), voxel.Stone)
	for _, n := range Neighbors(s, NewNode(c(1, 0, 1), ManoeuvreWalk), false) {
		if n.Pos == c(2, 0, 2) || n.Pos == c(2, 0, 0) {
			t.Fatalf("diagonal %+v should be blocked by the pillar corner", n.Pos)
		}
	}
}

func TestHorizontalNeighbors(t *testing.T) {
	s := bridgeWorld()
	got := HorizontalNeighbors(s, NewNode(c(2, 0, 0), ManoeuvreWalk))
	// the z=-1 row is in an unloaded chunk
	require.Len(t, got, 5)
	walk := 0
	for _, n := range got {
		assert.Equal(t, 0, n.Pos.Y)
		if n.Manoeuvre == ManoeuvreWalk {
			walk++
		}
	}
	assert.Equal(t, 2, walk)
}
