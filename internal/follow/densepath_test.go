package follow

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/voxel"
)

func TestDensifyTwoNodes(t *testing.T) {
	w := floorWorld()
	cases := []struct {
		name string
		to   voxel.Coord
	}{
		{"straight", c(2, 0, 0)},
		{"diagonal", c(1, 0, 1)},
		{"long", c(7, 0, 3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ns := nodes(pathing.ManoeuvreWalk, c(0, 0, 0), tc.to)
			dp, err := Densify(w, ns, DefaultResampling)
			require.NoError(t, err)

			length := r3.Norm(r3.Sub(ns[1].Position(), ns[0].Position()))
			want := int(math.Max(1, math.Ceil(3*length)))
			assert.Len(t, dp.Segment(0), want)
			assert.Len(t, dp.Flat, want+1)
			assert.Equal(t, ns[1].Position(), dp.Flat[len(dp.Flat)-1])
			assert.Equal(t, ns[0].Position(), dp.Flat[0])
			assert.Equal(t, []r3.Vec{ns[1].Position()}, dp.Segments[ns[1].Key])
		})
	}
}

func TestDensifyRejectsShortPaths(t *testing.T) {
	w := floorWorld()
	_, err := Densify(w, nodes(pathing.ManoeuvreWalk, c(0, 0, 0)), DefaultResampling)
	assert.True(t, errors.Is(err, ErrMalformedPath))
	_, err = Densify(w, nil, DefaultResampling)
	assert.ErrorIs(t, err, ErrMalformedPath)
}

func TestHazardOffsetPushesAwayFromEdge(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(0, -1, 0), c(5, -1, 0), voxel.Stone)
	// only the z=+1 row is loaded and it has no floor
	got := HazardOffset(s, pathing.NewNode(c(2, 0, 0), pathing.ManoeuvreWalk))
	assert.InDelta(t, 0, got.X, 1e-12)
	assert.InDelta(t, 0, got.Y, 1e-12)
	assert.InDelta(t, -0.5, got.Z, 1e-12)

	assert.Equal(t, r3.Vec{}, HazardOffset(floorWorld(), pathing.NewNode(c(2, 0, 2), pathing.ManoeuvreWalk)))
}

func TestDensifyWalkSnapsHeight(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-4, -1, -4), c(2, -1, 4), voxel.Stone)
	s.Fill(c(3, -2, -4), c(8, -2, 4), voxel.Stone)
	dp, err := Densify(s, nodes(pathing.ManoeuvreWalk, c(2, 0, 0), c(3, -1, 0)), DefaultResampling)
	require.NoError(t, err)
	for _, p := range dp.Segment(0) {
		assert.Equal(t, math.Round(p.Y), p.Y)
	}
	// both ends are pushed away from the ledge along x, so the hop spans
	// (2,0) to (4,-1) horizontally and vertically: seven samples
	ys := []float64{}
	for _, p := range dp.Segment(0) {
		ys = append(ys, p.Y)
	}
	assert.Equal(t, []float64{0, 0, 0, 0, -1, -1, -1}, ys)
}

func TestDensifySwimKeepsHeight(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-4, -1, -4), c(8, -1, 4), voxel.Stone)
	s.Fill(c(-4, 0, -4), c(8, 1, 4), voxel.Water)
	ns := nodes(pathing.ManoeuvreSwim, c(0, 0, 0), c(2, 1, 0))
	dp, err := Densify(s, ns, DefaultResampling)
	require.NoError(t, err)

	fractional := false
	for _, p := range dp.Segment(0) {
		if p.Y != math.Round(p.Y) {
			fractional = true
		}
	}
	assert.True(t, fractional)
	assert.Equal(t, r3.Vec{X: 2.5, Y: 1.5, Z: 0.5}, dp.Flat[len(dp.Flat)-1])
}

func TestDensifyFlatFollowsNodeOrder(t *testing.T) {
	w := floorWorld()
	ns := nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(3, 0, 0), c(3, 0, 3), c(6, 0, 3))
	dp, err := Densify(w, ns, DefaultResampling)
	require.NoError(t, err)
	total := 0
	for i := range ns {
		total += len(dp.Segment(i))
	}
	assert.Equal(t, total, len(dp.Flat))
	assert.Equal(t, ns[1].Position(), dp.Segment(1)[0])
	assert.Equal(t, ns[3].Position(), dp.Flat[len(dp.Flat)-1])
}
