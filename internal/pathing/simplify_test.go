package pathing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderer.ai/internal/voxel"
)

func TestSimplifyBridgePasses(t *testing.T) {
	w := bridgeWorld()
	path := walkPath(c(0, 0, 0), c(1, 0, 0), c(2, 0, 0), c(3, 0, 0), c(4, 0, 0), c(5, 0, 0))

	wantPasses := [][]voxel.Coord{
		{c(0, 0, 0), c(2, 0, 0), c(3, 0, 0), c(5, 0, 0)},
		{c(0, 0, 0), c(3, 0, 0), c(5, 0, 0)},
		{c(0, 0, 0), c(5, 0, 0)},
	}
	cur := path
	for i, want := range wantPasses {
		next, removed := simplifyPass(w, cur)
		require.True(t, removed, "pass %d", i)
		if diff := cmp.Diff(want, Path(next).Coords()); diff != "" {
			t.Fatalf("pass %d (-want +got):\n%s", i, diff)
		}
		cur = next
	}
	_, removed := simplifyPass(w, cur)
	assert.False(t, removed)

	got := Simplify(w, path)
	assert.Equal(t, wantPasses[2], Path(got).Coords())
	assert.Len(t, path, 6, "input untouched")
	assert.Equal(t, c(1, 0, 0), path[1].Pos)
}

func TestSimplifyIdempotentAndKeepsEndpoints(t *testing.T) {
	w := wallWorld()
	for _, st := range strategies {
		raw, _, err := Search(w, NewNode(c(0, 0, 0), ManoeuvreWalk), NewGoal(c(8, 0, 0)), st)
		require.NoError(t, err)
		once := Simplify(w, raw)
		twice := Simplify(w, once)
		assert.Equal(t, Path(once).Coords(), Path(twice).Coords(), st.Name)
		assert.Equal(t, raw[0].Pos, once[0].Pos)
		assert.Equal(t, raw[len(raw)-1].Pos, once[len(once)-1].Pos)
		assert.LessOrEqual(t, len(once), len(raw))
	}
}

func TestSimplifyRespectsCorners(t *testing.T) {
	w := wallWorld()
	// an L through the gap: the shortcut would cut through the wall
	path := walkPath(c(3, 0, 0), c(3, 0, 3), c(5, 0, 3))
	got := Simplify(w, path)
	assert.Len(t, got, 3)
}

func TestSimplifyNeedsFloor(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(0, -1, 0), c(2, -1, 0), voxel.Stone)
	s.Fill(c(0, -1, 1), c(0, -1, 2), voxel.Stone)
	s.Fill(c(1, -1, 2), c(2, -1, 2), voxel.Stone)
	// U shape with a hole at (1,-1,1): diagonal shortcut would walk over air
	path := walkPath(c(0, 0, 0), c(0, 0, 2), c(2, 0, 2))
	assert.Len(t, Simplify(s, path), 3)
}

func TestSimplifyMixedManoeuvres(t *testing.T) {
	w := bridgeWorld()
	path := walkPath(c(0, 0, 0), c(1, 0, 0), c(2, 0, 0))
	path[1].Manoeuvre = ManoeuvreSwim
	assert.Len(t, Simplify(w, path), 3)

	fall := walkPath(c(0, 0, 0), c(1, 0, 0), c(2, 0, 0))
	for i := range fall {
		fall[i].Manoeuvre = ManoeuvreBreak
	}
	assert.Len(t, Simplify(w, fall), 3, "break runs are kept as is")
}

func TestSimplifyShortPaths(t *testing.T) {
	w := bridgeWorld()
	assert.Empty(t, Simplify(w, nil))
	two := walkPath(c(0, 0, 0), c(1, 0, 0))
	assert.Len(t, Simplify(w, two), 2)
}
