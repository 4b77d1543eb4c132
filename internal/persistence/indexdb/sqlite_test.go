package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderer.ai/internal/sim/tuning"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqPlan, plan: PlanRecord{ID: "p0"}}

	s.RecordPlan(PlanRecord{ID: "p1"})
	s.RecordFollow(FollowRecord{PlanID: "p1", Outcome: "done"})
	s.RecordFollow(FollowRecord{Outcome: "done"})

	st := s.Stats()
	if st.DropPlanTotal != 1 {
		t.Fatalf("DropPlanTotal=%d want=1", st.DropPlanTotal)
	}
	if st.DropFollowTotal != 1 {
		t.Fatalf("DropFollowTotal=%d want=1", st.DropFollowTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_NilIsNoop(t *testing.T) {
	var s *SQLiteIndex
	s.RecordPlan(PlanRecord{ID: "p"})
	s.RecordFollow(FollowRecord{PlanID: "p"})
	assert.NoError(t, s.UpsertTuning(tuning.Defaults()))
	assert.Equal(t, Stats{}, s.Stats())
}

func TestSQLiteIndex_RecentPlans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "plans.sqlite")
	idx, err := OpenSQLite(path)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx.RecordPlan(PlanRecord{
		ID: "a", SessionID: "s1", Agent: "scout", Strategy: "lazy",
		Start: [3]int{0, 64, 0}, Goal: [3]int{5, 64, 0},
		Outcome: "found", RawNodes: 6, Nodes: 2, Samples: 16, Expanded: 7,
		Duration: 1500 * time.Microsecond, CreatedAt: base,
	})
	idx.RecordPlan(PlanRecord{
		ID: "b", SessionID: "s1", Agent: "scout", Strategy: "full",
		Start: [3]int{0, 64, 0}, Goal: [3]int{2, 70, 2},
		Outcome: "exhausted", CreatedAt: base.Add(time.Second),
	})
	idx.RecordFollow(FollowRecord{PlanID: "a", SessionID: "s1", Outcome: "done", Ticks: 40, EndedAt: base.Add(2 * time.Second)})
	require.NoError(t, idx.Close())

	idx, err = OpenSQLite(path)
	require.NoError(t, err)
	defer idx.Close()
	require.NoError(t, idx.UpsertTuning(tuning.Defaults()))

	got, err := idx.RecentPlans(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].Plan.ID)
	assert.Equal(t, "exhausted", got[0].Plan.Outcome)
	assert.Equal(t, "", got[0].FollowOutcome)

	a := got[1]
	assert.Equal(t, "a", a.Plan.ID)
	assert.Equal(t, [3]int{5, 64, 0}, a.Plan.Goal)
	assert.Equal(t, 6, a.Plan.RawNodes)
	assert.Equal(t, 2, a.Plan.Nodes)
	assert.Equal(t, 1500*time.Microsecond, a.Plan.Duration)
	assert.True(t, a.Plan.CreatedAt.Equal(base))
	assert.Equal(t, "done", a.FollowOutcome)
	assert.Equal(t, 40, a.FollowTicks)

	var digest string
	err = idx.db.QueryRow(`SELECT value FROM meta WHERE key='tuning_digest'`).Scan(&digest)
	require.NoError(t, err)
	assert.Len(t, digest, 64)
}

func TestSQLiteIndex_IdleRowsBecomeVisible(t *testing.T) {
	idx, err := openSQLite(filepath.Join(t.TempDir(), "plans.sqlite"), 20*time.Millisecond)
	require.NoError(t, err)
	defer idx.Close()

	idx.RecordPlan(PlanRecord{ID: "idle", SessionID: "s1", Outcome: "found", CreatedAt: time.Now()})
	idx.RecordFollow(FollowRecord{PlanID: "idle", SessionID: "s1", Outcome: "done", Ticks: 3, EndedAt: time.Now()})

	require.Eventually(t, func() bool {
		got, err := idx.RecentPlans(context.Background(), 10)
		return err == nil && len(got) == 1 && got[0].FollowOutcome == "done"
	}, 5*time.Second, 10*time.Millisecond, "rows stayed uncommitted without further writes")
}
