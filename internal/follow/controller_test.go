package follow

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/voxel"
)

func newTestController(w pathing.World) *Controller {
	return NewController(w, DefaultParams(), zerolog.Nop(), nil)
}

func TestTickIdleWithoutSessionOrWhenDisabled(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}

	ctl.SetEnabled(true, act)
	rep, err := ctl.Tick(AgentState{}, act)
	require.NoError(t, err)
	assert.False(t, rep.Acted)

	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(5, 0, 0))))
	ctl.SetEnabled(false, act)
	assert.Equal(t, 1, act.stops)
	rep, err = ctl.Tick(AgentState{Pos: r3.Vec{X: 0.5, Z: 0.5}}, act)
	require.NoError(t, err)
	assert.False(t, rep.Acted)
	assert.Zero(t, act.yawSet)
	assert.Equal(t, StateIdle, ctl.State())
	assert.True(t, ctl.HasSession(), "disable keeps the session")
}

func TestAssignMalformedClearsSession(t *testing.T) {
	ctl := newTestController(floorWorld())
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(2, 0, 0))))
	require.True(t, ctl.HasSession())

	err := ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0)))
	assert.ErrorIs(t, err, ErrMalformedPath)
	assert.False(t, ctl.HasSession())
}

func TestAssignResetsIndices(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(5, 0, 0))))
	_, err := ctl.Tick(AgentState{Pos: r3.Vec{X: 0.5, Z: 0.5}}, act)
	require.NoError(t, err)
	require.NotEqual(t, Unset, ctl.Session().NodeIdx)

	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(0, 0, 5))))
	assert.Equal(t, Unset, ctl.Session().NodeIdx)
	assert.Equal(t, Unset, ctl.Session().SampleIdx)
	assert.Equal(t, StateFollowing, ctl.State())
}

func TestTickCompletesNearGoal(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(4, 0, 0))))

	// height differences are damped: 2 blocks up is still within reach
	rep, err := ctl.Tick(AgentState{Pos: r3.Vec{X: 4.5, Y: 2, Z: 0.5}}, act)
	require.NoError(t, err)
	assert.True(t, rep.Completed)
	assert.Equal(t, StateCompleted, ctl.State())
	assert.False(t, ctl.HasSession())
	assert.Equal(t, 1, act.stops)
}

func TestTickFallsBackToFirstNode(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(3, 0, 0))))

	rep, err := ctl.Tick(AgentState{Pos: r3.Vec{X: 12, Z: 12}}, act)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.NodeIdx)
	// the first sample scan has no radius: the closest sample wins
	assert.Equal(t, len(ctl.Session().Dense.Segment(0))-1, rep.SampleIdx)
	assert.True(t, act.forward)
	assert.True(t, act.sprint, "far from the node")
}

func TestTickWalkJumpsOntoStep(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-4, -1, -4), c(8, -1, 4), voxel.Stone)
	s.Fill(c(1, 0, -4), c(8, 0, 4), voxel.Stone)
	ctl := newTestController(s)
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(1, 1, 0), c(2, 1, 0))))

	rep, err := ctl.Tick(AgentState{Pos: r3.Vec{X: 1.2, Y: 0, Z: 0.5}, Yaw: -90, OnGround: true}, act)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.NodeIdx)
	assert.True(t, act.jump)
	assert.False(t, act.sprint)

	rep, err = ctl.Tick(AgentState{Pos: r3.Vec{X: 1.2, Y: 0, Z: 0.5}, Yaw: -90, OnGround: false}, act)
	require.NoError(t, err)
	assert.False(t, act.jump, "no jump while airborne")
	assert.Zero(t, act.pitchSet, "walking never sets pitch")
	assert.Equal(t, 1, rep.NodeIdx)
}

func TestTickSwimAlwaysSprints(t *testing.T) {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-4, -3, -4), c(8, -3, 4), voxel.Stone)
	s.Fill(c(-4, -2, -4), c(8, 1, 4), voxel.Water)
	ctl := newTestController(s)
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreSwim, c(0, -1, 0), c(6, -1, 0))))

	rep, err := ctl.Tick(AgentState{Pos: r3.Vec{X: 0.5, Y: -1, Z: 0.5}, Yaw: -90}, act)
	require.NoError(t, err)
	assert.Equal(t, pathing.ManoeuvreSwim, rep.Manoeuvre)
	assert.True(t, act.sprint)
	assert.True(t, act.forward)
	assert.Equal(t, 1, act.pitchSet)
	assert.False(t, act.jump, "target is below the eyes")
	assert.Greater(t, act.pitch, 0.0, "looking down toward the target")
}

func TestTickUnsupportedManoeuvreIsFatal(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	require.NoError(t, ctl.Assign(nodes(pathing.ManoeuvreClimb, c(0, 0, 0), c(4, 0, 0))))

	_, err := ctl.Tick(AgentState{Pos: r3.Vec{X: 0.5, Z: 0.5}}, act)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedManoeuvre))
	var ume *UnsupportedManoeuvreError
	require.True(t, errors.As(err, &ume))
	assert.Equal(t, pathing.ManoeuvreClimb, ume.Manoeuvre)
	assert.Equal(t, 0, ume.NodeIdx)
	assert.Equal(t, 1, act.stops)
	assert.False(t, ctl.HasSession())
	assert.False(t, act.forward)
}

func TestHeadingKeepsCourse(t *testing.T) {
	agent := AgentState{Pos: r3.Vec{X: 0.5, Z: 0.5}, Yaw: -90}
	h := headingTo(agent, r3.Vec{X: 10.5, Y: 1.62, Z: 0.5}, 1.62, 0.5)
	assert.InDelta(t, -90, h.Yaw, 1e-9)
	assert.InDelta(t, 0, h.Pitch, 1e-9)

	// facing +X, target along +Z: the blend turns halfway
	h = headingTo(agent, r3.Vec{X: 0.5, Y: 1.62, Z: 10.5}, 1.62, 0.5)
	assert.InDelta(t, -45, h.Yaw, 1e-9)
}

func TestFollowIndicesMonotone(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}
	ctl.SetEnabled(true, act)
	ns := nodes(pathing.ManoeuvreWalk, c(0, 0, 0), c(3, 0, 0), c(3, 0, 3), c(6, 0, 3))
	require.NoError(t, ctl.Assign(ns))
	flat := append([]r3.Vec(nil), ctl.Session().Dense.Flat...)

	lastNode, lastSample := Unset, Unset
	completed := false
	for _, p := range flat {
		rep, err := ctl.Tick(AgentState{Pos: p, Yaw: -90, OnGround: true}, act)
		require.NoError(t, err)
		if rep.Completed {
			completed = true
			break
		}
		require.True(t, rep.NodeIdx > lastNode || (rep.NodeIdx == lastNode && rep.SampleIdx >= lastSample),
			"indices went back: (%d,%d) after (%d,%d)", rep.NodeIdx, rep.SampleIdx, lastNode, lastSample)
		lastNode, lastSample = rep.NodeIdx, rep.SampleIdx
	}
	assert.True(t, completed)
	assert.Equal(t, StateCompleted, ctl.State())
}

func TestToggle(t *testing.T) {
	ctl := newTestController(floorWorld())
	act := &fakeActuator{}
	assert.True(t, ctl.Toggle(act))
	assert.False(t, ctl.Toggle(act))
	assert.Equal(t, 1, act.stops)
}
