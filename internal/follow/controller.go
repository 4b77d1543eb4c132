package follow

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/geom"
	"wanderer.ai/internal/pathing"
)

var ErrUnsupportedManoeuvre = errors.New("follow: unsupported manoeuvre")

// UnsupportedManoeuvreError is returned by Tick when the selected node uses
// a manoeuvre without a control law.
type UnsupportedManoeuvreError struct {
	Manoeuvre pathing.Manoeuvre
	NodeIdx   int
}

func (e *UnsupportedManoeuvreError) Error() string {
	return fmt.Sprintf("follow: unsupported manoeuvre %s at node %d", e.Manoeuvre, e.NodeIdx)
}

func (e *UnsupportedManoeuvreError) Unwrap() error { return ErrUnsupportedManoeuvre }

// AgentState is the agent as observed at the start of a tick. Yaw and pitch
// are in degrees.
type AgentState struct {
	Pos      r3.Vec
	Vel      r3.Vec
	Yaw      float64
	Pitch    float64
	OnGround bool
}

// Actuator receives the controller's commands.
type Actuator interface {
	SetForward(bool)
	SetJump(bool)
	SetSprint(bool)
	SetYaw(float64)
	SetPitch(float64)
	// StopAll releases forward, back, left, right, jump and sprint.
	StopAll()
}

type State int

const (
	StateIdle State = iota
	StateFollowing
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateFollowing:
		return "FOLLOWING"
	case StateCompleted:
		return "COMPLETED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Params struct {
	EyeHeight float64
	// Alpha is the EMA weight of the fresh heading.
	Alpha        float64
	HeightWeight float64

	CompletionRadius  float64
	InitialNodeRadius float64
	AdvanceFactor     float64
	SprintDistance    float64
	JumpThreshold     float64

	Resampling float64
}

func DefaultParams() Params {
	return Params{
		EyeHeight:         1.62,
		Alpha:             0.5,
		HeightWeight:      0.2,
		CompletionRadius:  1.0,
		InitialNodeRadius: 4.0,
		AdvanceFactor:     1.2,
		SprintDistance:    1.0,
		JumpThreshold:     0.3,
		Resampling:        DefaultResampling,
	}
}

// Report describes what one tick did.
type Report struct {
	State     State
	Acted     bool
	Completed bool

	NodeIdx   int
	SampleIdx int
	Manoeuvre pathing.Manoeuvre
	Target    r3.Vec
	Heading   Heading
	Sprint    bool
	Jump      bool
}

// Controller steers an agent along an assigned path, one tick at a time.
// It is not safe for concurrent use.
type Controller struct {
	world   pathing.World
	params  Params
	log     zerolog.Logger
	metrics *Metrics

	enabled bool
	state   State
	session *Session
}

func NewController(w pathing.World, p Params, log zerolog.Logger, m *Metrics) *Controller {
	return &Controller{world: w, params: p, log: log, metrics: m}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Enabled() bool { return c.enabled }

func (c *Controller) Session() *Session { return c.session }

func (c *Controller) HasSession() bool { return c.session != nil }

// Assign densifies nodes and replaces the current session. With fewer than
// two nodes the session is cleared and ErrMalformedPath returned.
func (c *Controller) Assign(nodes []pathing.Node) error {
	dense, err := Densify(c.world, nodes, c.params.Resampling)
	if err != nil {
		c.session = nil
		c.state = StateIdle
		return err
	}
	c.session = newSession(dense)
	c.state = StateIdle
	if c.enabled {
		c.state = StateFollowing
	}
	c.log.Debug().
		Int("nodes", len(dense.Nodes)).
		Int("samples", len(dense.Flat)).
		Msg("path assigned")
	return nil
}

// SetEnabled switches execution on or off. Disabling releases all inputs and
// keeps the session so it can be resumed.
func (c *Controller) SetEnabled(enabled bool, act Actuator) {
	c.enabled = enabled
	if !enabled {
		if act != nil {
			act.StopAll()
		}
		c.state = StateIdle
		return
	}
	if c.session != nil {
		c.state = StateFollowing
	}
}

func (c *Controller) Toggle(act Actuator) bool {
	c.SetEnabled(!c.enabled, act)
	return c.enabled
}

// Clear drops the session and releases all inputs.
func (c *Controller) Clear(act Actuator) {
	if act != nil {
		act.StopAll()
	}
	c.session = nil
	c.state = StateIdle
}

// Tick runs one control step. It is a no-op while disabled or without a
// session.
func (c *Controller) Tick(agent AgentState, act Actuator) (Report, error) {
	if !c.enabled || c.session == nil {
		return Report{State: c.state, NodeIdx: Unset, SampleIdx: Unset}, nil
	}
	s := c.session
	p := c.params

	final := s.Final().Position()
	if geom.WeightedDistance(final, agent.Pos, p.HeightWeight) <= p.CompletionRadius {
		act.StopAll()
		c.session = nil
		c.state = StateCompleted
		c.metrics.completed(context.Background())
		c.log.Info().Int("nodes", len(s.Dense.Nodes)).Msg("path completed")
		return Report{State: c.state, Completed: true, NodeIdx: s.NodeIdx, SampleIdx: s.SampleIdx}, nil
	}

	c.selectNode(s, agent.Pos)
	c.selectSample(s, agent.Pos)

	node := s.Node()
	target := s.Target()
	h := headingTo(agent, target, p.EyeHeight, p.Alpha)
	rep := Report{
		State:     c.state,
		Acted:     true,
		NodeIdx:   s.NodeIdx,
		SampleIdx: s.SampleIdx,
		Manoeuvre: node.Manoeuvre,
		Target:    target,
		Heading:   h,
	}

	switch node.Manoeuvre {
	case pathing.ManoeuvreWalk:
		rep.Sprint = geom.WeightedDistance(node.Position(), agent.Pos, p.HeightWeight) > p.SprintDistance
		rep.Jump = agent.OnGround && target.Y-agent.Pos.Y > p.JumpThreshold
		act.SetYaw(h.Yaw)
		act.SetForward(true)
		act.SetSprint(rep.Sprint)
		act.SetJump(rep.Jump)
	case pathing.ManoeuvreSwim:
		rep.Sprint = true
		rep.Jump = h.Delta.Y > p.JumpThreshold
		act.SetYaw(h.Yaw)
		act.SetPitch(h.Pitch)
		act.SetForward(true)
		act.SetSprint(true)
		act.SetJump(rep.Jump)
	default:
		// None, Fall, Break, Climb and Parkour have no control law yet.
		return c.fail(act, rep, node.Manoeuvre, s.NodeIdx)
	}
	return rep, nil
}

func (c *Controller) fail(act Actuator, rep Report, m pathing.Manoeuvre, idx int) (Report, error) {
	act.StopAll()
	c.session = nil
	c.state = StateIdle
	c.metrics.failed(context.Background(), m)
	rep.State = c.state
	rep.Acted = false
	return rep, &UnsupportedManoeuvreError{Manoeuvre: m, NodeIdx: idx}
}

// selectNode advances to the closest later node within the hysteresis
// radius. The first scan uses a wide radius and falls back to node 0.
func (c *Controller) selectNode(s *Session, pos r3.Vec) {
	p := c.params
	nodes := s.Dense.Nodes
	limit := 1.0
	switch {
	case s.NodeIdx == Unset:
		limit = p.InitialNodeRadius
	case s.NodeIdx+1 < len(nodes):
		limit = p.AdvanceFactor * r3.Norm(r3.Sub(nodes[s.NodeIdx].Position(), nodes[s.NodeIdx+1].Position()))
	}
	for i := s.NodeIdx + 1; i < len(nodes); i++ {
		d := geom.WeightedDistance(nodes[i].Position(), pos, p.HeightWeight)
		if d < limit {
			s.NodeIdx = i
			s.SampleIdx = Unset
			limit = d
		}
	}
	if s.NodeIdx == Unset {
		s.NodeIdx = 0
		s.SampleIdx = Unset
	}
}

func (c *Controller) selectSample(s *Session, pos r3.Vec) {
	p := c.params
	seg := s.Dense.Segment(s.NodeIdx)
	limit := 1.0
	switch {
	case s.SampleIdx == Unset:
		limit = math.Inf(1)
	case s.SampleIdx+1 < len(seg):
		limit = p.AdvanceFactor * r3.Norm(r3.Sub(seg[s.SampleIdx], seg[s.SampleIdx+1]))
	}
	for i := s.SampleIdx + 1; i < len(seg); i++ {
		d := geom.WeightedDistance(seg[i], pos, p.HeightWeight)
		if d < limit {
			s.SampleIdx = i
			limit = d
		}
	}
	if s.SampleIdx == Unset {
		s.SampleIdx = 0
	}
}
