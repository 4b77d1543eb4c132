// Package agent runs one connected agent: it mirrors the agent's loaded
// chunks, plans on PATH_TO, and steers the agent on every observation.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/follow"
	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/persistence/indexdb"
	tracelog "wanderer.ai/internal/persistence/log"
	"wanderer.ai/internal/protocol"
	"wanderer.ai/internal/sim/tuning"
	"wanderer.ai/internal/voxel"
)

// PlanIndex receives plan and follow outcomes. *indexdb.SQLiteIndex
// implements it.
type PlanIndex interface {
	RecordPlan(indexdb.PlanRecord)
	RecordFollow(indexdb.FollowRecord)
}

type TraceSink interface {
	WriteTrace(tracelog.TraceEntry) error
}

type PlanSink interface {
	WritePlan(tracelog.PlanEntry) error
}

type Config struct {
	SessionID  string
	AgentName  string
	Tuning     tuning.Tuning
	Strategy   pathing.Strategy
	FireImmune bool

	Log       zerolog.Logger
	Validator *protocol.Validator
	Index     PlanIndex
	Trace     TraceSink
	Plans     PlanSink

	SearchMetrics *pathing.Metrics
	FollowMetrics *follow.Metrics
}

// Session is owned by a single goroutine; nothing in it is locked.
type Session struct {
	cfg   Config
	log   zerolog.Logger
	store *voxel.Store
	ctrl  *follow.Controller
	act   *wireActuator

	tick    uint64
	agent   follow.AgentState
	haveObs bool

	planID    string
	planTicks int
}

func NewSession(cfg Config) *Session {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy = cfg.Tuning.Strategy()
	}
	store := voxel.NewStore(cfg.Tuning.World.MinY, cfg.Tuning.World.Height)
	store.SetFireImmune(cfg.FireImmune)
	log := cfg.Log.With().Str("session_id", cfg.SessionID).Str("agent", cfg.AgentName).Logger()
	return &Session{
		cfg:   cfg,
		log:   log,
		store: store,
		ctrl:  follow.NewController(store, cfg.Tuning.FollowParams(), log, cfg.FollowMetrics),
		act:   &wireActuator{},
	}
}

func (s *Session) ID() string { return s.cfg.SessionID }

func (s *Session) Store() *voxel.Store { return s.store }

func (s *Session) Controller() *follow.Controller { return s.ctrl }

// Run handles frames from in until it is closed or ctx is done. Every reply
// is written to out in order.
func (s *Session) Run(ctx context.Context, in <-chan []byte, out chan<- []byte) error {
	defer s.abandon("disconnected")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-in:
			if !ok {
				return nil
			}
			for _, m := range s.Handle(raw) {
				b, err := json.Marshal(m)
				if err != nil {
					return fmt.Errorf("encode %T: %w", m, err)
				}
				select {
				case out <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// Handle processes one inbound frame and returns the replies.
func (s *Session) Handle(raw []byte) []any {
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		return s.reject(protocol.ErrProtoBadRequest, "invalid json")
	}
	if s.cfg.Validator != nil {
		if err := s.cfg.Validator.Validate(base.Type, raw); err != nil {
			return s.reject(protocol.ErrProtoBadRequest, err.Error())
		}
	}
	switch base.Type {
	case protocol.TypeChunk:
		var m protocol.ChunkMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return s.reject(protocol.ErrProtoBadRequest, "bad CHUNK")
		}
		return s.handleChunk(m)
	case protocol.TypeObs:
		var m protocol.ObsMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return s.reject(protocol.ErrProtoBadRequest, "bad OBS")
		}
		return s.handleObs(m)
	case protocol.TypeCmd:
		var m protocol.CmdMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return s.reject(protocol.ErrProtoBadRequest, "bad CMD")
		}
		switch m.Cmd {
		case protocol.CmdPathTo:
			return s.handlePathTo(m)
		case protocol.CmdToggle:
			return s.handleToggle(m)
		}
		return s.reject(protocol.ErrBadRequest, "unknown cmd "+m.Cmd)
	}
	return s.reject(protocol.ErrProtoBadRequest, "unexpected message type "+base.Type)
}

func (s *Session) handleChunk(m protocol.ChunkMsg) []any {
	if m.Unload {
		s.store.UnloadChunk(m.CX, m.CZ)
		return nil
	}
	if m.MinY != s.store.MinY || m.Height != s.store.Height {
		return s.reject(protocol.ErrBadRequest, fmt.Sprintf("chunk height range [%d,+%d) does not match world [%d,+%d)", m.MinY, m.Height, s.store.MinY, s.store.Height))
	}
	if m.Encoding != protocol.EncodingZstdB64 {
		return s.reject(protocol.ErrBadRequest, "unsupported chunk encoding "+m.Encoding)
	}
	blocks, err := protocol.DecodeBlocks(m.Data, voxel.ChunkSize*voxel.ChunkSize*s.store.Height)
	if err != nil {
		return s.reject(protocol.ErrBadRequest, fmt.Sprintf("chunk %d,%d: %v", m.CX, m.CZ, err))
	}
	if err := s.store.LoadChunk(m.CX, m.CZ, blocks); err != nil {
		return s.reject(protocol.ErrBadRequest, err.Error())
	}
	s.log.Trace().Int("cx", m.CX).Int("cz", m.CZ).Msg("chunk loaded")
	return nil
}

func (s *Session) handleObs(m protocol.ObsMsg) []any {
	s.tick = m.Tick
	for _, d := range m.Blocks {
		s.store.SetBlock(voxel.Coord{X: d.Pos[0], Y: d.Pos[1], Z: d.Pos[2]}, voxel.Block(d.Block))
	}
	s.agent = follow.AgentState{
		Pos:      r3.Vec{X: m.Pos[0], Y: m.Pos[1], Z: m.Pos[2]},
		Vel:      r3.Vec{X: m.Vel[0], Y: m.Vel[1], Z: m.Vel[2]},
		Yaw:      m.Yaw,
		Pitch:    m.Pitch,
		OnGround: m.OnGround,
	}
	s.haveObs = true

	s.act.hold(m.Yaw, m.Pitch)
	rep, err := s.ctrl.Tick(s.agent, s.act)
	var out []any
	switch {
	case err != nil:
		var um *follow.UnsupportedManoeuvreError
		code := protocol.ErrInternal
		if errors.As(err, &um) {
			code = protocol.ErrUnsupported
		}
		s.log.Error().Err(err).Str("plan_id", s.planID).Msg("path following aborted")
		s.trace(rep, err)
		s.finish("failed", code)
		out = append(out, s.event(protocol.EventFollowFail, code, err.Error()))
	case rep.Completed:
		s.trace(rep, nil)
		s.finish("done", "")
		out = append(out, s.event(protocol.EventFollowDone, "", "destination reached"))
	case rep.Acted:
		s.planTicks++
		s.trace(rep, nil)
	}
	return append([]any{s.act.frame(s.tick)}, out...)
}

func (s *Session) handlePathTo(m protocol.CmdMsg) []any {
	if m.Target == nil {
		return s.reject(protocol.ErrBadRequest, "PATH_TO needs a target")
	}
	if !s.haveObs {
		return s.reject(protocol.ErrBadRequest, "no observation yet")
	}
	strategy := s.cfg.Strategy
	if m.Strategy != "" {
		st, err := s.cfg.Tuning.StrategyNamed(m.Strategy)
		if err != nil {
			return s.reject(protocol.ErrBadRequest, err.Error())
		}
		strategy = st
	}
	startPos := voxel.Floor(s.agent.Pos)
	goalPos := voxel.Coord{X: m.Target[0], Y: m.Target[1], Z: m.Target[2]}
	if !pathing.KeyInRange(startPos) || !pathing.KeyInRange(goalPos) {
		return s.reject(protocol.ErrBadRequest, "coordinates outside the packable range")
	}

	raw, st, err := pathing.Search(s.store, pathing.NewNode(startPos, pathing.ManoeuvreWalk), pathing.NewGoal(goalPos), strategy)
	s.cfg.SearchMetrics.Record(context.Background(), st, err)

	rec := indexdb.PlanRecord{
		ID:        uuid.NewString(),
		SessionID: s.cfg.SessionID,
		Agent:     s.cfg.AgentName,
		Strategy:  strategy.Name,
		Start:     [3]int{startPos.X, startPos.Y, startPos.Z},
		Goal:      *m.Target,
		Outcome:   pathing.Outcome(err),
		RawNodes:  len(raw),
		Expanded:  st.Expanded,
		Relaxed:   st.Relaxed,
		LazyHits:  st.LazyHits,
		Duration:  st.Duration,
		CreatedAt: time.Now(),
	}
	logEv := s.log.Info().
		Str("plan_id", rec.ID).
		Str("strategy", strategy.Name).
		Int("expanded", st.Expanded).
		Dur("took", st.Duration)

	if err != nil {
		s.recordPlan(rec)
		logEv.Err(err).Msg("no path")
		code := protocol.ErrUnreachable
		if errors.Is(err, pathing.ErrExpansionLimit) {
			code = protocol.ErrSearchLimit
		}
		ev := s.event(protocol.EventPathUnreachable, code, "target unreachable")
		ev.CmdID = m.ID
		ev.PlanID = rec.ID
		ev.Expanded = st.Expanded
		return []any{ev}
	}

	nodes := pathing.Simplify(s.store, raw)
	rec.Nodes = len(nodes)

	s.abandon("replaced")
	if err := s.ctrl.Assign(nodes); err != nil {
		rec.Outcome = "malformed"
		s.recordPlan(rec)
		logEv.Err(err).Msg("path not prepared")
		s.act.StopAll()
		ev := s.event(protocol.EventError, protocol.ErrMalformedPath, err.Error())
		ev.CmdID = m.ID
		ev.PlanID = rec.ID
		return []any{ev, s.act.frame(s.tick)}
	}
	rec.Samples = len(s.ctrl.Session().Dense.Flat)
	s.recordPlan(rec)
	s.planID = rec.ID
	s.planTicks = 0
	logEv.Int("raw_nodes", rec.RawNodes).Int("nodes", rec.Nodes).Msg("path ready")

	if s.cfg.Plans != nil {
		if err := s.cfg.Plans.WritePlan(tracelog.PlanEntry{
			PlanID:    rec.ID,
			SessionID: s.cfg.SessionID,
			Strategy:  strategy.Name,
			Raw:       coords(raw),
			Nodes:     coords(nodes),
		}); err != nil {
			s.log.Warn().Err(err).Msg("plan log write failed")
		}
	}

	ev := s.event(protocol.EventPathReady, "", "")
	ev.CmdID = m.ID
	ev.PlanID = rec.ID
	ev.RawNodes = rec.RawNodes
	ev.Nodes = rec.Nodes
	ev.Samples = rec.Samples
	ev.Expanded = st.Expanded
	ev.Path = coords(nodes)
	return []any{ev}
}

func (s *Session) handleToggle(m protocol.CmdMsg) []any {
	enabled := s.ctrl.Toggle(s.act)
	if enabled {
		s.log.Info().Msg("path execution enabled")
	} else {
		s.log.Info().Msg("path execution disabled")
	}
	ev := s.event(protocol.EventExecution, "", "")
	ev.CmdID = m.ID
	ev.Enabled = &enabled
	if !enabled {
		s.act.hold(s.agent.Yaw, s.agent.Pitch)
		return []any{ev, s.act.frame(s.tick)}
	}
	return []any{ev}
}

// abandon closes the active plan's follow record without touching the
// controller.
func (s *Session) abandon(reason string) {
	if s.planID == "" {
		return
	}
	s.finish(reason, "")
}

func (s *Session) finish(outcome, code string) {
	if s.planID != "" && s.cfg.Index != nil {
		s.cfg.Index.RecordFollow(indexdb.FollowRecord{
			PlanID:    s.planID,
			SessionID: s.cfg.SessionID,
			Outcome:   outcome,
			Code:      code,
			Ticks:     s.planTicks,
		})
	}
	s.planID = ""
	s.planTicks = 0
}

func (s *Session) recordPlan(rec indexdb.PlanRecord) {
	if s.cfg.Index != nil {
		s.cfg.Index.RecordPlan(rec)
	}
}

func (s *Session) trace(rep follow.Report, err error) {
	if s.cfg.Trace == nil {
		return
	}
	e := tracelog.TraceEntry{
		Tick:      s.tick,
		SessionID: s.cfg.SessionID,
		PlanID:    s.planID,
		State:     rep.State.String(),
		NodeIdx:   rep.NodeIdx,
		SampleIdx: rep.SampleIdx,
		Pos:       [3]float64{s.agent.Pos.X, s.agent.Pos.Y, s.agent.Pos.Z},
		Target:    [3]float64{rep.Target.X, rep.Target.Y, rep.Target.Z},
		Yaw:       s.act.yaw,
		Pitch:     s.act.pitch,
		Forward:   s.act.forward,
		Jump:      s.act.jump,
		Sprint:    s.act.sprint,
	}
	if rep.Acted || err != nil {
		e.Manoeuvre = rep.Manoeuvre.String()
	}
	if err != nil {
		e.Err = err.Error()
	}
	if werr := s.cfg.Trace.WriteTrace(e); werr != nil {
		s.log.Warn().Err(werr).Msg("trace write failed")
	}
}

func (s *Session) event(kind, code, msg string) protocol.EventMsg {
	return protocol.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: protocol.Version,
		Tick:            s.tick,
		Kind:            kind,
		Code:            code,
		Message:         msg,
	}
}

func (s *Session) reject(code, msg string) []any {
	s.log.Debug().Str("code", code).Msg(msg)
	return []any{s.event(protocol.EventError, code, msg)}
}

func coords(nodes []pathing.Node) [][3]int {
	out := make([][3]int, len(nodes))
	for i, n := range nodes {
		out[i] = [3]int{n.Pos.X, n.Pos.Y, n.Pos.Z}
	}
	return out
}
