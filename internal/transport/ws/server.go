package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"wanderer.ai/internal/agent"
	"wanderer.ai/internal/follow"
	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/protocol"
	"wanderer.ai/internal/sim/tuning"
	"wanderer.ai/internal/voxel"
)

// Options are shared by every agent session the server starts.
type Options struct {
	Tuning    tuning.Tuning
	Log       zerolog.Logger
	Validator *protocol.Validator
	Index     agent.PlanIndex
	Trace     agent.TraceSink
	Plans     agent.PlanSink

	SearchMetrics *pathing.Metrics
	FollowMetrics *follow.Metrics
}

type Server struct {
	opts   Options
	log    zerolog.Logger
	active atomic.Int64

	upgrader websocket.Upgrader
}

func NewServer(opts Options) *Server {
	return &Server{
		opts: opts,
		log:  opts.Log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Active is the number of connected agent sessions.
func (s *Server) Active() int { return int(s.active.Load()) }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess, maxQ := s.handshake(conn)
		if sess == nil {
			return
		}
		s.active.Add(1)
		defer s.active.Add(-1)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		in := make(chan []byte, maxQ)
		out := make(chan []byte, maxQ)
		runDone := make(chan struct{})
		go func() {
			defer close(runDone)
			defer close(out)
			if err := sess.Run(ctx, in, out); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Str("session_id", sess.ID()).Msg("session ended")
			}
			cancel()
		}()

		// Writer goroutine.
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			_ = pump(ctx, out, func(b []byte, deadline time.Time) error {
				_ = conn.SetWriteDeadline(deadline)
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return err
				}
				return nil
			}, drainWait)
		}()

		// Reader loop.
	read:
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			select {
			case in <- msg:
			case <-ctx.Done():
				break read
			}
		}
		close(in)
		<-runDone
		<-writerDone
		s.log.Info().Str("session_id", sess.ID()).Msg("agent disconnected")
	}
}

const (
	writeWait = 5 * time.Second
	drainWait = time.Second
)

// pump writes frames from out until it is closed. Frames still queued when
// ctx ends are written too, all within drain. After a failed write the rest
// are discarded.
func pump(ctx context.Context, out <-chan []byte, write func(b []byte, deadline time.Time) error, drain time.Duration) error {
	var (
		err     error
		drainBy time.Time
	)
	for b := range out {
		if err != nil {
			continue
		}
		deadline := time.Now().Add(writeWait)
		if ctx.Err() != nil {
			if drainBy.IsZero() {
				drainBy = time.Now().Add(drain)
			}
			if !time.Now().Before(drainBy) {
				err = ctx.Err()
				continue
			}
			if drainBy.Before(deadline) {
				deadline = drainBy
			}
		}
		err = write(b, deadline)
	}
	return err
}

func (s *Server) handshake(conn *websocket.Conn) (*agent.Session, int) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, 0
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return nil, 0
	}
	if base.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return nil, 0
	}
	if s.opts.Validator != nil {
		if err := s.opts.Validator.Validate(protocol.TypeHello, msg); err != nil {
			closeWith(conn, "invalid HELLO")
			return nil, 0
		}
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, 0
	}

	tune := s.opts.Tuning
	strategy := tune.Strategy()
	if hello.Strategy != "" {
		st, err := tune.StrategyNamed(hello.Strategy)
		if err != nil {
			closeWith(conn, "unknown strategy")
			return nil, 0
		}
		strategy = st
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}

	sess := agent.NewSession(agent.Config{
		SessionID:     uuid.NewString(),
		AgentName:     hello.AgentName,
		Tuning:        tune,
		Strategy:      strategy,
		FireImmune:    hello.FireImmune || tune.World.FireImmune,
		Log:           s.opts.Log,
		Validator:     s.opts.Validator,
		Index:         s.opts.Index,
		Trace:         s.opts.Trace,
		Plans:         s.opts.Plans,
		SearchMetrics: s.opts.SearchMetrics,
		FollowMetrics: s.opts.FollowMetrics,
	})

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.ID(),
		AgentName:       hello.AgentName,
		TickRateHz:      tune.TickRateHz,
		Strategy:        strategy.Name,
		World: protocol.WorldParams{
			MinY:      tune.World.MinY,
			Height:    tune.World.Height,
			ChunkSize: voxel.ChunkSize,
		},
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil, 0
	}
	s.log.Info().
		Str("session_id", sess.ID()).
		Str("agent", hello.AgentName).
		Str("strategy", strategy.Name).
		Msg("agent connected")
	return sess, maxQ
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
