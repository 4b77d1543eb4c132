package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/logging"
	"wanderer.ai/internal/persistence/snapshot"
	"wanderer.ai/internal/protocol"
	"wanderer.ai/internal/sim/body"
	"wanderer.ai/internal/voxel"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "agent name")
		snapPath = flag.String("snapshot", "", "world snapshot the bot walks in")
		target   = flag.String("to", "", "PATH_TO target x,y,z")
		strategy = flag.String("strategy", "", "full or lazy (default: server's)")
		maxTicks = flag.Int("max_ticks", 2400, "give up after this many ticks")
		level    = flag.String("log_level", "info", "log level")
	)
	flag.Parse()

	log := logging.New(logging.Config{Level: *level, Format: "console", Component: "bot"})
	if *snapPath == "" || *target == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot or -to")
		os.Exit(2)
	}
	goal, err := parseTarget(*target)
	if err != nil {
		log.Fatal().Err(err).Msg("-to")
	}
	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read snapshot")
	}
	world, err := voxel.ImportWorld(snap)
	if err != nil {
		log.Fatal().Err(err).Msg("import snapshot")
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("dial")
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       *name,
		FireImmune:      snap.FireImmune,
		Strategy:        *strategy,
		MaxQueue:        16,
	}
	if err := conn.WriteJSON(hello); err != nil {
		log.Fatal().Err(err).Msg("send HELLO")
	}
	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil {
		log.Fatal().Err(err).Msg("read WELCOME")
	}
	if welcome.World.MinY != snap.MinY || welcome.World.Height != snap.Height {
		log.Fatal().
			Int("server_min_y", welcome.World.MinY).Int("server_height", welcome.World.Height).
			Int("snap_min_y", snap.MinY).Int("snap_height", snap.Height).
			Msg("world height range mismatch")
	}
	log.Info().Str("session_id", welcome.SessionID).Str("strategy", welcome.Strategy).Msg("connected")

	for _, ch := range snap.Chunks {
		msg := protocol.ChunkMsg{
			Type:            protocol.TypeChunk,
			ProtocolVersion: protocol.Version,
			CX:              ch.CX,
			CZ:              ch.CZ,
			MinY:            snap.MinY,
			Height:          snap.Height,
			Encoding:        protocol.EncodingZstdB64,
			Data:            protocol.EncodeBlocks(ch.Blocks),
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Fatal().Err(err).Msg("send CHUNK")
		}
	}

	spawn := r3.Vec{X: float64(snap.Spawn[0]) + 0.5, Y: float64(snap.Spawn[1]), Z: float64(snap.Spawn[2]) + 0.5}
	b := body.New(world, body.DefaultParams(), spawn, 0)

	frames := make(chan []byte, 64)
	go func() {
		defer close(frames)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- msg
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	r := &runner{log: log, conn: conn, body: b, frames: frames}
	if err := r.tick(0); err != nil {
		log.Fatal().Err(err).Msg("first tick")
	}
	tgt := [3]int{goal.X, goal.Y, goal.Z}
	if err := r.send(protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "path", Cmd: protocol.CmdPathTo, Target: &tgt}); err != nil {
		log.Fatal().Err(err).Msg("send PATH_TO")
	}
	if err := r.send(protocol.CmdMsg{Type: protocol.TypeCmd, ProtocolVersion: protocol.Version, ID: "go", Cmd: protocol.CmdToggle}); err != nil {
		log.Fatal().Err(err).Msg("send TOGGLE")
	}

	interval := time.Second / time.Duration(max(welcome.TickRateHz, 1))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for tick := uint64(1); tick <= uint64(*maxTicks); tick++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if err := r.tick(tick); err != nil {
			log.Error().Err(err).Msg("tick")
			os.Exit(1)
		}
		if r.finished {
			break
		}
	}
	if !r.done {
		log.Error().Str("pos", fmt.Sprint(b.Pos)).Msg("did not arrive")
		os.Exit(1)
	}
	log.Info().Str("pos", fmt.Sprint(b.Pos)).Msg("arrived")
}

type runner struct {
	log    zerolog.Logger
	conn   *websocket.Conn
	body   *body.Body
	frames <-chan []byte

	done     bool
	finished bool
}

func (r *runner) send(v any) error {
	_ = r.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return r.conn.WriteJSON(v)
}

// tick sends one OBS, applies the matching INPUT and steps the body.
func (r *runner) tick(n uint64) error {
	st := r.body.State()
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            n,
		Pos:             [3]float64{st.Pos.X, st.Pos.Y, st.Pos.Z},
		Vel:             [3]float64{st.Vel.X, st.Vel.Y, st.Vel.Z},
		Yaw:             st.Yaw,
		Pitch:           st.Pitch,
		OnGround:        st.OnGround,
	}
	if err := r.send(obs); err != nil {
		return err
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case <-timeout:
			return fmt.Errorf("no INPUT for tick %d", n)
		case raw, ok := <-r.frames:
			if !ok {
				return fmt.Errorf("connection closed")
			}
			base, err := protocol.DecodeBase(raw)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeEvent:
				var ev protocol.EventMsg
				if err := json.Unmarshal(raw, &ev); err == nil {
					r.event(ev)
				}
			case protocol.TypeInput:
				var in protocol.InputMsg
				if err := json.Unmarshal(raw, &in); err != nil {
					return err
				}
				if in.Tick != n {
					continue
				}
				if in.Stop {
					r.body.StopAll()
				}
				r.body.SetForward(in.Forward)
				r.body.SetJump(in.Jump)
				r.body.SetSprint(in.Sprint)
				r.body.SetYaw(in.Yaw)
				r.body.SetPitch(in.Pitch)
				r.body.Step()
				return nil
			}
		}
	}
}

func (r *runner) event(ev protocol.EventMsg) {
	l := r.log.Info()
	switch ev.Kind {
	case protocol.EventFollowDone:
		r.done, r.finished = true, true
	case protocol.EventFollowFail, protocol.EventPathUnreachable, protocol.EventError:
		r.finished = true
		l = r.log.Warn()
	}
	l.Str("kind", ev.Kind).Str("code", ev.Code).Int("nodes", ev.Nodes).Msg(ev.Message)
}

func parseTarget(s string) (voxel.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return voxel.Coord{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return voxel.Coord{}, err
		}
		v[i] = n
	}
	return voxel.Coord{X: v[0], Y: v[1], Z: v[2]}, nil
}
