package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderer.ai/internal/protocol"
	"wanderer.ai/internal/sim/tuning"
)

func dial(t *testing.T) (*Server, *websocket.Conn) {
	t.Helper()
	v, err := protocol.NewValidator()
	require.NoError(t, err)
	tu := tuning.Defaults()
	tu.World.MinY = 0
	tu.World.Height = 8
	s := NewServer(Options{Tuning: tu, Log: zerolog.Nop(), Validator: v})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return s, conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

func TestHandshakeAndObs(t *testing.T) {
	s, conn := dial(t)
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, AgentName: "scout", Strategy: "full"})

	var welcome protocol.WelcomeMsg
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, protocol.TypeWelcome, welcome.Type)
	assert.NotEmpty(t, welcome.SessionID)
	assert.Equal(t, "full", welcome.Strategy)
	assert.Equal(t, 20, welcome.TickRateHz)
	assert.Equal(t, protocol.WorldParams{MinY: 0, Height: 8, ChunkSize: 16}, welcome.World)

	send(t, conn, protocol.ChunkMsg{
		Type: protocol.TypeChunk, ProtocolVersion: protocol.Version,
		CX: 0, CZ: 0, MinY: 0, Height: 8,
		Encoding: protocol.EncodingZstdB64, Data: protocol.EncodeBlocks(make([]uint16, 16*16*8)),
	})
	send(t, conn, protocol.ObsMsg{Type: protocol.TypeObs, ProtocolVersion: protocol.Version, Tick: 4, Pos: [3]float64{1.5, 2, 1.5}})

	var in protocol.InputMsg
	require.NoError(t, conn.ReadJSON(&in))
	assert.Equal(t, protocol.TypeInput, in.Type)
	assert.Equal(t, uint64(4), in.Tick)
	assert.False(t, in.Forward)
	assert.Equal(t, 1, s.Active())
}

func TestHandshakeRejectsNonHello(t *testing.T) {
	_, conn := dial(t)
	send(t, conn, protocol.ObsMsg{Type: protocol.TypeObs, ProtocolVersion: protocol.Version})

	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.ClosePolicyViolation, ce.Code)
	assert.Equal(t, "expected HELLO", ce.Text)
}

func TestHandshakeRejectsBadVersion(t *testing.T) {
	_, conn := dial(t)
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1", AgentName: "old"})

	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "bad protocol_version", ce.Text)
}

func TestPumpDrainsQueuedFramesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan []byte, 4)
	out <- []byte("input")
	out <- []byte("follow_done")
	cancel()
	close(out)

	var got []string
	err := pump(ctx, out, func(b []byte, deadline time.Time) error {
		assert.False(t, deadline.IsZero())
		got = append(got, string(b))
		return nil
	}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"input", "follow_done"}, got)
}

func TestPumpStopsWritingAfterError(t *testing.T) {
	out := make(chan []byte, 3)
	out <- []byte("a")
	out <- []byte("b")
	out <- []byte("c")
	close(out)

	calls := 0
	boom := errors.New("broken pipe")
	err := pump(context.Background(), out, func([]byte, time.Time) error {
		calls++
		return boom
	}, time.Second)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, out)
}
