package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/randutil"
	"github.com/lox/holdemtable/internal/table"
)

// stateView is the subset of a state message the tests inspect
type stateView struct {
	IsGameActive    bool   `json:"isGameActive"`
	CurrentPlayerID string `json:"currentPlayerId"`
	Players         []struct {
		UserID           string            `json:"userId"`
		HoleCards        []json.RawMessage `json:"holeCards"`
		ConnectionStatus string            `json:"connectionStatus"`
	} `json:"players"`
}

func newTestGateway(t *testing.T) (*httptest.Server, *table.Table) {
	t.Helper()
	tbl, err := table.New(table.Settings{
		ID:            "main",
		Rules:         game.DefaultConfig(),
		StartingChips: 1000,
	}, table.WithClock(quartz.NewMock(t)), table.WithRNG(randutil.New(3)))
	require.NoError(t, err)

	m := table.NewManager(zerolog.Nop())
	require.NoError(t, m.Add(tbl))

	ts := httptest.NewServer(NewServer(m, log.New(io.Discard)).Handler())
	t.Cleanup(ts.Close)
	return ts, tbl
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
}

func dial(t *testing.T, ts *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "table=main&user="+user), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(typ, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads messages until one of type typ satisfies match
func readUntil(t *testing.T, conn *websocket.Conn, typ MessageType, match func(*Message) bool) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == typ && (match == nil || match(&msg)) {
			return &msg
		}
	}
}

func decodeState(t *testing.T, msg *Message) stateView {
	t.Helper()
	var st stateView
	require.NoError(t, json.Unmarshal(msg.Data, &st))
	return st
}

func activeState(t *testing.T) func(*Message) bool {
	return func(m *Message) bool { return decodeState(t, m).IsGameActive }
}

func TestGatewayHand(t *testing.T) {
	t.Parallel()
	ts, tbl := newTestGateway(t)

	alice := dial(t, ts, "alice")
	bob := dial(t, ts, "bob")
	readUntil(t, alice, MessageTypeState, nil)
	readUntil(t, bob, MessageTypeState, nil)

	send(t, alice, MessageTypeJoin, JoinData{Nickname: "Alice"})
	joined := readUntil(t, alice, MessageTypeJoined, nil)
	var jd JoinedData
	require.NoError(t, json.Unmarshal(joined.Data, &jd))
	assert.Equal(t, JoinedData{TableID: "main", UserID: "alice", Seat: 0}, jd)

	send(t, bob, MessageTypeJoin, JoinData{})
	readUntil(t, bob, MessageTypeJoined, nil)

	send(t, alice, MessageTypeStart, nil)
	st := decodeState(t, readUntil(t, alice, MessageTypeState, activeState(t)))
	readUntil(t, bob, MessageTypeState, activeState(t))

	for _, p := range st.Players {
		if p.UserID == "alice" {
			assert.Len(t, p.HoleCards, 2)
		} else {
			assert.Empty(t, p.HoleCards, "other seats stay hidden")
		}
	}

	conns := map[string]*websocket.Conn{"alice": alice, "bob": bob}
	onTurn := st.CurrentPlayerID
	waiting := "alice"
	if onTurn == "alice" {
		waiting = "bob"
	}

	send(t, conns[waiting], MessageTypeAction, ActionData{Action: "call"})
	errMsg := readUntil(t, conns[waiting], MessageTypeError, nil)
	var ed ErrorData
	require.NoError(t, json.Unmarshal(errMsg.Data, &ed))
	assert.Equal(t, "not_your_turn", ed.Code)

	send(t, conns[onTurn], MessageTypeAction, ActionData{Action: "dance"})
	errMsg = readUntil(t, conns[onTurn], MessageTypeError, nil)
	require.NoError(t, json.Unmarshal(errMsg.Data, &ed))
	assert.Equal(t, "invalid_action", ed.Code)

	send(t, conns[onTurn], MessageTypeAction, ActionData{Action: "call"})
	confirm := readUntil(t, conns[onTurn], MessageTypeActionConfirmation, nil)
	var cd ActionConfirmationData
	require.NoError(t, json.Unmarshal(confirm.Data, &cd))
	assert.Equal(t, "call", cd.Action)
	assert.NotEmpty(t, cd.Message)

	// Dropping the socket marks the seat offline
	require.NoError(t, conns[waiting].Close())
	require.Eventually(t, func() bool {
		for _, p := range tbl.State("").Players {
			if p.UserID == waiting {
				return p.ConnectionStatus != "online"
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
}

func TestGatewayReplacedSocketKeepsSeat(t *testing.T) {
	t.Parallel()
	ts, tbl := newTestGateway(t)

	conns := map[string]*websocket.Conn{}
	for _, user := range []string{"alice", "bob", "carol"} {
		conns[user] = dial(t, ts, user)
		readUntil(t, conns[user], MessageTypeState, nil)
		send(t, conns[user], MessageTypeJoin, JoinData{})
		readUntil(t, conns[user], MessageTypeJoined, nil)
	}

	send(t, conns["alice"], MessageTypeStart, nil)
	st := decodeState(t, readUntil(t, conns["alice"], MessageTypeState, activeState(t)))

	var offTurn string
	for _, p := range st.Players {
		if p.UserID != st.CurrentPlayerID {
			offTurn = p.UserID
			break
		}
	}
	require.NotEmpty(t, offTurn)

	// Same user dials again, as after a page refresh
	fresh := dial(t, ts, offTurn)
	readUntil(t, fresh, MessageTypeState, activeState(t))

	// The old socket is shut down by the server
	old := conns[offTurn]
	require.NoError(t, old.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := old.ReadMessage(); err != nil {
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) {
				require.False(t, netErr.Timeout(), "old socket was not closed")
			}
			break
		}
	}

	state := tbl.State("")
	assert.True(t, state.IsGameActive)
	var found bool
	for _, p := range state.Players {
		if p.UserID != offTurn {
			continue
		}
		found = true
		assert.True(t, p.InHand)
		assert.False(t, p.Folded, "replacing a socket must not fold the seat")
		assert.Equal(t, "online", p.ConnectionStatus)
	}
	require.True(t, found)
}

func TestGatewayRejectsBadMessages(t *testing.T) {
	t.Parallel()
	ts, _ := newTestGateway(t)
	conn := dial(t, ts, "carol")

	tests := []struct {
		name string
		msg  Message
		code string
	}{
		{"unknown type", Message{Type: "shuffle"}, "unknown_message_type"},
		{"malformed payload", Message{Type: MessageTypeAction, Data: json.RawMessage(`"call"`)}, "invalid_message"},
		{"not seated", Message{Type: MessageTypeStart}, "not_seated"},
		{"no hand", Message{Type: MessageTypeAction, Data: json.RawMessage(`{"action":"check"}`)}, "hand_not_active"},
	}
	for i, tt := range tests {
		tt.msg.RequestID = tt.name
		require.NoError(t, conn.WriteJSON(tt.msg))
		reply := readUntil(t, conn, MessageTypeError, func(m *Message) bool { return m.RequestID == tt.name })
		var ed ErrorData
		require.NoError(t, json.Unmarshal(reply.Data, &ed), "case %d", i)
		assert.Equal(t, tt.code, ed.Code, tt.name)
	}
}

func TestGatewayHTTP(t *testing.T) {
	t.Parallel()
	ts, _ := newTestGateway(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/tables")
	require.NoError(t, err)
	var tables []table.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tables))
	resp.Body.Close()
	require.Len(t, tables, 1)
	assert.Equal(t, "main", tables[0].ID)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, "table=main"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, "table=nope&user=x"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenAndServeStops(t *testing.T) {
	t.Parallel()
	srv := NewServer(table.NewManager(zerolog.Nop()), log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
