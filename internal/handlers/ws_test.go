package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/jason-s-yu/phaseten/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type testClient struct {
	t   *testing.T
	c   *websocket.Conn
	id  uuid.UUID
	ctx context.Context
}

func newTestServer(t *testing.T) (*httptest.Server, *GameServer) {
	t.Helper()
	gs := NewGameServer(game.NewMemoryDirectory(), quietLogger())
	srv := httptest.NewServer(gs.Routes())
	t.Cleanup(srv.Close)
	return srv, gs
}

// dial opens a client and consumes its "connected" greeting.
func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })

	tc := &testClient{t: t, c: c, ctx: ctx}
	env := tc.next()
	require.Equal(t, "connected", env.Event)
	var payload game.ConnectedPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEqual(t, uuid.Nil, payload.ID)
	tc.id = payload.ID
	return tc
}

func (tc *testClient) send(req protocol.Request) {
	tc.t.Helper()
	frame, err := protocol.EncodeRequest(req)
	require.NoError(tc.t, err)
	require.NoError(tc.t, tc.c.Write(tc.ctx, websocket.MessageText, frame))
}

func (tc *testClient) sendRaw(raw string) {
	tc.t.Helper()
	require.NoError(tc.t, tc.c.Write(tc.ctx, websocket.MessageText, []byte(raw)))
}

func (tc *testClient) next() protocol.Envelope {
	tc.t.Helper()
	typ, data, err := tc.c.Read(tc.ctx)
	require.NoError(tc.t, err)
	require.Equal(tc.t, websocket.MessageText, typ)
	var env protocol.Envelope
	require.NoError(tc.t, json.Unmarshal(data, &env))
	return env
}

// expectGame reads the next event, checks its name and decodes the game state.
func (tc *testClient) expectGame(event string) *game.Game {
	tc.t.Helper()
	env := tc.next()
	require.Equal(tc.t, event, env.Event)
	var g game.Game
	require.NoError(tc.t, json.Unmarshal(env.Data, &g))
	return &g
}

func TestWebSocketGameFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)
	require.NotEqual(t, alice.id, bob.id)

	alice.send(&protocol.CreateRoom{PlayerName: "Alice"})
	g := alice.expectGame("roomUpdate")
	roomID := g.RoomID
	require.NotEmpty(t, roomID)
	require.Len(t, g.Players, 1)
	assert.Equal(t, alice.id, g.Players[0].ID)

	bob.send(&protocol.JoinRoom{RoomID: roomID, PlayerName: "Bob"})
	for _, tc := range []*testClient{alice, bob} {
		g = tc.expectGame("roomUpdate")
		require.Len(t, g.Players, 2)
		assert.Equal(t, "Bob", g.Players[1].Name)
	}

	// Bob may not draw out of turn; the request is dropped silently, so the
	// next thing anyone sees is the start.
	bob.send(&protocol.DrawCard{RoomID: roomID, From: "deck"})
	bob.send(&protocol.StartGame{RoomID: roomID})
	for _, tc := range []*testClient{alice, bob} {
		g = tc.expectGame("gameStarted")
		assert.True(t, g.Started)
		assert.Len(t, g.Players[0].Hand, 10)
		assert.Len(t, g.Players[1].Hand, 10)
		assert.Equal(t, 87, g.Deck.Len())
		assert.Equal(t, 1, g.Discard.Len())
	}

	alice.send(&protocol.DrawCard{RoomID: roomID, From: "deck"})
	bob.expectGame("gameStateUpdate")
	g = alice.expectGame("gameStateUpdate")
	require.Len(t, g.Players[0].Hand, 11)
	assert.True(t, g.DrewCard)

	card := g.Players[0].Hand[10]
	alice.send(&protocol.DiscardCard{RoomID: roomID, Card: card})
	bob.expectGame("gameStateUpdate")
	g = alice.expectGame("gameStateUpdate")
	assert.Len(t, g.Players[0].Hand, 10)
	assert.Equal(t, 1, g.CurrentTurn)
	top, ok := g.Discard.Top()
	require.True(t, ok)
	assert.Equal(t, card, top)

	alice.send(&protocol.ChatMessage{RoomID: roomID, Message: json.RawMessage(`"gg"`)})
	for _, tc := range []*testClient{alice, bob} {
		env := tc.next()
		require.Equal(t, "chatMessage", env.Event)
		assert.JSONEq(t, `{"player":"`+alice.id.String()+`","message":"gg"}`, string(env.Data))
	}

	require.NoError(t, bob.c.Close(websocket.StatusNormalClosure, "bye"))
	g = alice.expectGame("roomUpdate")
	require.Len(t, g.Players, 1)
	assert.Equal(t, alice.id, g.Players[0].ID)
	assert.Equal(t, 0, g.CurrentTurn)
}

func TestWebSocketDropsBadMessages(t *testing.T) {
	srv, gs := newTestServer(t)
	alice := dial(t, srv)

	alice.sendRaw(`not json`)
	alice.sendRaw(`{"event":"flipTable","data":{}}`)
	alice.c.Write(alice.ctx, websocket.MessageBinary, []byte{0x01})
	alice.send(&protocol.ChatMessage{RoomID: "lobby", Message: json.RawMessage(`"still here"`)})
	alice.send(&protocol.CreateRoom{PlayerName: "Alice"})

	// Chat to a room nobody subscribed to reaches no one.
	g := alice.expectGame("roomUpdate")
	assert.Equal(t, "Alice", g.Players[0].Name)
	assert.Equal(t, 1, gs.Store.Len())
}

func TestWebSocketDisconnectCleansUp(t *testing.T) {
	srv, gs := newTestServer(t)
	alice := dial(t, srv)
	alice.send(&protocol.CreateRoom{PlayerName: "Alice"})
	g := alice.expectGame("roomUpdate")

	require.NoError(t, alice.c.Close(websocket.StatusNormalClosure, ""))

	assert.Eventually(t, func() bool {
		snap, ok := gs.Store.Snapshot(g.RoomID)
		return ok && len(snap.Players) == 0 && gs.Hub.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketNotifyRejections(t *testing.T) {
	srv, gs := newTestServer(t)
	gs.Store.NotifyRejections = true
	alice := dial(t, srv)

	alice.send(&protocol.JoinRoom{RoomID: "nope", PlayerName: "Alice"})
	env := alice.next()
	require.Equal(t, "error", env.Event)
	var payload game.ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "joinRoom", payload.Event)
	assert.Equal(t, game.ErrRoomNotFound.Error(), payload.Message)
}

func TestWebSocketThrottlesInbound(t *testing.T) {
	gs := NewGameServer(nil, quietLogger())
	gs.MessageRate = rate.Every(200 * time.Millisecond)
	gs.MessageBurst = 1
	srv := httptest.NewServer(gs.Routes())
	t.Cleanup(srv.Close)

	alice := dial(t, srv)
	alice.send(&protocol.CreateRoom{PlayerName: "Alice"})
	g := alice.expectGame("roomUpdate")

	start := time.Now()
	for i := 0; i < 3; i++ {
		alice.send(&protocol.ChatMessage{RoomID: g.RoomID, Message: json.RawMessage(`"hi"`)})
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, "chatMessage", alice.next().Event)
	}
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond, "frames were not throttled")
}

func TestHubCloseAllSendsShutdownCode(t *testing.T) {
	srv, gs := newTestServer(t)
	alice := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go gs.Hub.CloseAll(ctx, ServerShutdownError, "server shutting down")

	_, _, err := alice.c.Read(alice.ctx)
	require.Error(t, err)
	assert.Equal(t, ServerShutdownError, websocket.CloseStatus(err))
}

func TestPingAndRooms(t *testing.T) {
	srv, gs := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gs.Store.Run(ctx, 0, 0)

	alice := dial(t, srv)
	alice.send(&protocol.CreateRoom{PlayerName: "Alice"})
	g := alice.expectGame("roomUpdate")

	var rooms []game.RoomSummary
	assert.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/rooms")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		rooms = nil
		return json.NewDecoder(resp.Body).Decode(&rooms) == nil && len(rooms) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, g.RoomID, rooms[0].RoomID)
	assert.Equal(t, []string{"Alice"}, rooms[0].Players)
}

func TestRoomsFallsBackToRegistry(t *testing.T) {
	gs := NewGameServer(nil, quietLogger())
	_, err := gs.Store.CreateRoom(uuid.New(), "Alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	gs.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rooms []game.RoomSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, []string{"Alice"}, rooms[0].Players)
}
