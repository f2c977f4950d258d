package session

import (
	"context"
	"testing"
	"time"

	"github.com/openrook/chesshub/internal/v1/chess"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func move(t *testing.T, hub *Hub, tc *testClient, from, to string) {
	t.Helper()
	send(t, hub, tc, protocol.EventMakeMove, protocol.MakeMoveRequest{
		From: namedSquare(t, from),
		To:   namedSquare(t, to),
	})
}

func namedSquare(t *testing.T, name string) chess.Square {
	t.Helper()
	require.Len(t, name, 2)
	col := int(name[0] - 'a')
	row := 8 - int(name[1]-'0')
	return chess.Square{Row: row, Col: col}
}

func TestCheckmateSettlesRatings(t *testing.T) {
	hub, st := newTestHub(t)
	white, black := startGame(t, hub)
	defer white.close()
	defer black.close()

	// Fool's mate: black delivers mate on move two.
	move(t, hub, white, "f2", "f3")
	move(t, hub, black, "e7", "e5")
	move(t, hub, white, "g2", "g4")
	move(t, hub, black, "d8", "h4")

	env, ok := white.waitFor(protocol.EventGameEnded, time.Second)
	require.True(t, ok)
	ended, err := decodeInto[protocol.GameEndedEvent](env)
	require.NoError(t, err)
	assert.Equal(t, protocol.EndCheckmate, ended.Reason)
	assert.Equal(t, chess.Black, ended.Winner)
	assert.Equal(t, -16, ended.EloChanges.White)
	assert.Equal(t, 16, ended.EloChanges.Black)
	assert.Equal(t, 1184, ended.NewElos.White)
	assert.Equal(t, 1216, ended.NewElos.Black)

	_, ok = black.waitFor(protocol.EventGameEnded, time.Second)
	assert.True(t, ok)

	alice, err := st.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1184, alice.Elo)
	assert.Equal(t, 1, alice.Losses)

	bob, err := st.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1216, bob.Elo)
	assert.Equal(t, 1, bob.Wins)

	assert.Zero(t, hub.rooms.Count())
}

func TestResignationEndsGame(t *testing.T) {
	hub, st := newTestHub(t)
	white, black := startGame(t, hub)
	defer white.close()
	defer black.close()

	send(t, hub, white, protocol.EventResign, nil)

	env, ok := black.waitFor(protocol.EventGameEnded, time.Second)
	require.True(t, ok)
	ended, _ := decodeInto[protocol.GameEndedEvent](env)
	assert.Equal(t, protocol.EndResignation, ended.Reason)
	assert.Equal(t, chess.Black, ended.Winner)

	bob, err := st.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Wins)
}

func TestAgreedDrawSplitsNothing(t *testing.T) {
	hub, st := newTestHub(t)
	white, black := startGame(t, hub)
	defer white.close()
	defer black.close()

	send(t, hub, white, protocol.EventOfferDraw, nil)
	_, ok := black.waitFor(protocol.EventDrawOffered, time.Second)
	require.True(t, ok)

	send(t, hub, black, protocol.EventRespondDraw, protocol.RespondDrawRequest{Accept: true})

	env, ok := white.waitFor(protocol.EventGameEnded, time.Second)
	require.True(t, ok)
	ended, err := decodeInto[protocol.GameEndedEvent](env)
	require.NoError(t, err)
	assert.Equal(t, protocol.EndDrawAgreed, ended.Reason)
	assert.Empty(t, ended.Winner)
	assert.Zero(t, ended.EloChanges.White)
	assert.Zero(t, ended.EloChanges.Black)

	alice, err := st.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.Draws)
}

func TestDeclinedDrawContinuesGame(t *testing.T) {
	hub, _ := newTestHub(t)
	white, black := startGame(t, hub)
	defer white.close()
	defer black.close()

	send(t, hub, white, protocol.EventOfferDraw, nil)
	send(t, hub, black, protocol.EventRespondDraw, protocol.RespondDrawRequest{Accept: false})

	_, ok := white.waitFor(protocol.EventDrawDeclined, time.Second)
	assert.True(t, ok)
	assert.Equal(t, 1, hub.rooms.Count())
}

func TestDisconnectForfeitsAfterWindow(t *testing.T) {
	st := newMemoryStore()
	hub := NewHub(st, mockIssuer{}, nil, 30*time.Millisecond)
	white, black := startGame(t, hub)
	defer black.close()

	hub.handleClientDisconnect(white.Client)
	white.close()

	_, ok := black.waitFor(protocol.EventOpponentDisconnected, time.Second)
	require.True(t, ok)

	env, ok := black.waitFor(protocol.EventGameEnded, time.Second)
	require.True(t, ok)
	ended, _ := decodeInto[protocol.GameEndedEvent](env)
	assert.Equal(t, protocol.EndTimeout, ended.Reason)
	assert.Equal(t, chess.Black, ended.Winner)

	bob, err := st.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Wins)
}

func TestReconnectBeforeForfeitRestoresGame(t *testing.T) {
	st := newMemoryStore()
	hub := NewHub(st, mockIssuer{}, nil, 200*time.Millisecond)
	white, black := startGame(t, hub)
	defer black.close()

	move(t, hub, white, "e2", "e4")

	hub.handleClientDisconnect(white.Client)
	white.close()
	_, ok := black.waitFor(protocol.EventOpponentDisconnected, time.Second)
	require.True(t, ok)

	// Same player id, fresh transport.
	returned := newTestClient(hub, "p-white", "alice")
	defer returned.close()
	send(t, hub, returned, protocol.EventReconnect, nil)

	env, ok := returned.waitFor(protocol.EventGameRestored, time.Second)
	require.True(t, ok)
	restored, err := decodeInto[protocol.GameRestoredEvent](env)
	require.NoError(t, err)
	assert.Equal(t, chess.White, restored.PlayerColor)
	assert.Equal(t, chess.Black, restored.GameState.SideToMove)

	_, ok = black.waitFor(protocol.EventOpponentReconnected, time.Second)
	assert.True(t, ok)

	// The forfeit clock is cancelled; the game survives the window.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, hub.rooms.Count())
	_, ended := black.last(protocol.EventGameEnded)
	assert.False(t, ended)
}

func TestReconnectWithoutSession(t *testing.T) {
	hub, _ := newTestHub(t)
	tc := newTestClient(hub, "p1", "alice")
	defer tc.close()

	send(t, hub, tc, protocol.EventReconnect, nil)

	env, ok := tc.waitFor(protocol.EventError, time.Second)
	require.True(t, ok)
	errEvent, _ := decodeInto[protocol.ErrorEvent](env)
	assert.Equal(t, protocol.ReasonNoActiveSession, errEvent.Message)
}

func TestLobbyCreatorDisconnectDropsRoom(t *testing.T) {
	hub, _ := newTestHub(t)
	tc := newTestClient(hub, "p1", "alice")

	send(t, hub, tc, protocol.EventCreateRoom, protocol.CreateRoomRequest{})
	_, ok := tc.waitFor(protocol.EventRoomCreated, time.Second)
	require.True(t, ok)
	require.Equal(t, 1, hub.rooms.Count())

	hub.handleClientDisconnect(tc.Client)
	tc.close()
	assert.Zero(t, hub.rooms.Count())
}

func TestForfeitAndMoveRaceSettlesOnce(t *testing.T) {
	st := newMemoryStore()
	hub := NewHub(st, mockIssuer{}, nil, time.Hour)
	white, black := startGame(t, hub)
	defer white.close()
	defer black.close()

	room, ok := hub.roomOf(white.PlayerID())
	require.True(t, ok)

	// Two end paths racing: both call finishGame, only one settles.
	h1 := make(chan struct{})
	h2 := make(chan struct{})
	go func() {
		defer close(h1)
		hub.finishGame(context.Background(), room, protocol.EndResignation, chess.Black)
	}()
	go func() {
		defer close(h2)
		hub.finishGame(context.Background(), room, protocol.EndTimeout, chess.White)
	}()
	<-h1
	<-h2

	bob, err := st.GetUser(context.Background(), "bob")
	require.NoError(t, err)
	alice, err := st.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Wins+bob.Losses+bob.Draws)
	assert.Equal(t, 1, alice.Wins+alice.Losses+alice.Draws)
}
