package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/openrook/chesshub/internal/v1/auth"
	"github.com/openrook/chesshub/internal/v1/protocol"
	"github.com/openrook/chesshub/internal/v1/store"
	"github.com/openrook/chesshub/internal/v1/types"
)

// --- WebSocket connection mock ---

type mockWsConn struct {
	mu     sync.Mutex
	closed bool
}

func (m *mockWsConn) ReadMessage() (int, []byte, error)      { select {} }
func (m *mockWsConn) WriteMessage(mt int, data []byte) error { return nil }
func (m *mockWsConn) SetWriteDeadline(t time.Time) error     { return nil }

func (m *mockWsConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// --- Client harness ---

// testClient wraps a Client and drains its send channel into a
// recorder so assertions can inspect delivered frames.
type testClient struct {
	*Client
	mu     sync.Mutex
	frames []protocol.Envelope
	done   chan struct{}
}

func newTestClient(hub *Hub, id types.PlayerID, username string) *testClient {
	tc := &testClient{
		Client: newClient(&mockWsConn{}, hub, id, username),
		done:   make(chan struct{}),
	}
	hub.conns.Register(tc.Client)
	go tc.drain()
	return tc
}

func (tc *testClient) drain() {
	defer close(tc.done)
	for raw := range tc.Client.send {
		env, err := protocol.Decode(raw)
		if err != nil {
			continue
		}
		tc.mu.Lock()
		tc.frames = append(tc.frames, env)
		tc.mu.Unlock()
	}
}

func (tc *testClient) close() {
	tc.Client.Disconnect()
	<-tc.done
}

func (tc *testClient) events() []string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	var names []string
	for _, f := range tc.frames {
		names = append(names, f.Event)
	}
	return names
}

// last returns the newest frame with the given event name.
func (tc *testClient) last(event string) (protocol.Envelope, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for i := len(tc.frames) - 1; i >= 0; i-- {
		if tc.frames[i].Event == event {
			return tc.frames[i], true
		}
	}
	return protocol.Envelope{}, false
}

// waitFor polls until a frame with the event name arrives.
func (tc *testClient) waitFor(event string, timeout time.Duration) (protocol.Envelope, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if env, ok := tc.last(event); ok {
			return env, ok
		}
		time.Sleep(5 * time.Millisecond)
	}
	return protocol.Envelope{}, false
}

func decodeInto[T any](env protocol.Envelope) (T, error) {
	var out T
	err := json.Unmarshal(env.Data, &out)
	return out, err
}

// --- Store mock ---

// memoryStore is an in-memory store.Store for hub tests.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]store.User
	friends  map[string]map[string]bool
	requests map[string]map[string]bool // to -> from
	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]store.User),
		friends:  make(map[string]map[string]bool),
		requests: make(map[string]map[string]bool),
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) GetUser(ctx context.Context, username string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) EnsureUser(ctx context.Context, username string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return store.User{}, m.failWith
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	u := store.User{Username: username, Elo: store.StartingElo, CreatedAt: time.Now()}
	m.users[username] = u
	return u, nil
}

func (m *memoryStore) UpdateStats(ctx context.Context, username string, result store.GameResult, newElo int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Elo = newElo
	switch result {
	case store.ResultWin:
		u.Wins++
	case store.ResultLoss:
		u.Losses++
	case store.ResultDraw:
		u.Draws++
	}
	m.users[username] = u
	return nil
}

func (m *memoryStore) SendFriendRequest(ctx context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if from == to {
		return store.ErrSelfFriendship
	}
	if _, ok := m.users[to]; !ok {
		return store.ErrUserNotFound
	}
	if m.requests[to] == nil {
		m.requests[to] = make(map[string]bool)
	}
	m.requests[to][from] = true
	return nil
}

func (m *memoryStore) AcceptFriendRequest(ctx context.Context, username, from string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.requests[username][from] {
		return store.ErrNoPendingRequest
	}
	delete(m.requests[username], from)
	if m.friends[username] == nil {
		m.friends[username] = make(map[string]bool)
	}
	if m.friends[from] == nil {
		m.friends[from] = make(map[string]bool)
	}
	m.friends[username][from] = true
	m.friends[from][username] = true
	return nil
}

func (m *memoryStore) DeclineFriendRequest(ctx context.Context, username, from string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.requests[username][from] {
		return store.ErrNoPendingRequest
	}
	delete(m.requests[username], from)
	return nil
}

func (m *memoryStore) RemoveFriend(ctx context.Context, username, friend string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.friends[username], friend)
	delete(m.friends[friend], username)
	return nil
}

func (m *memoryStore) GetFriends(ctx context.Context, username string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.friends[username]), nil
}

func (m *memoryStore) GetPendingRequests(ctx context.Context, username string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.requests[username]), nil
}

func sortedKeys(set map[string]bool) []string {
	var out []string
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// --- Identity issuer mock ---

type mockIssuer struct{}

func (mockIssuer) Issue(playerID, username string) (string, error) {
	return "token-" + playerID, nil
}

func (mockIssuer) Validate(tokenString string) (*auth.IdentityClaims, error) {
	return nil, auth.ErrInvalidToken
}
