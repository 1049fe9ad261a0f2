package hub_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrabbled/internal/hub"
	"scrabbled/internal/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []protocol.Message
	closed bool
}

func (c *fakeConn) Send(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]protocol.Message(nil), c.sent...)
}

func TestRegisterSendsAuthResponseOK(t *testing.T) {
	r := hub.NewRegistry(nil, nil)
	conn := &fakeConn{}
	require.NoError(t, r.Register(hub.Key{Username: "alice", GameID: 1}, conn))

	require.Len(t, conn.messages(), 1)
	assert.Equal(t, protocol.TypeAuthResponse, conn.messages()[0].Type)
}

func TestRegisterRejectsDuplicateKey(t *testing.T) {
	r := hub.NewRegistry(nil, nil)
	key := hub.Key{Username: "alice", GameID: 1}
	require.NoError(t, r.Register(key, &fakeConn{}))

	second := &fakeConn{}
	err := r.Register(key, second)
	assert.ErrorIs(t, err, hub.ErrDuplicateConnection)
	assert.False(t, second.closed) // registry doesn't close the connection itself
	require.Len(t, second.messages(), 1)
	assert.Equal(t, protocol.TypeAuthResponse, second.messages()[0].Type)
}

func TestNewConnHookVetoRemovesProvisionalRegistration(t *testing.T) {
	hookErr := assert.AnError
	r := hub.NewRegistry(func(hub.Key) error { return hookErr }, nil)
	conn := &fakeConn{}
	err := r.Register(hub.Key{Username: "alice", GameID: 1}, conn)
	assert.ErrorIs(t, err, hookErr)

	assert.Empty(t, r.Members(1))
}

func TestAnnounceJoinTellsPeersAndNewcomer(t *testing.T) {
	r := hub.NewRegistry(nil, nil)
	aliceConn, bobConn := &fakeConn{}, &fakeConn{}
	aliceKey, bobKey := hub.Key{Username: "alice", GameID: 1}, hub.Key{Username: "bob", GameID: 1}

	require.NoError(t, r.Register(aliceKey, aliceConn))
	require.NoError(t, r.AnnounceJoin(aliceKey))

	require.NoError(t, r.Register(bobKey, bobConn))
	require.NoError(t, r.AnnounceJoin(bobKey))

	// alice hears bob's NEW_CONNECTION broadcast.
	found := false
	for _, m := range aliceConn.messages() {
		if m.Type == protocol.TypeNewConnection {
			found = true
		}
	}
	assert.True(t, found)

	// bob, the newcomer, is told about alice directly.
	found = false
	for _, m := range bobConn.messages() {
		if m.Type == protocol.TypeNewConnection {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPublishToGameExcludesGivenConnAndOtherGames(t *testing.T) {
	r := hub.NewRegistry(nil, nil)
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	require.NoError(t, r.Register(hub.Key{Username: "a", GameID: 1}, a))
	require.NoError(t, r.Register(hub.Key{Username: "b", GameID: 1}, b))
	require.NoError(t, r.Register(hub.Key{Username: "c", GameID: 2}, c))

	msg, _ := protocol.NewEndConnectionMessage("x")
	r.PublishToGame(1, msg, a)

	assert.Len(t, a.messages(), 1) // only its own auth response, excluded from the publish
	assert.Len(t, b.messages(), 2) // auth response + broadcast
	assert.Len(t, c.messages(), 1) // untouched, different game
}

func TestUnregisterAnnouncesDepartureAndInvokesHook(t *testing.T) {
	var endedKey hub.Key
	r := hub.NewRegistry(nil, func(k hub.Key) { endedKey = k })
	alice, bob := &fakeConn{}, &fakeConn{}
	require.NoError(t, r.Register(hub.Key{Username: "alice", GameID: 1}, alice))
	require.NoError(t, r.Register(hub.Key{Username: "bob", GameID: 1}, bob))

	r.Unregister(hub.Key{Username: "alice", GameID: 1})

	assert.Equal(t, "alice", endedKey.Username)
	assert.Equal(t, []string{"bob"}, r.Members(1))
	found := false
	for _, m := range bob.messages() {
		if m.Type == protocol.TypeEndConnection {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDisconnectClosesTheConnection(t *testing.T) {
	r := hub.NewRegistry(nil, nil)
	conn := &fakeConn{}
	key := hub.Key{Username: "alice", GameID: 1}
	require.NoError(t, r.Register(key, conn))

	require.NoError(t, r.Disconnect(key))
	assert.True(t, conn.closed)
}

func TestSendToUnknownKeyFails(t *testing.T) {
	r := hub.NewRegistry(nil, nil)
	msg, _ := protocol.NewEndConnectionMessage("x")
	err := r.SendTo(hub.Key{Username: "ghost", GameID: 1}, msg)
	assert.Error(t, err)
}
