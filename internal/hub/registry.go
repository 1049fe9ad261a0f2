// Package hub is the connection registry and per-game broadcast fan-out:
// the protocol state machine governing authentication, join-time
// history replay ordering, and delivery of approved events to every
// member of a game.
package hub

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slices"

	"scrabbled/internal/protocol"
)

// Key identifies one live connection: a username within a game. The
// registry's central invariant is that no two live connections share a
// key.
type Key struct {
	Username string
	GameID   int
}

// ErrDuplicateConnection is returned by Register when key is already
// live.
var ErrDuplicateConnection = errors.New("hub: connection already registered for this username and game")

// NewConnHook is invoked after a connection is provisionally registered
// but before its AUTH_RESPONSE is sent, so the engine can veto the join
// (e.g. the game doesn't exist).
type NewConnHook func(key Key) error

// EndConnHook is invoked after a connection is fully unregistered.
type EndConnHook func(key Key)

// Registry maps (username, game_id) to live connections and fans out
// broadcasts within a game. Safe for concurrent use: distinct games may
// be served by distinct goroutines (the engine runs one actor per game),
// so the registry itself needs its own locking.
type Registry struct {
	mu        sync.RWMutex
	byKey     map[Key]Conn
	keyOf     map[Conn]Key
	onNewConn NewConnHook
	onEndConn EndConnHook
}

// NewRegistry builds a Registry. Either hook may be nil.
func NewRegistry(onNewConn NewConnHook, onEndConn EndConnHook) *Registry {
	return &Registry{
		byKey:     make(map[Key]Conn),
		keyOf:     make(map[Conn]Key),
		onNewConn: onNewConn,
		onEndConn: onEndConn,
	}
}

// Register runs the handshake's provisional-join steps: reject a
// duplicate key, otherwise insert the connection and invoke the
// new-connection hook. On any rejection it sends AUTH_RESPONSE{ok:false}
// itself and returns the reason. On success it sends
// AUTH_RESPONSE{ok:true} and returns nil; the caller (the engine) is
// then responsible for replaying history to conn and, only afterwards,
// calling AnnounceJoin — that ordering is what gives joiners history
// before any live broadcast.
func (r *Registry) Register(key Key, conn Conn) error {
	r.mu.Lock()
	if _, exists := r.byKey[key]; exists {
		r.mu.Unlock()
		r.sendAuthResponse(conn, false)
		return fmt.Errorf("%w: %+v", ErrDuplicateConnection, key)
	}
	r.byKey[key] = conn
	r.keyOf[conn] = key
	r.mu.Unlock()

	if r.onNewConn != nil {
		if err := r.onNewConn(key); err != nil {
			r.removeLocked(key)
			r.sendAuthResponse(conn, false)
			return err
		}
	}

	r.sendAuthResponse(conn, true)
	return nil
}

func (r *Registry) sendAuthResponse(conn Conn, ok bool) {
	msg, err := protocol.NewAuthResponse(ok)
	if err != nil {
		return
	}
	_ = conn.Send(msg)
}

// AnnounceJoin performs the handshake's final steps: tell every other
// member of the game that key's username joined, and tell the newcomer
// about every peer already present. Call this only after any history
// replay to the newcomer has already been sent.
func (r *Registry) AnnounceJoin(key Key) error {
	conn, ok := r.connFor(key)
	if !ok {
		return fmt.Errorf("hub: %+v is not registered", key)
	}

	joinMsg, err := protocol.NewConnectionMessage(key.Username)
	if err != nil {
		return err
	}
	r.PublishToGame(key.GameID, joinMsg, conn)

	for _, peer := range r.membersExcept(key) {
		peerMsg, err := protocol.NewConnectionMessage(peer.Username)
		if err != nil {
			continue
		}
		_ = conn.Send(peerMsg)
	}
	return nil
}

// Unregister removes key, announces its departure to the rest of the
// game, and invokes the end-connection hook.
func (r *Registry) Unregister(key Key) {
	r.removeLocked(key)

	msg, err := protocol.NewEndConnectionMessage(key.Username)
	if err == nil {
		r.PublishToGame(key.GameID, msg, nil)
	}

	if r.onEndConn != nil {
		r.onEndConn(key)
	}
}

func (r *Registry) removeLocked(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.byKey[key]; ok {
		delete(r.keyOf, conn)
	}
	delete(r.byKey, key)
}

func (r *Registry) connFor(key Key) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byKey[key]
	return conn, ok
}

func (r *Registry) membersExcept(key Key) []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var peers []Key
	for k := range r.byKey {
		if k.GameID == key.GameID && k != key {
			peers = append(peers, k)
		}
	}
	return peers
}

// Members returns the usernames currently live in gameID, sorted for a
// deterministic turn order: map iteration order is random, and callers
// like start_game use this list's order to seed player.Turn.
func (r *Registry) Members(gameID int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for k := range r.byKey {
		if k.GameID == gameID {
			names = append(names, k.Username)
		}
	}
	slices.Sort(names)
	return names
}

// PublishToGame sends msg to every live member of gameID except the
// connection in except (pass nil to exclude nobody), waiting for every
// send to complete before returning.
func (r *Registry) PublishToGame(gameID int, msg protocol.Message, except Conn) {
	r.mu.RLock()
	var targets []Conn
	for k, conn := range r.byKey {
		if k.GameID == gameID && conn != except {
			targets = append(targets, conn)
		}
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, conn := range targets {
		wg.Add(1)
		go func(c Conn) {
			defer wg.Done()
			_ = c.Send(msg)
		}(conn)
	}
	wg.Wait()
}

// SendTo delivers msg to exactly one member, if still live.
func (r *Registry) SendTo(key Key, msg protocol.Message) error {
	conn, ok := r.connFor(key)
	if !ok {
		return fmt.Errorf("hub: %+v is not registered", key)
	}
	return conn.Send(msg)
}

// Disconnect force-closes the connection registered for key, which
// drives the transport's read loop to exit and run its own Unregister.
func (r *Registry) Disconnect(key Key) error {
	conn, ok := r.connFor(key)
	if !ok {
		return fmt.Errorf("hub: %+v is not registered", key)
	}
	return conn.Close()
}
