// Copyright 2024-2026 Aiku AI

package relay

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/steam-relay/pkg/relay/network"
)

// testSecret is a valid base64 shared secret for Steam Guard generation.
const testSecret = "dGVzdC1zaGFyZWQtc2VjcmV0"

// fakeClient is a scriptable network.Client. Tests register an onLogOn
// responder that decides which events each attempt produces.
type fakeClient struct {
	events chan network.Event
	done   chan struct{}

	mu       sync.Mutex
	identity network.Identity
	friends  map[network.Identity]network.Relationship
	logOns   []network.LogOnDetails
	sent     []sentMessage
	sendErr  error

	// onLogOn returns the events to emit for the attempt-th logon (1-based).
	onLogOn func(attempt int, details network.LogOnDetails) []network.Event

	closeOnce sync.Once
}

type sentMessage struct {
	to   network.Identity
	text string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		events:  make(chan network.Event, 16),
		done:    make(chan struct{}),
		friends: make(map[network.Identity]network.Relationship),
	}
}

func (f *fakeClient) LogOn(details network.LogOnDetails) {
	f.mu.Lock()
	f.logOns = append(f.logOns, details)
	attempt := len(f.logOns)
	responder := f.onLogOn
	f.mu.Unlock()
	if responder == nil {
		return
	}
	go func() {
		for _, evt := range responder(attempt, details) {
			if logged, ok := evt.(network.LoggedOnEvent); ok {
				f.mu.Lock()
				f.identity = logged.Identity
				f.mu.Unlock()
			}
			select {
			case f.events <- evt:
			case <-f.done:
				return
			}
		}
	}()
}

func (f *fakeClient) Events() <-chan network.Event {
	return f.events
}

func (f *fakeClient) Identity() network.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.identity
}

func (f *fakeClient) Relationship(friend network.Identity) network.Relationship {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.friends[friend]
}

func (f *fakeClient) SendMessage(friend network.Identity, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{to: friend, text: text})
	return nil
}

func (f *fakeClient) Close() {
	f.closeOnce.Do(func() {
		close(f.done)
	})
}

func (f *fakeClient) isClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *fakeClient) setFriend(friend network.Identity, rel network.Relationship) {
	f.mu.Lock()
	f.friends[friend] = rel
	f.mu.Unlock()
}

func (f *fakeClient) logOnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logOns)
}

func (f *fakeClient) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

// loggedOnImmediately scripts a client that authenticates on every attempt.
func loggedOnImmediately(id network.Identity) func(int, network.LogOnDetails) []network.Event {
	return func(int, network.LogOnDetails) []network.Event {
		return []network.Event{network.LoggedOnEvent{Identity: id}}
	}
}

// fakeBroadcaster records broadcast messages and signals on a channel so
// tests can wait for asynchronous fan-out.
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []IncomingMessage
	notify   chan struct{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{notify: make(chan struct{}, 16)}
}

func (b *fakeBroadcaster) BroadcastIncoming(msg IncomingMessage) {
	b.mu.Lock()
	b.messages = append(b.messages, msg)
	b.mu.Unlock()
	b.notify <- struct{}{}
}

func (b *fakeBroadcaster) all() []IncomingMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]IncomingMessage(nil), b.messages...)
}

func (b *fakeBroadcaster) waitForMessage(t *testing.T) IncomingMessage {
	t.Helper()
	select {
	case <-b.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
	msgs := b.all()
	return msgs[len(msgs)-1]
}

// testEnv bundles a manager wired to fakes with short reconnect backoff.
type testEnv struct {
	manager     *Manager
	store       *Store
	broadcaster *fakeBroadcaster

	mu      sync.Mutex
	clients map[string]*fakeClient
	next    []*fakeClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:       NewStore(filepath.Join(t.TempDir(), "accounts.json")),
		broadcaster: newFakeBroadcaster(),
		clients:     make(map[string]*fakeClient),
	}
	factory := func() network.Client {
		env.mu.Lock()
		defer env.mu.Unlock()
		if len(env.next) == 0 {
			t.Fatal("no fake client queued for login")
		}
		fc := env.next[0]
		env.next = env.next[1:]
		return fc
	}
	env.manager = NewManager(env.store, factory, env.broadcaster, zerolog.Nop())
	env.manager.backoffFloor = 5 * time.Millisecond
	env.manager.backoffCeil = 20 * time.Millisecond
	t.Cleanup(env.manager.Close)
	return env
}

// queueClient registers the fake client the next Login call will receive.
func (env *testEnv) queueClient(fc *fakeClient) {
	env.mu.Lock()
	env.next = append(env.next, fc)
	env.mu.Unlock()
}

func testCredential(name string) Credential {
	return Credential{AccountName: name, Password: "hunter2", SharedSecret: testSecret}
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
