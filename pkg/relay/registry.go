// Copyright 2024-2026 Aiku AI

package relay

import (
	"sync"

	"github.com/aiku/steam-relay/pkg/relay/network"
)

// Status is the connection state of a managed session.
type Status int

const (
	// StatusConnecting: a logon attempt is in flight, never been logged in.
	StatusConnecting Status = iota
	// StatusLoggedIn: authenticated and receiving events.
	StatusLoggedIn
	// StatusDisconnected: was logged in, waiting out the reconnect backoff.
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusLoggedIn:
		return "logged_in"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session is the live in-process representation of one managed account.
// Credential and Client are set at creation and never change; status and
// identity are written only by the account's session controller.
type Session struct {
	Credential Credential
	Client     network.Client

	mu       sync.Mutex
	status   Status
	identity network.Identity
}

// Status returns the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Identity returns the network identity, or "" before the first successful
// logon.
func (s *Session) Identity() network.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Live reports whether the session is currently authenticated.
func (s *Session) Live() bool {
	return s.Status() == StatusLoggedIn
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Session) setIdentity(id network.Identity) {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
}

// Registry is the concurrency-safe mapping from account name to session.
// It is shared between all session controllers and the message router; an
// account name present in the registry always has a session that is
// attempting or holding a live connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Reserve inserts the session for the given account if and only if the
// account has no session yet. The check and insert are one atomic step, so
// two concurrent logins for the same account cannot both pass.
func (r *Registry) Reserve(accountName string, sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[accountName]; ok {
		return ErrAlreadyActive
	}
	r.sessions[accountName] = sess
	return nil
}

// Remove deletes the account's session, if any.
func (r *Registry) Remove(accountName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, accountName)
}

// Get returns the session for an account.
func (r *Registry) Get(accountName string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[accountName]
	return sess, ok
}

// FindByIdentity scans for a live session connected as the given network
// identity. Returns the account name and session, or ok=false.
func (r *Registry) FindByIdentity(id network.Identity) (string, *Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, sess := range r.sessions {
		if sess.Live() && sess.Identity() == id {
			return name, sess, true
		}
	}
	return "", nil, false
}

// Credentials returns a snapshot of all registered accounts' credentials.
func (r *Registry) Credentials() []Credential {
	r.mu.RLock()
	defer r.mu.RUnlock()
	creds := make([]Credential, 0, len(r.sessions))
	for _, sess := range r.sessions {
		creds = append(creds, sess.Credential)
	}
	return creds
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
