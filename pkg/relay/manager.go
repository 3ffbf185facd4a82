// Copyright 2024-2026 Aiku AI

package relay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/steam-relay/pkg/relay/network"
)

const (
	defaultBackoffFloor = 5 * time.Second
	defaultBackoffCeil  = 60 * time.Second
)

// Manager is the facade over the session registry, lifecycle controllers,
// message router and credential store. One Manager instance owns all
// session state for the process.
type Manager struct {
	registry  *Registry
	store     *Store
	router    *Router
	newClient network.Factory
	log       zerolog.Logger

	backoffFloor time.Duration
	backoffCeil  time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewManager wires the core together. The broadcaster receives all relayed
// inbound messages; the factory creates one network client per login.
func NewManager(store *Store, factory network.Factory, broadcaster Broadcaster, log zerolog.Logger) *Manager {
	registry := NewRegistry()
	return &Manager{
		registry:     registry,
		store:        store,
		router:       NewRouter(registry, broadcaster, log),
		newClient:    factory,
		log:          log.With().Str("component", "manager").Logger(),
		backoffFloor: defaultBackoffFloor,
		backoffCeil:  defaultBackoffCeil,
		done:         make(chan struct{}),
	}
}

// Registry exposes the session registry for lookups.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Login authenticates an account and keeps it connected until an
// unrecoverable failure. It returns after the first terminal transition:
// nil once the session is logged in for the first time, or the
// authentication error if the first attempt fails before ever logging in.
// Reconnect outcomes after the initial success only surface in logs.
//
// When persist is true the credential is written to the store on first
// success; a store failure is logged and does not fail the login.
func (m *Manager) Login(cred Credential, persist bool) error {
	sess := &Session{Credential: cred, Client: m.newClient()}
	if err := m.registry.Reserve(cred.AccountName, sess); err != nil {
		sess.Client.Close()
		return err
	}

	onFirstLogin := func() {
		if !persist {
			return
		}
		if err := m.SaveAccounts(); err != nil {
			m.log.Error().Err(err).Str("account", cred.AccountName).Msg("Failed to persist accounts")
		}
	}

	ctrl := newController(cred.AccountName, sess, m.registry, m.router,
		m.backoffFloor, m.backoffCeil, m.done, onFirstLogin, m.log)
	first, err := ctrl.start()
	if err != nil {
		m.registry.Remove(cred.AccountName)
		sess.Client.Close()
		return err
	}

	// Not cancellable: the caller is released only by the first terminal
	// transition (or process shutdown).
	return <-first
}

// SendMessage relays a message from a managed account to a friend's
// SteamID64. See Router.Send for the authorization chain.
func (m *Manager) SendMessage(fromAccount, toSteamID64, text string) error {
	return m.router.Send(fromAccount, toSteamID64, text)
}

// AutoLoginAll logs every persisted account in sequentially, without
// re-persisting. Best effort: a failed account is logged and the rest of
// the batch continues; the operation itself never fails.
func (m *Manager) AutoLoginAll() {
	creds, err := m.store.Load()
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to load saved accounts")
		return
	}
	for _, cred := range creds {
		m.log.Info().Str("account", cred.AccountName).Msg("Auto logging in")
		if err := m.Login(cred, false); err != nil {
			m.log.Error().Err(err).Str("account", cred.AccountName).Msg("Auto login failed")
		}
	}
}

// SaveAccounts overwrites the store with the credentials of all currently
// registered sessions.
func (m *Manager) SaveAccounts() error {
	return m.store.Save(m.registry.Credentials())
}

// Close stops all session controllers and releases any pending login
// waiters.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}
