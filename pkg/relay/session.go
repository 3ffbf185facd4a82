// Copyright 2024-2026 Aiku AI

package relay

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/steam-relay/pkg/relay/network"
)

// backoff tracks one session's reconnect delay: starts at the floor,
// doubles per consecutive disconnect up to the ceiling, resets to the floor
// on any successful reconnection.
type backoff struct {
	cur, floor, ceil time.Duration
}

func newBackoff(floor, ceil time.Duration) backoff {
	return backoff{cur: floor, floor: floor, ceil: ceil}
}

// next returns the delay to wait before the upcoming attempt and escalates
// the one after it.
func (b *backoff) next() time.Duration {
	d := b.cur
	b.cur = min(b.cur*2, b.ceil)
	return d
}

func (b *backoff) reset() {
	b.cur = b.floor
}

// controller drives one account's session through logon, backoff reconnect
// and teardown. Exactly one controller goroutine runs per managed account;
// it is the only writer of the session's status and identity, and the only
// owner of the connection handle.
type controller struct {
	accountName string
	session     *Session
	registry    *Registry
	router      *Router
	log         zerolog.Logger

	backoffFloor time.Duration
	backoffCeil  time.Duration

	done <-chan struct{}

	// firstResult is resolved exactly once, on the first terminal
	// transition (logged in or auth failure). Later reconnect outcomes are
	// only logged; the original caller's wait has already resolved.
	resolveOnce  sync.Once
	firstResult  chan error
	onFirstLogin func()
}

func newController(accountName string, sess *Session, registry *Registry, router *Router, floor, ceil time.Duration, done <-chan struct{}, onFirstLogin func(), log zerolog.Logger) *controller {
	return &controller{
		accountName:  accountName,
		session:      sess,
		registry:     registry,
		router:       router,
		log:          log.With().Str("account", accountName).Logger(),
		backoffFloor: floor,
		backoffCeil:  ceil,
		done:         done,
		firstResult:  make(chan error, 1),
		onFirstLogin: onFirstLogin,
	}
}

// start sends the initial logon and launches the event loop. The returned
// channel yields the first terminal result.
func (c *controller) start() (<-chan error, error) {
	if err := c.logOn(); err != nil {
		return nil, err
	}
	go c.run()
	return c.firstResult, nil
}

// logOn generates a fresh Steam Guard code and issues a logon attempt.
// Codes are time-sensitive, so they are never reused between attempts.
func (c *controller) logOn() error {
	code, err := GenerateAuthCode(c.session.Credential.SharedSecret, time.Now())
	if err != nil {
		return err
	}
	c.session.Client.LogOn(network.LogOnDetails{
		AccountName:   c.accountName,
		Password:      c.session.Credential.Password,
		TwoFactorCode: code,
	})
	return nil
}

func (c *controller) run() {
	delay := newBackoff(c.backoffFloor, c.backoffCeil)
	for {
		select {
		case <-c.done:
			c.teardown()
			return
		case evt, ok := <-c.session.Client.Events():
			if !ok {
				c.teardown()
				return
			}
			switch e := evt.(type) {
			case network.LoggedOnEvent:
				c.session.setIdentity(e.Identity)
				c.session.setStatus(StatusLoggedIn)
				delay.reset()
				c.log.Info().Str("steam_id", string(e.Identity)).Msg("Logged in")
				c.resolve(nil)

			case network.DisconnectedEvent:
				c.session.setStatus(StatusDisconnected)
				wait := delay.next()
				c.log.Warn().Err(e.Err).Dur("reconnect_in", wait).Msg("Disconnected, scheduling reconnect")
				select {
				case <-c.done:
					c.teardown()
					return
				case <-time.After(wait):
				}
				c.session.setStatus(StatusConnecting)
				if err := c.logOn(); err != nil {
					// A shared secret that stops decoding is a credential
					// problem, not a network one.
					c.fail(err)
					return
				}

			case network.AuthFailedEvent:
				c.log.Error().Err(e.Err).Msg("Authentication failed, removing session")
				c.fail(e.Err)
				return

			case network.MessageEvent:
				if c.session.Live() {
					c.router.HandleInbound(c.accountName, c.session.Identity(), e.From, e.Text)
				}
			}
		}
	}
}

// resolve releases the login caller on the first terminal transition. On
// success it also runs the first-login hook (session persistence) before
// anyone can observe the result.
func (c *controller) resolve(err error) {
	c.resolveOnce.Do(func() {
		if err == nil && c.onFirstLogin != nil {
			c.onFirstLogin()
		}
		c.firstResult <- err
	})
}

// fail handles a terminal authentication error: the session is removed from
// the registry and no further reconnect is scheduled.
func (c *controller) fail(err error) {
	c.registry.Remove(c.accountName)
	c.session.Client.Close()
	c.resolve(err)
}

func (c *controller) teardown() {
	c.registry.Remove(c.accountName)
	c.session.Client.Close()
	c.resolve(errShuttingDown)
}
