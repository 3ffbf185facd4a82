// Copyright 2024-2026 Aiku AI

// Package steamnet adapts the go-steam client library to the relay's
// network.Client boundary. All Steam wire-protocol handling is delegated to
// go-steam; this package only translates its event stream and classifies
// logon results into terminal auth failures vs recoverable disconnects.
package steamnet

import (
	"fmt"
	"sync"

	"github.com/Philipp15b/go-steam/v3"
	"github.com/Philipp15b/go-steam/v3/protocol/steamlang"
	"github.com/Philipp15b/go-steam/v3/steamid"
	"github.com/rs/zerolog"

	"github.com/aiku/steam-relay/pkg/relay/network"
)

// Client wraps a single go-steam connection.
type Client struct {
	steam  *steam.Client
	log    zerolog.Logger
	events chan network.Event

	mu       sync.Mutex
	details  network.LogOnDetails
	identity network.Identity

	closeOnce sync.Once
	closed    chan struct{}
}

var _ network.Client = (*Client)(nil)

// New creates an unconnected client. The event pump runs until Close.
func New(log zerolog.Logger) *Client {
	c := &Client{
		steam:  steam.NewClient(),
		log:    log.With().Str("component", "steam_client").Logger(),
		events: make(chan network.Event, 16),
		closed: make(chan struct{}),
	}
	go c.pump()
	return c
}

// NewFactory returns a network.Factory producing fresh clients.
func NewFactory(log zerolog.Logger) network.Factory {
	return func() network.Client {
		return New(log)
	}
}

// LogOn stores the attempt details and dials a connection manager. The
// actual logon packet is sent once the transport reports connected.
func (c *Client) LogOn(details network.LogOnDetails) {
	c.mu.Lock()
	c.details = details
	c.mu.Unlock()
	c.steam.Connect()
}

func (c *Client) Events() <-chan network.Event {
	return c.events
}

func (c *Client) Identity() network.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Client) Relationship(friend network.Identity) network.Relationship {
	f, err := c.steam.Social.Friends.ById(steamid.SteamId(friend.Uint64()))
	if err != nil {
		return network.RelationshipNone
	}
	switch f.Relationship {
	case steamlang.EFriendRelationship_Friend:
		return network.RelationshipFriend
	case steamlang.EFriendRelationship_RequestRecipient:
		return network.RelationshipRequestRecipient
	case steamlang.EFriendRelationship_RequestInitiator:
		return network.RelationshipRequestInitiator
	default:
		return network.RelationshipNone
	}
}

func (c *Client) SendMessage(friend network.Identity, text string) error {
	if c.Identity() == "" {
		return fmt.Errorf("not logged on")
	}
	c.steam.Social.SendMessage(steamid.SteamId(friend.Uint64()), steamlang.EChatEntryType_ChatMsg, text)
	return nil
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.steam.Disconnect()
	})
}

// pump translates go-steam events into boundary events until Close.
func (c *Client) pump() {
	defer close(c.events)
	for {
		select {
		case <-c.closed:
			return
		case event, ok := <-c.steam.Events():
			if !ok {
				return
			}
			c.handleEvent(event)
		}
	}
}

func (c *Client) handleEvent(event any) {
	switch e := event.(type) {
	case *steam.ConnectedEvent:
		c.mu.Lock()
		details := c.details
		c.mu.Unlock()
		c.steam.Auth.LogOn(&steam.LogOnDetails{
			Username:      details.AccountName,
			Password:      details.Password,
			TwoFactorCode: details.TwoFactorCode,
		})
	case *steam.LoggedOnEvent:
		if e.Result != steamlang.EResult_OK {
			c.emit(network.AuthFailedEvent{Err: resultError(e.Result)})
			return
		}
		id := network.MakeIdentity(uint64(c.steam.SteamId()))
		c.mu.Lock()
		c.identity = id
		c.mu.Unlock()
		c.steam.Social.SetPersonaState(steamlang.EPersonaState_Online)
		c.emit(network.LoggedOnEvent{Identity: id})
	case *steam.LogOnFailedEvent:
		err := resultError(e.Result)
		if isAuthFailure(e.Result) {
			c.emit(network.AuthFailedEvent{Err: err})
		} else {
			c.emit(network.DisconnectedEvent{Err: err})
		}
	case *steam.DisconnectedEvent:
		c.emit(network.DisconnectedEvent{})
	case *steam.ChatMsgEvent:
		if e.EntryType != steamlang.EChatEntryType_ChatMsg {
			return
		}
		c.emit(network.MessageEvent{
			From: network.MakeIdentity(uint64(e.ChatterId)),
			Text: e.Message,
		})
	case steam.FatalErrorEvent:
		c.log.Error().Err(e).Msg("Fatal steam client error")
		c.emit(network.DisconnectedEvent{Err: e})
	}
}

// emit delivers an event unless the client is already closed; a closed
// consumer must not block the pump.
func (c *Client) emit(e network.Event) {
	select {
	case c.events <- e:
	case <-c.closed:
	}
}

func resultError(result steamlang.EResult) error {
	return fmt.Errorf("steam logon failed: %v", result)
}

// isAuthFailure reports whether a logon result is a credential problem
// rather than a transient network condition. Credential problems are
// terminal; retrying them would only trip rate limits.
func isAuthFailure(result steamlang.EResult) bool {
	switch result {
	case steamlang.EResult_InvalidPassword,
		steamlang.EResult_TwoFactorCodeMismatch,
		steamlang.EResult_AccountLogonDenied,
		steamlang.EResult_AccountLoginDeniedNeedTwoFactor,
		steamlang.EResult_InvalidLoginAuthCode:
		return true
	default:
		return false
	}
}
