// Copyright 2024-2026 Aiku AI

package relay

import (
	"github.com/rs/zerolog"

	"github.com/aiku/steam-relay/pkg/relay/network"
)

// IncomingMessage is the structured event broadcast to control-channel
// observers for every relayed inbound message.
type IncomingMessage struct {
	FromLogin     string `json:"fromLogin"`
	ToLogin       string `json:"toLogin"`
	FromSteamID64 string `json:"fromSteamId64"`
	ToSteamID64   string `json:"toSteamId64"`
	Message       string `json:"message"`
}

// Broadcaster fans an inbound message out to all control-channel observers.
// There is no acknowledgement; delivery guarantees are whatever the
// underlying transport provides.
type Broadcaster interface {
	BroadcastIncoming(msg IncomingMessage)
}

// Router validates and executes message relay between managed accounts.
// Relay authorization is derived at send time from the sender's live friend
// list; nothing about it is stored.
type Router struct {
	registry    *Registry
	broadcaster Broadcaster
	log         zerolog.Logger
}

func NewRouter(registry *Registry, broadcaster Broadcaster, log zerolog.Logger) *Router {
	return &Router{
		registry:    registry,
		broadcaster: broadcaster,
		log:         log.With().Str("component", "router").Logger(),
	}
}

// Send relays a message from a managed account to a friend's SteamID64.
// The guard chain runs in order: sender live, identity well-formed,
// accepted friendship, recipient managed and live. Dispatch is
// fire-and-forget; a network-level send failure is surfaced as-is.
func (r *Router) Send(fromAccount, toSteamID64, text string) error {
	sess, ok := r.registry.Get(fromAccount)
	if !ok || !sess.Live() {
		return ErrUnknownSender
	}

	to, err := network.ParseIdentity(toSteamID64)
	if err != nil {
		return ErrInvalidRecipient
	}

	if sess.Client.Relationship(to) != network.RelationshipFriend {
		return ErrNotFriends
	}

	// Relay is deliberately restricted to accounts both managed by this
	// instance; the network itself would happily deliver to anyone.
	toAccount, target, ok := r.registry.FindByIdentity(to)
	if !ok || !target.Live() || toAccount == fromAccount {
		return ErrRecipientNotManaged
	}

	if err := sess.Client.SendMessage(to, text); err != nil {
		return err
	}
	r.log.Info().
		Str("from", fromAccount).
		Str("to_steam_id", toSteamID64).
		Msg("Sent message")
	return nil
}

// HandleInbound is invoked by the receiving account's session controller
// for every inbound friend message. Messages from identities with no live
// managed session are logged and dropped, never broadcast.
func (r *Router) HandleInbound(toAccount string, toID, fromID network.Identity, text string) {
	fromAccount, _, ok := r.registry.FindByIdentity(fromID)
	if !ok {
		r.log.Warn().
			Str("sender_steam_id", string(fromID)).
			Str("to", toAccount).
			Msg("Sender not authorized on server, dropping message")
		return
	}

	r.broadcaster.BroadcastIncoming(IncomingMessage{
		FromLogin:     fromAccount,
		ToLogin:       toAccount,
		FromSteamID64: string(fromID),
		ToSteamID64:   string(toID),
		Message:       text,
	})
	r.log.Info().
		Str("from", fromAccount).
		Str("to", toAccount).
		Msg("Relayed message to observers")
}
