// Copyright 2024-2026 Aiku AI

// Package network defines the boundary between the relay core and the Steam
// chat network. The core only sees the Client interface and the event types
// below; the actual wire protocol lives in the steamnet sub-package.
package network

// LogOnDetails carries everything needed for one authentication attempt.
// TwoFactorCode is time-sensitive and must be regenerated for every attempt.
type LogOnDetails struct {
	AccountName   string
	Password      string
	TwoFactorCode string
}

// Event is a marker for lifecycle and message events emitted by a Client.
// Concrete types: LoggedOnEvent, DisconnectedEvent, AuthFailedEvent,
// MessageEvent.
type Event interface{}

// LoggedOnEvent signals a successful authentication. Identity is the
// network identity the account is now connected as.
type LoggedOnEvent struct {
	Identity Identity
}

// DisconnectedEvent signals a recoverable network-level disconnect. The
// client can be logged on again with fresh details.
type DisconnectedEvent struct {
	Err error
}

// AuthFailedEvent signals a terminal authentication failure (bad password,
// bad Steam Guard code, banned account). The client will not recover.
type AuthFailedEvent struct {
	Err error
}

// MessageEvent is an inbound friend chat message.
type MessageEvent struct {
	From Identity
	Text string
}

// Client is one connection to the chat network for a single account. A
// Client is owned exclusively by the session controller of that account.
type Client interface {
	// LogOn starts an authentication attempt. Progress is reported
	// asynchronously on Events. Calling LogOn again after a
	// DisconnectedEvent retries on the same handle.
	LogOn(details LogOnDetails)
	// Events returns the lifecycle/message event stream. The channel is
	// closed after Close.
	Events() <-chan Event
	// Identity returns the connected network identity, or "" before the
	// first LoggedOnEvent.
	Identity() Identity
	// Relationship reports the live friendship state with another identity.
	Relationship(friend Identity) Relationship
	// SendMessage dispatches a chat message to a friend. No retry; a
	// network-level failure is returned as-is.
	SendMessage(friend Identity, text string) error
	// Close tears the connection down and stops the event stream.
	Close()
}

// Factory creates a fresh, unconnected Client. One Client is created per
// managed account at login time.
type Factory func() Client
