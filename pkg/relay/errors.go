// Copyright 2024-2026 Aiku AI

package relay

import "errors"

// Error taxonomy for account and relay operations. The messages double as
// control-channel error payloads, so they are operator-facing text.
var (
	// ErrAlreadyActive: a login was attempted for an account that already
	// has a live or connecting session.
	ErrAlreadyActive = errors.New("Already logged in")
	// ErrUnknownSender: the sending account has no live session.
	ErrUnknownSender = errors.New("Sender account not authorized")
	// ErrInvalidRecipient: the recipient is not a well-formed SteamID64.
	ErrInvalidRecipient = errors.New("Invalid steamID64")
	// ErrNotFriends: the recipient is not an accepted friend of the sender.
	ErrNotFriends = errors.New("Recipient is not in your friend list")
	// ErrRecipientNotManaged: relay is only supported between two accounts
	// managed by this instance, and the recipient is not one of them.
	ErrRecipientNotManaged = errors.New("Recipient account not authorized")
)

// errShuttingDown releases login waiters when the manager stops before
// their session reaches a terminal state.
var errShuttingDown = errors.New("relay is shutting down")
