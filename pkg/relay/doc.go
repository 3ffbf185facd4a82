// Copyright 2024-2026 Aiku AI

// Package relay implements the multi-account Steam session core: credential
// persistence, per-account session lifecycle, and authorized message relay
// between managed accounts.
//
// # Core Types
//
// [Manager] is the facade: Login, SendMessage, AutoLoginAll and account
// persistence. One Manager owns all session state for the process.
//
// [Registry] is the concurrency-safe account-name → [Session] map shared by
// every session controller and the [Router]. All inserts, removals and
// identity scans go through it; nothing else mutates session membership.
//
// Each account runs one lifecycle controller goroutine driving its
// connection through Connecting → LoggedIn → Disconnected with exponential
// reconnect backoff (5s floor, doubling, 60s ceiling, reset on success).
// Authentication errors are terminal: the session is removed and no
// reconnect is scheduled. The initial Login call resolves exactly once, on
// the first terminal transition; everything afterwards is log-only.
//
// [Router] authorizes relay at send time from the sender's live friend
// list and fans inbound messages out to control-channel observers via the
// [Broadcaster] interface. Relay is restricted to accounts managed by this
// instance on both ends.
//
// # Sub-packages
//
//   - network defines the chat-network client boundary.
//   - network/steamnet adapts go-steam to that boundary.
//   - control serves the WebSocket control channel.
package relay
