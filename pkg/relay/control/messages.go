// Copyright 2024-2026 Aiku AI

package control

import "encoding/json"

// Envelope is the control-channel wire frame: an event name plus payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound and outbound event names.
const (
	EventLogin             = "login"
	EventLoginResult       = "login-result"
	EventSendMessage       = "send-message"
	EventSendMessageResult = "send-message-result"
	EventIncomingMessage   = "incoming-message"
)

// LoginRequest is the payload of a login event.
type LoginRequest struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	SharedSecret string `json:"shared_secret"`
}

// SendMessageRequest is the payload of a send-message event.
type SendMessageRequest struct {
	Login           string `json:"login"`
	FriendSteamID64 string `json:"friendSteamId64"`
	Message         string `json:"message"`
}

// Result is the payload of every request's result event. Exactly one
// Result is emitted per request, success or failure, never silence.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func successResult(message string) Result {
	return Result{Success: true, Message: message}
}

func failureResult(err string) Result {
	return Result{Success: false, Error: err}
}
