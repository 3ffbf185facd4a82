// Copyright 2024-2026 Aiku AI

package network

import (
	"fmt"
	"strconv"
)

// Identity is a SteamID64 in decimal string form, e.g. "76561198012345678".
type Identity string

// individualIDBase is the SteamID64 of account ID 0 in the public universe.
// Every individual account ID is at or above this value.
const individualIDBase uint64 = 76561197960265728

// MakeIdentity creates an Identity from a raw SteamID64.
func MakeIdentity(id uint64) Identity {
	return Identity(strconv.FormatUint(id, 10))
}

// ParseIdentity validates a SteamID64 string and returns it as an Identity.
func ParseIdentity(s string) (Identity, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return "", fmt.Errorf("not a numeric steamID64: %q", s)
	}
	if id < individualIDBase {
		return "", fmt.Errorf("steamID64 out of range: %q", s)
	}
	return Identity(s), nil
}

// Uint64 returns the numeric SteamID64. The identity must have been
// produced by MakeIdentity or ParseIdentity.
func (i Identity) Uint64() uint64 {
	id, _ := strconv.ParseUint(string(i), 10, 64)
	return id
}

// Relationship is the friendship state between two Steam accounts.
type Relationship int

const (
	RelationshipNone Relationship = iota
	RelationshipRequestRecipient
	RelationshipRequestInitiator
	// RelationshipFriend is a mutual, accepted friendship. Only this state
	// authorizes message relay.
	RelationshipFriend
)
