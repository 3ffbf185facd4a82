// Copyright 2024-2026 Aiku AI

package relay

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// guardAlphabet is the character set Steam Guard codes are drawn from.
// It deliberately omits easily confused characters (0/O, 1/I, ...).
const guardAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// guardCodeLength is the fixed length of a Steam Guard code.
const guardCodeLength = 5

// GenerateAuthCode derives the Steam Guard one-time code for the given
// base64-encoded shared secret at time t. Codes rotate every 30 seconds, so
// a fresh code must be generated for every logon attempt.
func GenerateAuthCode(sharedSecret string, t time.Time) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("invalid shared secret: %w", err)
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(t.Unix()/30))

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	digest := mac.Sum(nil)

	offset := digest[len(digest)-1] & 0x0f
	code := binary.BigEndian.Uint32(digest[offset:offset+4]) & 0x7fffffff

	out := make([]byte, guardCodeLength)
	for i := range out {
		out[i] = guardAlphabet[code%uint32(len(guardAlphabet))]
		code /= uint32(len(guardAlphabet))
	}
	return string(out), nil
}
