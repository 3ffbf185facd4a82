// Copyright 2024-2026 Aiku AI

package relay

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistry_ReserveIsExclusive(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	if err := reg.Reserve("alice", &Session{}); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	if err := reg.Reserve("alice", &Session{}); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}

	reg.Remove("alice")
	if err := reg.Reserve("alice", &Session{}); err != nil {
		t.Fatalf("reserve after remove failed: %v", err)
	}
}

// TestRegistry_ConcurrentReserve verifies exactly one of many concurrent
// reservations for the same account wins.
func TestRegistry_ConcurrentReserve(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = reg.Reserve("alice", &Session{})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, ErrAlreadyActive) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}
}

func TestRegistry_FindByIdentitySkipsNonLive(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	connecting := &Session{}
	connecting.setIdentity("76561198000000001")
	if err := reg.Reserve("alice", connecting); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, _, ok := reg.FindByIdentity("76561198000000001"); ok {
		t.Fatal("non-live session must not be found by identity")
	}

	connecting.setStatus(StatusLoggedIn)
	name, sess, ok := reg.FindByIdentity("76561198000000001")
	if !ok || name != "alice" || sess != connecting {
		t.Fatalf("expected alice, got %q ok=%v", name, ok)
	}
}

func TestRegistry_CredentialsSnapshot(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	for _, name := range []string{"alice", "bob"} {
		sess := &Session{Credential: testCredential(name)}
		if err := reg.Reserve(name, sess); err != nil {
			t.Fatalf("reserve %s failed: %v", name, err)
		}
	}

	creds := reg.Credentials()
	if len(creds) != 2 {
		t.Fatalf("expected 2 credentials, got %d", len(creds))
	}
	seen := map[string]bool{}
	for _, cred := range creds {
		seen[cred.AccountName] = true
	}
	if !seen["alice"] || !seen["bob"] {
		t.Fatalf("unexpected snapshot: %+v", creds)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", reg.Len())
	}
}
