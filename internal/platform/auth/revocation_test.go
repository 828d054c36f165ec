package auth

import (
	"sync"
	"testing"
	"time"
)

func TestRevoke_and_IsRevoked(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	defer store.Close()

	store.Revoke("token-abc-123", time.Now().Add(time.Hour))

	if !store.IsRevoked("token-abc-123") {
		t.Error("expected token to be revoked")
	}
	if store.IsRevoked("unknown-jti") {
		t.Error("expected unknown JTI to not be revoked")
	}
}

func TestCleanup_RemovesExpired(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	defer store.Close()

	now := time.Now()
	store.Revoke("expired", now.Add(-time.Minute))
	store.Revoke("live", now.Add(time.Hour))

	store.cleanup(now)

	if store.IsRevoked("expired") {
		t.Error("expected expired entry to be dropped")
	}
	if !store.IsRevoked("live") {
		t.Error("expected live entry to remain")
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Count())
	}
}

func TestClose_Idempotent(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	store.Close()
	store.Close()
}

func TestConcurrentRevoke(t *testing.T) {
	store := NewTokenRevocationStore(time.Hour)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jti := time.Duration(i).String()
			store.Revoke(jti, time.Now().Add(time.Hour))
			_ = store.IsRevoked(jti)
		}(i)
	}
	wg.Wait()

	if store.Count() != 50 {
		t.Errorf("expected 50 entries, got %d", store.Count())
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("patient123", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "patient123" {
		t.Fatal("expected hash to differ from plaintext")
	}
	if !CheckPassword(hash, "patient123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}
