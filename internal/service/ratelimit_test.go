package service_test

import (
	"testing"

	"github.com/msomdec/taskflow/internal/service"
)

func TestKeyedLimiter_AllowsUpToCapacity(t *testing.T) {
	kl := service.NewKeyedLimiter(1, 3) // rate=1/s, burst=3
	defer kl.Close()

	// Should allow 3 requests immediately (full bucket).
	for i := 0; i < 3; i++ {
		if !kl.Allow("test-key") {
			t.Fatalf("request %d should be allowed (burst not yet spent)", i+1)
		}
	}

	// 4th request should be denied (burst spent).
	if kl.Allow("test-key") {
		t.Fatal("4th request should be denied (burst spent)")
	}
}

func TestKeyedLimiter_DifferentKeysAreIndependent(t *testing.T) {
	kl := service.NewKeyedLimiter(1, 1) // burst=1
	defer kl.Close()

	if !kl.Allow("198.51.100.1") {
		t.Fatal("198.51.100.1 first request should be allowed")
	}
	if kl.Allow("198.51.100.1") {
		t.Fatal("198.51.100.1 second request should be denied")
	}

	// 198.51.100.2 has its own bucket.
	if !kl.Allow("198.51.100.2") {
		t.Fatal("198.51.100.2 first request should be allowed (independent limiter)")
	}
}

func TestKeyedLimiter_NewKeyStartsFull(t *testing.T) {
	kl := service.NewKeyedLimiter(10, 5)
	defer kl.Close()

	for i := 0; i < 5; i++ {
		if !kl.Allow("new-key") {
			t.Fatalf("new key request %d should be allowed (starts full)", i+1)
		}
	}
	if kl.Allow("new-key") {
		t.Fatal("6th request should be denied")
	}
}

func TestKeyedLimiter_ZeroRateNeverRefills(t *testing.T) {
	kl := service.NewKeyedLimiter(0, 2) // never refills
	defer kl.Close()

	if !kl.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if !kl.Allow("k") {
		t.Fatal("second request should be allowed")
	}
	if kl.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}
