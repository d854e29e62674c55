package ratelimit

import "testing"

func TestAllowBurst(t *testing.T) {
	krl := New(1, 3)

	for i := range 3 {
		if !krl.AllowUser(42) {
			t.Fatalf("request %d should be within burst", i+1)
		}
	}
	if krl.AllowUser(42) {
		t.Error("request beyond burst should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1, 1)

	if !krl.AllowUser(1) {
		t.Fatal("first request for user 1 should pass")
	}
	if krl.AllowUser(1) {
		t.Error("second request for user 1 should be denied")
	}
	if !krl.AllowUser(2) {
		t.Error("user 2 has an independent bucket")
	}
}
