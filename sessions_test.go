package main

import (
	"testing"
)

func newTestTracker(limit int) *SessionTracker {
	return NewSessionTracker(limit, 1000, 1000, []byte("test-secret"))
}

func TestTryReserveStopsAtLimit(t *testing.T) {
	tracker := newTestTracker(3)

	for i := 0; i < 3; i++ {
		if !tracker.TryReserve("s1") {
			t.Fatalf("reservation %d should succeed", i+1)
		}
	}
	if tracker.TryReserve("s1") {
		t.Fatal("reservation past the limit should fail")
	}
	if tracker.Count("s1") != 3 {
		t.Fatalf("count = %d, want 3", tracker.Count("s1"))
	}

	// Other sessions are unaffected.
	if !tracker.TryReserve("s2") {
		t.Fatal("fresh session should reserve")
	}
}

func TestReleaseFreesQuota(t *testing.T) {
	tracker := newTestTracker(1)
	if !tracker.TryReserve("s1") {
		t.Fatal("first reservation should succeed")
	}
	tracker.Release("s1")
	if !tracker.TryReserve("s1") {
		t.Fatal("reservation after release should succeed")
	}
}

func TestRestoreClampsToLimit(t *testing.T) {
	tracker := newTestTracker(5)

	tracker.Restore("s1", 99)
	if tracker.TryReserve("s1") {
		t.Fatal("restored-at-limit session should not reserve")
	}

	tracker.Restore("s2", -4)
	if tracker.Count("s2") != 0 {
		t.Fatalf("negative restore should clamp to 0, got %d", tracker.Count("s2"))
	}
}

func TestResumeTokenRoundTrip(t *testing.T) {
	tracker := newTestTracker(7)
	tracker.Restore("s1", 4)

	token, err := tracker.IssueToken("s1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	count, err := tracker.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if count != 4 {
		t.Fatalf("token carried count %d, want 4", count)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	tracker := newTestTracker(7)
	token, err := tracker.IssueToken("s1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	other := NewSessionTracker(7, 1000, 1000, []byte("different-secret"))
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret should not parse")
	}

	if _, err := tracker.ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage token should not parse")
	}
}

func TestAllowThrottlesBurst(t *testing.T) {
	tracker := NewSessionTracker(7, 1, 2, []byte("test-secret"))

	if !tracker.Allow("s1") || !tracker.Allow("s1") {
		t.Fatal("burst allowance should admit the first two actions")
	}
	if tracker.Allow("s1") {
		t.Fatal("third immediate action should be throttled")
	}
	// Throttling is per session.
	if !tracker.Allow("s2") {
		t.Fatal("another session should have its own budget")
	}
}
