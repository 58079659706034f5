package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterLocksAfterMaxAttempts(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _, _ := rl.Check("10.0.0.1")
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		rl.RecordAttempt("10.0.0.1", false)
	}

	allowed, remaining, lock := rl.Check("10.0.0.1")
	if allowed {
		t.Fatal("expected lockout after max failed attempts")
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if lock <= 0 {
		t.Fatalf("lock duration = %v, want > 0", lock)
	}
}

func TestRateLimiterSuccessClearsAttempts(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, time.Minute)

	rl.RecordAttempt("10.0.0.2", false)
	rl.RecordAttempt("10.0.0.2", false)
	rl.RecordAttempt("10.0.0.2", true)

	if got := rl.GetRemainingAttempts("10.0.0.2"); got != 3 {
		t.Fatalf("remaining after success = %d, want 3", got)
	}
}

func TestRateLimiterIsolatesIPs(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, time.Minute)

	rl.RecordAttempt("10.0.0.3", false)

	if allowed, _, _ := rl.Check("10.0.0.3"); allowed {
		t.Fatal("locked IP should not be allowed")
	}
	if allowed, _, _ := rl.Check("10.0.0.4"); !allowed {
		t.Fatal("other IPs should be unaffected")
	}
}
