package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		window     time.Duration
		wantLimit  int
		wantWindow time.Duration
	}{
		{"explicit", 3, 10 * time.Second, 3, 10 * time.Second},
		{"zero falls back", 0, 0, DefaultRateLimit, DefaultRateWindow},
		{"negative falls back", -1, -time.Second, DefaultRateLimit, DefaultRateWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.limit, tt.window)
			if rl.Limit() != tt.wantLimit {
				t.Errorf("Limit() = %d, want %d", rl.Limit(), tt.wantLimit)
			}
			if rl.Window() != tt.wantWindow {
				t.Errorf("Window() = %v, want %v", rl.Window(), tt.wantWindow)
			}
		})
	}
}

func TestRateLimiter_AdmitsUpToLimit(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(5, 60*time.Second, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		if !rl.Check("channel-1") {
			t.Fatalf("check %d denied, want admitted", i+1)
		}
		clock.Advance(time.Second)
	}

	if rl.Check("channel-1") {
		t.Error("6th check admitted, want denied")
	}
}

func TestRateLimiter_ReadmitsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(2, 10*time.Second, WithClock(clock.Now))

	rl.Check("k")
	clock.Advance(3 * time.Second)
	rl.Check("k")

	if rl.Check("k") {
		t.Fatal("third check inside window admitted")
	}

	// The first instant is exactly window old: now - t < window no longer holds.
	clock.Advance(7 * time.Second)
	if !rl.Check("k") {
		t.Error("check after oldest instant left the window was denied")
	}
	if rl.Check("k") {
		t.Error("window should be full again")
	}
}

func TestRateLimiter_DeniedChecksRecordNothing(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(1, 10*time.Second, WithClock(clock.Now))

	if !rl.Check("k") {
		t.Fatal("first check denied")
	}

	// Hammer the key while it is locked out.
	for i := 0; i < 9; i++ {
		clock.Advance(time.Second)
		if rl.Check("k") {
			t.Fatalf("check at +%ds admitted", i+1)
		}
	}

	// Only the original admission counts, so the lockout ends 10s after it.
	clock.Advance(time.Second)
	if !rl.Check("k") {
		t.Error("denied checks extended the lockout")
	}
}

func TestRateLimiter_KeyIsolation(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(1, time.Minute, WithClock(clock.Now))

	if !rl.Check("a") {
		t.Fatal("a denied")
	}
	if rl.Check("a") {
		t.Fatal("a admitted twice")
	}
	if !rl.Check("b") {
		t.Error("exhausting a must not affect b")
	}
}

func TestRateLimiter_IdleKeysAreRetained(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(1, time.Second, WithClock(clock.Now))

	for i := 0; i < 50; i++ {
		rl.Check(fmt.Sprintf("origin-%d", i))
	}
	clock.Advance(time.Hour)

	if got := rl.TrackedKeys(); got != 50 {
		t.Errorf("TrackedKeys() = %d, want 50 (eviction is lazy)", got)
	}
}

func TestRateLimiter_MaxKeys(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(1, time.Minute, WithClock(clock.Now), WithMaxKeys(2))

	rl.Check("a")
	rl.Check("b")
	rl.Check("c") // forgets a

	if got := rl.TrackedKeys(); got != 2 {
		t.Fatalf("TrackedKeys() = %d, want 2", got)
	}
	if !rl.Check("a") {
		t.Error("forgotten key should start with an empty window")
	}
	if rl.Check("c") {
		t.Error("c is still tracked and full")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(50, time.Minute)

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Check("shared") {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	if admitted != 50 {
		t.Errorf("admitted = %d, want exactly 50", admitted)
	}
}

func TestCredential_IsConfigured(t *testing.T) {
	tests := []struct {
		cred Credential
		want bool
	}{
		{Credential{APIKey: "sk-1"}, true},
		{Credential{APIKey: "   "}, false},
		{Credential{BaseURL: "https://x"}, false},
	}

	for _, tt := range tests {
		if got := tt.cred.IsConfigured(); got != tt.want {
			t.Errorf("%+v.IsConfigured() = %v, want %v", tt.cred, got, tt.want)
		}
	}
}
