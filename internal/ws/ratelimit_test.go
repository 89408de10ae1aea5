package ws

import (
	"testing"
	"time"
)

func TestMessageLimiterFixedWindow(t *testing.T) {
	current := time.Unix(1000, 0)
	limiter := NewMessageLimiter(10*time.Second, 30)
	limiter.now = func() time.Time { return current }

	for i := 0; i < 30; i++ {
		if !limiter.Allow("conn-1") {
			t.Fatalf("message %d must be allowed", i+1)
		}
	}
	if limiter.Allow("conn-1") {
		t.Fatal("31st message in window must be denied")
	}

	// Окно фиксированное: денай не сдвигает границу
	current = current.Add(9 * time.Second)
	if limiter.Allow("conn-1") {
		t.Fatal("still inside the same window")
	}

	current = current.Add(2 * time.Second)
	if !limiter.Allow("conn-1") {
		t.Fatal("first message of the next window must be allowed")
	}
}

func TestMessageLimiterKeysIndependent(t *testing.T) {
	limiter := NewMessageLimiter(10*time.Second, 1)

	if !limiter.Allow("a") {
		t.Fatal("first message for key a must pass")
	}
	if limiter.Allow("a") {
		t.Fatal("second message for key a must be denied")
	}
	if !limiter.Allow("b") {
		t.Fatal("key b has its own counter")
	}
}

func TestMessageLimiterForget(t *testing.T) {
	limiter := NewMessageLimiter(time.Minute, 1)

	limiter.Allow("conn-1")
	if limiter.Allow("conn-1") {
		t.Fatal("limit reached")
	}

	limiter.Forget("conn-1")
	if !limiter.Allow("conn-1") {
		t.Fatal("Forget must reset the counter")
	}
}
