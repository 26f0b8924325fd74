package ratelimiter

import (
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	maxTrackedChats = 1024
)

// RateLimiter spaces summarize requests per chat. Group chats (negative IDs)
// get a longer interval than private ones.
type RateLimiter struct {
	mu       sync.Mutex
	lastSeen map[int64]time.Time
	now      func() time.Time
}

func New() *RateLimiter {
	return &RateLimiter{
		lastSeen: make(map[int64]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for chatID when the chat's interval has passed.
// Otherwise it returns false and how long the caller should wait.
func (rl *RateLimiter) Allow(chatID int64) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	if lastSeen, exists := rl.lastSeen[chatID]; exists {
		if delay := getDelay(chatID, lastSeen, now); delay > 0 {
			return false, delay
		}
	}

	if len(rl.lastSeen) >= maxTrackedChats {
		rl.forgetLocked(now)
	}

	rl.lastSeen[chatID] = now

	return true, 0
}

// forgetLocked drops chats whose longest interval has passed.
func (rl *RateLimiter) forgetLocked(now time.Time) {
	for chatID, lastSeen := range rl.lastSeen {
		if now.Sub(lastSeen) >= groupChatRate {
			delete(rl.lastSeen, chatID)
		}
	}
}

func getDelay(
	chatID int64,
	lastSeen time.Time,
	now time.Time,
) time.Duration {
	elapsed := now.Sub(lastSeen)
	rate := getRate(chatID)

	return max(rate-elapsed, 0)
}

func getRate(chatID int64) time.Duration {
	if chatID < 0 {
		return groupChatRate
	}
	return privateChatRate
}
