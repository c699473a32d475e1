package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	MessagesPerMinute int // Max chat messages per conversation per minute
	BurstSize         int // Allow burst of N requests
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// ChatRateLimiter manages per-conversation rate limits for the chat
// route. Keyed by chat id because that is the unit a user interacts with.
type ChatRateLimiter struct {
	config  RateLimiterConfig
	buckets map[string]*TokenBucket
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewChatRateLimiter creates a per-conversation rate limiter
func NewChatRateLimiter(config RateLimiterConfig, logger *zap.Logger) *ChatRateLimiter {
	return &ChatRateLimiter{
		config:  config,
		buckets: make(map[string]*TokenBucket),
		logger:  logger,
	}
}

// AllowMessage checks if a chat message can be sent for the conversation
func (rl *ChatRateLimiter) AllowMessage(chatID string) bool {
	rl.mu.Lock()
	bucket, exists := rl.buckets[chatID]
	if !exists {
		refillRate := float64(rl.config.MessagesPerMinute) / 60.0
		bucket = NewTokenBucket(float64(rl.config.BurstSize), refillRate)
		rl.buckets[chatID] = bucket

		// Bound the map so long-running processes do not accumulate
		// buckets for dead conversations.
		if len(rl.buckets) > 1000 {
			rl.logger.Info("Resetting rate limiter cache", zap.Int("buckets", len(rl.buckets)))
			rl.buckets = map[string]*TokenBucket{chatID: bucket}
		}
	}
	rl.mu.Unlock()

	return bucket.Allow()
}
