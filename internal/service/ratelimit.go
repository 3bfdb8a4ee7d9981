package service

import (
	"sync"
	"time"
)

// RateLimitService is a fixed-window in-memory limiter keyed by caller
// IP. Single process state: each api instance enforces its own window,
// which is the intent for order creation throttling.
type RateLimitService struct {
	mu       sync.Mutex
	window   time.Duration
	limit    uint
	counters map[string]*rateWindow
}

type rateWindow struct {
	start time.Time
	count uint
}

func NewRateLimitService(limit uint, window time.Duration) *RateLimitService {
	return &RateLimitService{
		window:   window,
		limit:    limit,
		counters: make(map[string]*rateWindow),
	}
}

// Allow reports whether key may perform another action in the current
// window and counts the attempt.
func (s *RateLimitService) Allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.counters[key]
	if !ok || now.Sub(w.start) >= s.window {
		s.counters[key] = &rateWindow{start: now, count: 1}
		return true
	}

	if w.count >= s.limit {
		return false
	}
	w.count++
	return true
}

// Sweep drops expired windows, called periodically so the map does not
// grow with one entry per IP forever.
func (s *RateLimitService) Sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.counters {
		if now.Sub(w.start) >= s.window {
			delete(s.counters, key)
		}
	}
}
