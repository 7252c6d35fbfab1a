package ingest

import (
	"sync"

	"golang.org/x/time/rate"
)

// cardLimiter hands out one token bucket per card. Buckets are only created
// for cards that resolved, so the map is bounded by the cards table. A nil
// *cardLimiter allows everything.
type cardLimiter struct {
	mutex    sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newCardLimiter(perSecond float64, burst int) *cardLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &cardLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *cardLimiter) allow(card string) bool {
	if l == nil {
		return true
	}
	l.mutex.Lock()
	lim, ok := l.limiters[card]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[card] = lim
	}
	l.mutex.Unlock()
	return lim.Allow()
}

func (l *cardLimiter) len() int {
	if l == nil {
		return 0
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.limiters)
}
