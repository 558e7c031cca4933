package verification

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultAlertInterval = 15 * time.Minute

// alertGate lets one alert per distinct key through per interval. Keys are
// derived from the misconfigured setting names, so the map stays small.
type alertGate struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
}

func newAlertGate(interval time.Duration) *alertGate {
	return &alertGate{interval: interval, limiters: make(map[string]*rate.Limiter)}
}

func (g *alertGate) allow(key string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(g.interval), 1)
		g.limiters[key] = l
	}
	return l.AllowN(now, 1)
}
