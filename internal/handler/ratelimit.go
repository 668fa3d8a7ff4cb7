package handler

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DeviceIDHeader identifies the scoring device submitting writes.
const DeviceIDHeader = "X-Device-ID"

// DeviceLimiter keeps one token bucket per device. Devices idle for longer
// than idleTTL are dropped on the next sweep.
type DeviceLimiter struct {
	mu      sync.Mutex
	devices map[string]*deviceBucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type deviceBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewDeviceLimiter allows perSecond writes per device with the given burst.
func NewDeviceLimiter(perSecond float64, burst int) *DeviceLimiter {
	return &DeviceLimiter{
		devices: make(map[string]*deviceBucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether device may write now.
func (l *DeviceLimiter) Allow(device string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.devices[device]
	if !ok {
		b = &deviceBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.devices[device] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Sweep drops idle devices and returns how many remain.
func (l *DeviceLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	for id, b := range l.devices {
		if b.lastSeen.Before(cutoff) {
			delete(l.devices, id)
		}
	}
	return len(l.devices)
}

// WriteRateLimit limits POST and PUT requests per X-Device-ID, falling back to
// the client IP when the header is absent. Reads pass through.
func WriteRateLimit(l *DeviceLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}
			device := r.Header.Get(DeviceIDHeader)
			if device == "" {
				device = ClientIP(r)
			}
			if !l.Allow(device) {
				w.Header().Set("Retry-After", "1")
				RespondJSON(w, http.StatusTooManyRequests, ErrorBody{
					Code:      "RATE_LIMITED",
					Message:   "too many writes from this device",
					Retryable: true,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

