package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// User is an authenticated caller. Identity is a mock: the x-user header is
// resolved against a fixed table, standing in for a real auth provider.
type User struct {
	ID   string
	Role string
}

const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
)

var mockUsers = map[string]User{
	"netrunnerX":   {ID: "netrunnerX", Role: RoleAdmin},
	"reliefAdmin":  {ID: "reliefAdmin", Role: RoleAdmin},
	"volunteerJoe": {ID: "volunteerJoe", Role: RoleContributor},
	"demoUser":     {ID: "demoUser", Role: RoleContributor},
}

const userKey = "user"

// Auth resolves the x-user header. Missing or unknown users are rejected
// before any handler logic runs.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("x-user")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing x-user header"})
			return
		}
		u, ok := mockUsers[id]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// RequireRole gates a route on the authenticated user's role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c)
		if !ok || u.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

// ipLimiter hands out one token bucket per client IP. Buckets are never
// evicted; the IP space of a deployment is small enough that this is fine.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newIPLimiter(events int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(events) / window.Seconds()),
		burst:   events,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = b
	}
	l.mu.Unlock()
	return b.Allow()
}

// RateLimit builds a per-IP limiter middleware allowing events per window.
// Route classes: general 100/15m, geocoding 5/m, image verification 3/m,
// report submission 10/5m, admin mutations 20/5m.
func RateLimit(events int, window time.Duration) gin.HandlerFunc {
	l := newIPLimiter(events, window)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}
