// Package session keeps the short-lived numeric captcha codes bound to HTTP
// sessions. A session carries at most one live code: issuing a new one
// supersedes the previous, and a sign-in attempt consumes the code whether
// or not the credentials turn out to be valid.
package session

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	code    int
	expires time.Time
}

// Codes stores one live code per session id with a fixed TTL.
type Codes struct {
	mu    sync.Mutex
	ttl   time.Duration
	codes map[string]entry

	now func() time.Time // test seam
}

func NewCodes(ttl time.Duration) *Codes {
	return &Codes{
		ttl:   ttl,
		codes: make(map[string]entry),
		now:   time.Now,
	}
}

// Issue generates a fresh 4-digit code (1000–9999) for the session,
// replacing any previous one.
func (c *Codes) Issue(sessionID string) int {
	code := 1000 + rand.IntN(9000)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	c.codes[sessionID] = entry{code: code, expires: c.now().Add(c.ttl)}
	return code
}

// Check consumes the session's live code and reports whether the supplied
// value matches it exactly. A missing, expired or already-consumed code
// never matches.
func (c *Codes) Check(sessionID, supplied string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()

	e, ok := c.codes[sessionID]
	if !ok {
		return false
	}
	delete(c.codes, sessionID)

	return supplied != "" && supplied == strconv.Itoa(e.code)
}

// prune drops expired codes. Caller must hold the mutex.
func (c *Codes) prune() {
	now := c.now()
	for id, e := range c.codes {
		if e.expires.Before(now) {
			delete(c.codes, id)
		}
	}
}
