package session

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueRange(t *testing.T) {
	c := NewCodes(time.Minute)

	for i := 0; i < 100; i++ {
		code := c.Issue("sid")
		assert.GreaterOrEqual(t, code, 1000)
		assert.LessOrEqual(t, code, 9999)
	}
}

func TestCheckMatchesOnce(t *testing.T) {
	c := NewCodes(time.Minute)

	code := c.Issue("sid")
	assert.True(t, c.Check("sid", strconv.Itoa(code)))

	// the code is consumed by the first check
	assert.False(t, c.Check("sid", strconv.Itoa(code)))
}

func TestCheckConsumesOnMismatch(t *testing.T) {
	c := NewCodes(time.Minute)

	code := c.Issue("sid")
	assert.False(t, c.Check("sid", "0"))

	// a failed attempt burns the code too
	assert.False(t, c.Check("sid", strconv.Itoa(code)))
}

func TestCheckUnknownSession(t *testing.T) {
	c := NewCodes(time.Minute)

	assert.False(t, c.Check("sid", "1234"))
	assert.False(t, c.Check("sid", ""))
}

func TestIssueSupersedesPreviousCode(t *testing.T) {
	c := NewCodes(time.Minute)

	first := c.Issue("sid")
	var second int
	for {
		second = c.Issue("sid")
		if second != first {
			break
		}
	}

	assert.False(t, c.Check("sid", strconv.Itoa(first)))
	// the old code was consumed together with the session entry
	assert.False(t, c.Check("sid", strconv.Itoa(second)))

	third := c.Issue("sid")
	assert.True(t, c.Check("sid", strconv.Itoa(third)))
}

func TestCodesExpire(t *testing.T) {
	c := NewCodes(time.Minute)

	current := time.Now()
	c.now = func() time.Time { return current }

	code := c.Issue("sid")

	current = current.Add(2 * time.Minute)
	assert.False(t, c.Check("sid", strconv.Itoa(code)))
}

func TestSessionsAreIndependent(t *testing.T) {
	c := NewCodes(time.Minute)

	a := c.Issue("sid-a")
	b := c.Issue("sid-b")

	assert.True(t, c.Check("sid-a", strconv.Itoa(a)))
	assert.True(t, c.Check("sid-b", strconv.Itoa(b)))
}
