package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yzt-loan/loanadmin/internal/common"
)

func TestIssueAndVerify(t *testing.T) {
	g := NewGateway([]byte("secretKey"), time.Hour)

	token, err := g.Issue("account-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	accountID, err := g.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)
}

func TestVerifyExpiredToken(t *testing.T) {
	g := NewGateway([]byte("secretKey"), time.Hour)

	issued := time.Now().Add(-2 * time.Hour)
	g.now = func() time.Time { return issued }
	token, err := g.Issue("account-1")
	require.NoError(t, err)

	g.now = time.Now
	_, err = g.Verify(token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerifyInvalidToken(t *testing.T) {
	g := NewGateway([]byte("secretKey"), time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := g.Verify("not.a.token")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewGateway([]byte("otherKey"), time.Hour)
		token, err := other.Issue("account-1")
		require.NoError(t, err)

		_, err = g.Verify(token)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})
}

func TestInvalidate(t *testing.T) {
	g := NewGateway([]byte("secretKey"), time.Hour)

	token, err := g.Issue("account-1")
	require.NoError(t, err)

	_, err = g.Verify(token)
	require.NoError(t, err)

	g.Invalidate(token)

	_, err = g.Verify(token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	// another token for the same account is unaffected
	token2, err := g.Issue("account-1")
	require.NoError(t, err)
	_, err = g.Verify(token2)
	assert.NoError(t, err)
}

func TestInvalidateMalformedTokenIsNoop(t *testing.T) {
	g := NewGateway([]byte("secretKey"), time.Hour)

	g.Invalidate("not.a.token")
	assert.Empty(t, g.revoked)
}

func TestRevocationSetIsPruned(t *testing.T) {
	g := NewGateway([]byte("secretKey"), time.Hour)

	current := time.Now()
	g.now = func() time.Time { return current }

	token, err := g.Issue("account-1")
	require.NoError(t, err)
	g.Invalidate(token)
	assert.Len(t, g.revoked, 1)

	// once the token would have expired anyway the entry is dropped
	current = current.Add(2 * time.Hour)
	g.Invalidate("not.a.token") // any call prunes
	g.mu.Lock()
	g.prune()
	n := len(g.revoked)
	g.mu.Unlock()
	assert.Zero(t, n)
}
