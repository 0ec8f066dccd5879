package client

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-irc/reactor"
)

func TestTokenRoundTrip(t *testing.T) {
	owner := uuid.New()
	roundTrip := func(i uint32) bool {
		id := SessionID{index: int(i), owner: owner}
		tok, err := SessionContext(id).Token()
		if err != nil {
			return false
		}
		ctx, ok := contextFromToken(tok, owner)
		if !ok {
			return false
		}
		got, isSession := ctx.Session()
		return isSession && got == id
	}
	require.NoError(t, quick.Check(roundTrip, nil))

	ctx, ok := contextFromToken(controlToken, owner)
	require.True(t, ok)
	assert.True(t, ctx.IsControl())
}

func TestTokensAreDistinct(t *testing.T) {
	distinct := func(a, b uint32) bool {
		ta, errA := tokenForIndex(int(a))
		tb, errB := tokenForIndex(int(b))
		if errA != nil || errB != nil {
			return false
		}
		if ta == controlToken || tb == controlToken {
			return false
		}
		return (a == b) == (ta == tb)
	}
	require.NoError(t, quick.Check(distinct, nil))
}

func TestNegativeIndexHasNoToken(t *testing.T) {
	negative := func(i int32) bool {
		if i >= 0 {
			return true
		}
		_, err := SessionContext(SessionID{index: int(i)}).Token()
		return err != nil
	}
	require.NoError(t, quick.Check(negative, nil))
}

func TestSentinelTokenIsNeverDecoded(t *testing.T) {
	_, ok := contextFromToken(reactor.SentinelToken, uuid.New())
	assert.False(t, ok)

	tok, err := tokenForIndex(math.MaxInt32)
	require.NoError(t, err)
	assert.NotEqual(t, reactor.SentinelToken, tok)
}

func TestTokenSpaceBoundary(t *testing.T) {
	restore := tokenSpace
	t.Cleanup(func() { tokenSpace = restore })
	tokenSpace = 4 // tokens 1..3 are sessions 0..2

	_, err := tokenForIndex(2)
	require.NoError(t, err)
	_, err = tokenForIndex(3)
	assert.ErrorIs(t, err, ErrTooManySessions)

	_, ok := contextFromToken(reactor.Token(4), uuid.New())
	assert.False(t, ok)
}
