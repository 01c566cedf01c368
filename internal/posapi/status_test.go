package posapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	require.True(t, CanTransition(StatusOpen, StatusInProgress))
	require.True(t, CanTransition(StatusOpen, StatusServed))
	require.True(t, CanTransition(StatusInProgress, StatusPaid))
	require.True(t, CanTransition(StatusServed, StatusPaid))

	// cancel is allowed from every non-terminal state
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusServed} {
		require.True(t, CanTransition(s, StatusCancelled), "from %s", s)
	}

	// terminal states never move
	for _, to := range []Status{StatusOpen, StatusInProgress, StatusServed, StatusPaid, StatusCancelled} {
		require.False(t, CanTransition(StatusPaid, to))
		require.False(t, CanTransition(StatusCancelled, to))
	}
}

func TestValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusServed, StatusPaid, StatusCancelled} {
		require.True(t, s.Valid(), "%s", s)
	}
	require.False(t, Status("shipped").Valid())
	require.False(t, Status("").Valid())
}

func TestTerminal(t *testing.T) {
	require.True(t, StatusPaid.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusOpen.Terminal())
	require.False(t, StatusInProgress.Terminal())
	require.False(t, StatusServed.Terminal())
}
