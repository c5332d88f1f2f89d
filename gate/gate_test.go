package gate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullEnableDisableCycle(t *testing.T) {
	g := New("object")

	require.NoError(t, g.Transition(Enabling, "user enable"))
	require.NoError(t, g.Transition(Enabled, "model loaded"))
	require.NoError(t, g.Transition(Disabling, "user disable"))
	require.NoError(t, g.Transition(Disabled, "disable committed"))

	assert.Equal(t, Disabled, g.State())
}

func TestIllegalTransitionRejected(t *testing.T) {
	g := New("object")

	// Direct activation without passing through Enabling.
	err := g.Transition(Enabled, "shortcut")
	assert.Error(t, err)
	assert.Equal(t, Disabled, g.State())
	assert.Empty(t, g.History(), "rejected transitions must not be recorded")
}

func TestErrorRequiresExplicitRetry(t *testing.T) {
	g := New("depth")

	require.NoError(t, g.Transition(Enabling, "user enable"))
	require.NoError(t, g.Transition(Error, "runtime unavailable"))

	// Only a retry through Enabling leaves Error.
	assert.Error(t, g.Transition(Enabled, "spontaneous recovery"))
	require.NoError(t, g.Transition(Enabling, "user retry"))
}

func TestDoubleInitFailureHistory(t *testing.T) {
	g := New("text")

	require.NoError(t, g.Transition(Enabling, "user enable"))
	require.NoError(t, g.Transition(Error, "model file missing"))
	require.NoError(t, g.Transition(Enabling, "user retry"))
	require.NoError(t, g.Transition(Error, "runtime out of memory"))

	h := g.History()
	require.Len(t, h, 4)
	assert.Equal(t, Transition{From: Disabled, To: Enabling, Reason: "user enable", At: h[0].At}, h[0])
	assert.Equal(t, Transition{From: Enabling, To: Error, Reason: "model file missing", At: h[1].At}, h[1])
	assert.Equal(t, Transition{From: Error, To: Enabling, Reason: "user retry", At: h[2].At}, h[2])
	assert.Equal(t, Transition{From: Enabling, To: Error, Reason: "runtime out of memory", At: h[3].At}, h[3])
}

func TestHistoryRingIsBounded(t *testing.T) {
	g := New("pose")

	// 30 full enable/disable cycles = 120 transitions.
	for i := 0; i < 30; i++ {
		reason := fmt.Sprintf("cycle %d", i)
		require.NoError(t, g.Transition(Enabling, reason))
		require.NoError(t, g.Transition(Enabled, reason))
		require.NoError(t, g.Transition(Disabling, reason))
		require.NoError(t, g.Transition(Disabled, reason))
	}

	h := g.History()
	require.Len(t, h, HistoryCapacity)
	// Oldest-first ordering: the final entry is the last transition made.
	assert.Equal(t, Disabled, h[len(h)-1].To)
	assert.Equal(t, "cycle 29", h[len(h)-1].Reason)
}

func TestListenersObserveAcceptedTransitionsOnly(t *testing.T) {
	g := New("face")

	var seen []Transition
	g.Subscribe(func(name string, tr Transition) {
		assert.Equal(t, "face", name)
		seen = append(seen, tr)
	})

	require.NoError(t, g.Transition(Enabling, "user enable"))
	assert.Error(t, g.Transition(Disabled, "illegal"))

	require.Len(t, seen, 1)
	assert.Equal(t, Enabling, seen[0].To)
}
