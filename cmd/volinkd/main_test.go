package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsalzman/volink/internal/link"
	"github.com/jmsalzman/volink/internal/platform/fake"
)

func newTestLinker(t *testing.T) (*link.Linker, *fake.Platform) {
	t.Helper()
	plat := fake.New()
	plat.AddOutput("dev-a", "Speakers", 0.50)
	plat.AddOutput("dev-b", "Headphones", 0.25)

	logger := slog.Default()
	a := resolveSlot(plat, "dev-a", "Speakers", logger)
	b := resolveSlot(plat, "dev-b", "Headphones", logger)
	require.NotNil(t, a)
	require.NotNil(t, b)
	return link.New(a, b, logger), plat
}

func TestApplyPair_UnchangedPairSkipsRebind(t *testing.T) {
	l, plat := newTestLinker(t)
	before := plat.BindCount()

	// Same pair again, as written by a state change that only toggled the
	// link: both slots stay bound as they are.
	applyPair(l, plat, "dev-a", "Speakers", "dev-b", "Headphones", slog.Default())

	assert.Equal(t, before, plat.BindCount())
	st := l.Status()
	require.NotNil(t, st.A)
	require.NotNil(t, st.B)
	assert.Equal(t, "dev-a", st.A.ID)
	assert.Equal(t, "dev-b", st.B.ID)
}

func TestApplyPair_NewPairSwapsSlots(t *testing.T) {
	l, plat := newTestLinker(t)
	plat.AddOutput("dev-c", "Monitor", 0.75)
	before := plat.BindCount()

	applyPair(l, plat, "dev-a", "Speakers", "dev-c", "Monitor", slog.Default())

	assert.Greater(t, plat.BindCount(), before)
	st := l.Status()
	require.NotNil(t, st.B)
	assert.Equal(t, "dev-c", st.B.ID)
}

func TestApplyPair_UnresolvablePairKeepsCurrent(t *testing.T) {
	l, plat := newTestLinker(t)

	applyPair(l, plat, "dev-a", "Speakers", "ghost", "Ghost", slog.Default())

	st := l.Status()
	require.NotNil(t, st.B)
	assert.Equal(t, "dev-b", st.B.ID)
}

func TestResolveSlot_FallsBackToName(t *testing.T) {
	plat := fake.New()
	plat.AddOutput("dev-a", "Speakers", 0.50)

	// Stale ID, e.g. after a reboot reshuffled device IDs.
	ep := resolveSlot(plat, "old-id", "Speakers", slog.Default())
	require.NotNil(t, ep)
	assert.Equal(t, "dev-a", ep.ID())
}
