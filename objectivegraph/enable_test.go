package objectivegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CausalGo/objectivegraph/consensus"
	"github.com/CausalGo/objectivegraph/weight"
)

// TestDisableThenReenableWithoutIterateIsNoop verifies that disabling and
// immediately re-enabling a factor, with no intervening Iterate, leaves
// every graph observable identical to having never touched it.
func TestDisableThenReenableWithoutIterateIsNoop(t *testing.T) {
	g := New(ADMM, 0.1, WithParallel(false))
	v := g.CreateVariable(4.0, weight.Standard)
	e1 := g.CreateEdge(v)
	e2 := g.CreateEdge(v)
	f1 := g.CreateFactor([]EdgeRef{e1}, constantMinimizer(1.0))
	g.CreateFactor([]EdgeRef{e2}, constantMinimizer(2.0))

	before := g.NumEnabledEdges()

	changed := g.SetFactorEnabled(f1, false)
	require.True(t, changed)
	changed = g.SetFactorEnabled(f1, true)
	require.True(t, changed)

	assert.Equal(t, before, g.NumEnabledEdges())
	assert.True(t, g.FactorEnabled(f1))

	g.Iterate()
	want := 1.5 // mean of 1.0 and 2.0, unaffected by the disable/enable churn
	assert.InDelta(t, want, g.Value(v), 1e-12)
}

// TestDisabledFactorMinimizerNeverInvoked verifies a disabled factor takes
// no part in the sweep; with 0 of 1 factors enabled the sweep takes the
// sparse strategy.
func TestDisabledFactorMinimizerNeverInvoked(t *testing.T) {
	g := New(ADMM, 0.1, WithParallel(false))
	v := g.CreateVariable(0, weight.Standard)
	e := g.CreateEdge(v)

	invoked := false
	f := g.CreateFactor([]EdgeRef{e}, func(buf []consensus.Weighted) {
		invoked = true
	})

	ok := g.SetFactorEnabled(f, false)
	require.True(t, ok)

	g.sweepFactors()
	assert.False(t, invoked, "minimizer of a disabled factor must not run")
}

// TestEnabledEdgesReflectsOnlyEnabledFactors verifies that, after a sweep,
// a variable's enabled-edge cache contains exactly the edges whose owning
// factor is currently enabled.
func TestEnabledEdgesReflectsOnlyEnabledFactors(t *testing.T) {
	g := New(ADMM, 0.1, WithParallel(false))
	v := g.CreateVariable(0, weight.Standard)

	e1 := g.CreateEdge(v)
	e2 := g.CreateEdge(v)
	e3 := g.CreateEdge(v)
	g.CreateFactor([]EdgeRef{e1}, constantMinimizer(1.0))
	f2 := g.CreateFactor([]EdgeRef{e2}, constantMinimizer(2.0))
	g.CreateFactor([]EdgeRef{e3}, constantMinimizer(3.0))

	require.True(t, g.SetFactorEnabled(f2, false))

	g.Iterate()

	vs := &g.variables[v]
	require.False(t, vs.enabledNeedsUpdate)
	assert.ElementsMatch(t, []EdgeRef{e1, e3}, vs.enabledEdges)
}

// TestReenableResetsEdgeToCurrentValue verifies that re-enabling a factor
// resets its edges to the variable's current value with weight Standard,
// with a clean dual accumulator and message history.
func TestReenableResetsEdgeToCurrentValue(t *testing.T) {
	g := New(ADMM, 0.1, WithParallel(false))
	v := g.CreateVariable(0, weight.Standard)

	eKeep := g.CreateEdge(v)
	eToggle := g.CreateEdge(v)
	g.CreateFactor([]EdgeRef{eKeep}, constantMinimizer(10.0))
	fToggle := g.CreateFactor([]EdgeRef{eToggle}, constantMinimizer(-4.0))

	g.Iterate()
	g.Iterate()

	require.True(t, g.SetFactorEnabled(fToggle, false))
	g.Iterate()
	current := g.Value(v)

	require.True(t, g.SetFactorEnabled(fToggle, true))

	es := g.edges[eToggle]
	assert.Equal(t, current, es.x)
	assert.Equal(t, current, es.z)
	assert.Equal(t, weight.Standard, es.weightToLeft)
	assert.Equal(t, weight.Standard, es.weightToRight)
	assert.Zero(t, es.u)
	assert.False(t, es.hasMsgDiff)
	assert.False(t, es.hasOldMsg)
	assert.True(t, es.enabled)
}

// TestSetFactorEnabledIdempotent verifies both directions report no change
// on a redundant call.
func TestSetFactorEnabledIdempotent(t *testing.T) {
	g := New(ADMM, 0.1, WithParallel(false))
	v := g.CreateVariable(0, weight.Standard)
	e := g.CreateEdge(v)
	f := g.CreateFactor([]EdgeRef{e}, identityMinimizer)

	assert.False(t, g.SetFactorEnabled(f, true), "already enabled: expect no change")
	assert.True(t, g.SetFactorEnabled(f, false))
	assert.False(t, g.SetFactorEnabled(f, false), "already disabled: expect no change")
}
