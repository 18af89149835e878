package objectivegraph

// SetFactorEnabled enables or disables f and reports whether the state
// actually changed (both directions are idempotent). Disabling flags f's
// edges disabled and marks their owning variables dirty for a lazy
// enabled-edge rebuild at the next variable sweep. Enabling resets f's
// edges to (value=variable.currentValue, weight=Standard), clears their
// u/oldMsg/msgDiff, and appends them back into their variable's
// enabled-edge cache, rebuilding that cache first if it was left dirty
// by an intervening disable, so a disable immediately followed by an
// enable of the same factor never double-lists an edge.
func (g *Graph) SetFactorEnabled(f FactorRef, enabled bool) bool {
	g.guardNotSweeping("SetFactorEnabled")
	if enabled {
		return g.enableFactor(f)
	}
	return g.disableFactor(f)
}

func (g *Graph) disableFactor(f FactorRef) bool {
	fs := &g.factors[f]
	if !fs.enabled {
		return false
	}
	fs.enabled = false
	g.removeFromEnabledSet(f)

	for _, e := range fs.edges {
		g.edges[e].enabled = false
		vs := &g.variables[g.edges[e].variable]
		vs.enabledNeedsUpdate = true
	}
	return true
}

func (g *Graph) enableFactor(f FactorRef) bool {
	fs := &g.factors[f]
	if fs.enabled {
		return false
	}
	fs.enabled = true
	g.addToEnabledSet(f)

	for _, e := range fs.edges {
		ve := &g.edges[e]
		vs := &g.variables[ve.variable]
		if vs.enabledNeedsUpdate {
			vs.rebuildEnabledEdges(g.edges)
		}
		ve.resetForEnable(vs.currentValue())
		vs.enabledEdges = append(vs.enabledEdges, e)
	}
	return true
}

func (g *Graph) removeFromEnabledSet(f FactorRef) {
	pos, ok := g.factorSetPos[f]
	if !ok {
		return
	}
	last := len(g.enabledFactors) - 1
	lastRef := g.enabledFactors[last]
	g.enabledFactors[pos] = lastRef
	g.factorSetPos[lastRef] = pos
	g.enabledFactors = g.enabledFactors[:last]
	delete(g.factorSetPos, f)
}

func (g *Graph) addToEnabledSet(f FactorRef) {
	g.factorSetPos[f] = len(g.enabledFactors)
	g.enabledFactors = append(g.enabledFactors, f)
}
