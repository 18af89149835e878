package objectivegraph

// VariableRef, EdgeRef, and FactorRef are dense integer handles into the
// graph's parallel variable/edge/factor slices. They are never reused or
// invalidated: variables, edges, and factors are only ever created, never
// removed.
type VariableRef int

// EdgeRef identifies one edge, bound to exactly one variable and one
// factor at creation time.
type EdgeRef int

// FactorRef identifies one factor and its declared, ordered edge list.
type FactorRef int
