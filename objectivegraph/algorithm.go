package objectivegraph

import "github.com/CausalGo/objectivegraph/consensus"

// Algorithm selects the variable-side equality rule bound once at
// construction. The per-iteration hot path never branches on it again.
type Algorithm int

const (
	// ADMM is the Alternating Direction Method of Multipliers: equality
	// by plain averaging. Both edge weights are logically pinned to
	// weight.Standard.
	ADMM Algorithm = iota
	// TWA is the Three-Weight Algorithm: equality with Zero/Standard/
	// Infinite confidence, Infinite dominating on first sight.
	TWA
)

func (a Algorithm) rule() consensus.Rule {
	switch a {
	case ADMM:
		return consensus.ADMM{}
	case TWA:
		return consensus.TWA{}
	default:
		panic("objectivegraph: invalid Algorithm")
	}
}

func (a Algorithm) String() string {
	switch a {
	case ADMM:
		return "ADMM"
	case TWA:
		return "TWA"
	default:
		return "Invalid"
	}
}
