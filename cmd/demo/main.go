// Command demo runs a minimal ADMM consensus walkthrough: a handful of
// noisy sensor readings, tied together by a single equality factor, driven
// to agreement by objectivegraph's iteration scheduler.
package main

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/CausalGo/objectivegraph/consensus"
	"github.com/CausalGo/objectivegraph/objectivegraph"
	"github.com/CausalGo/objectivegraph/weight"
)

func main() {
	readings := []float64{9.8, 10.3, 9.6, 10.1}
	readingsVec := mat.NewVecDense(len(readings), readings)

	g := objectivegraph.New(objectivegraph.ADMM, 0.2)

	vars := make([]objectivegraph.VariableRef, len(readings))
	edges := make([]objectivegraph.EdgeRef, len(readings))
	for i, r := range readings {
		vars[i] = g.CreateVariable(r, weight.Standard)
		edges[i] = g.CreateEdge(vars[i])
	}

	// A single equality factor pulls every reading toward their shared
	// consensus value: the minimizer writes the mean of its incoming
	// messages back into every slot.
	g.CreateFactor(edges, func(buf []consensus.Weighted) {
		sum := 0.0
		for _, in := range buf {
			sum += in.Value
		}
		mean := sum / float64(len(buf))
		for i := range buf {
			buf[i] = consensus.Weighted{Value: mean, Weight: weight.Standard}
		}
	})

	const maxIterations = 200
	for i := 0; i < maxIterations && !g.Converged(); i++ {
		g.Iterate()
	}

	fmt.Println("readings:", mat.Formatted(readingsVec.T()))
	fmt.Println("iterations:", g.Iterations())
	fmt.Println("converged:", g.Converged())
	for i, v := range vars {
		fmt.Printf("reading %d settled at %.6f\n", i, g.Value(v))
	}
}
