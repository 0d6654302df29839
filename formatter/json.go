package formatter

import (
	"encoding/json"

	"github.com/20230802363-ux/rail-optima-sim/sim"
)

type resultBuilder struct{}

// NewResultBuilder creates a new builder for formatting simulation results
func NewResultBuilder() *resultBuilder {
	return &resultBuilder{}
}

// BuildJSON serializes a simulation result to indented JSON
func (rb *resultBuilder) BuildJSON(res *sim.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}
