package workflow

import (
	"context"

	"pensionadvisor/internal/reasoner"
)

// SpecialistNode adapts a reasoner.Reasoner into a NodeFunc: run the
// ReAct loop, append its trace and final answer into state, per spec.md
// §4.8's contract that every (action, observation) pair lands in
// intermediate_steps and the specialist's answer becomes a message.
func SpecialistNode(r *reasoner.Reasoner) NodeFunc {
	return func(ctx context.Context, state *State) {
		answer, steps := r.Run(ctx, state.Query, state.UserID)
		state.appendSteps(steps)
		state.appendMessage(string(r.Kind), answer)
	}
}
