package hmm

import "gonum.org/v1/gonum/floats"

// Path is a decoded hidden-state sequence.
type Path struct {
	States  []string `json:"states"`
	Indices []int    `json:"indices"`
	LogProb float64  `json:"log_prob"` // log P(obs, path | model); -Inf if unreachable
}

// Viterbi returns the most probable hidden-state labels for obs, one per
// observation.
func (m *Model) Viterbi(obs []string) ([]string, error) {
	path, err := m.Decode(obs)
	if err != nil {
		return nil, err
	}
	return path.States, nil
}

// Decode finds the best hidden-state path using the Viterbi algorithm
// (log-domain). Ties go to the lowest state index, both in the recurrence and
// when picking the final state.
func (m *Model) Decode(obs []string) (Path, error) {
	ids, err := m.encode(obs)
	if err != nil {
		return Path{}, err
	}
	N := m.NumStates()
	T := len(ids)

	// delta[s][t] = best log score of a path ending in state s at time t
	delta := make([][]float64, N)
	// psi[s][t] = previous state on that path, -1 at t = 0
	psi := make([][]int, N)
	for s := range N {
		delta[s] = make([]float64, T)
		psi[s] = make([]int, T)
		delta[s][0] = m.logPrior[s] + m.logEmission[s][ids[0]]
		psi[s][0] = -1
	}

	for t := 1; t < T; t++ {
		for s := range N {
			e := m.logEmission[s][ids[t]]
			bestScore := delta[0][t-1] + m.logTransition[0][s] + e
			bestPrev := 0
			for p := 1; p < N; p++ {
				score := delta[p][t-1] + m.logTransition[p][s] + e
				if score > bestScore {
					bestScore = score
					bestPrev = p
				}
			}
			delta[s][t] = bestScore
			psi[s][t] = bestPrev
		}
	}

	last := make([]float64, N)
	for s := range N {
		last[s] = delta[s][T-1]
	}
	best := floats.MaxIdx(last)

	// Backtrack
	indices := make([]int, T)
	indices[T-1] = best
	for t := T - 1; t > 0; t-- {
		indices[t-1] = psi[indices[t]][t]
	}

	states := make([]string, T)
	for t, id := range indices {
		states[t] = m.states.toStr[id]
	}
	return Path{States: states, Indices: indices, LogProb: last[best]}, nil
}
