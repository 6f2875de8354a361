package hmm

import "gonum.org/v1/gonum/floats"

// Forward returns P(obs | model), the likelihood of the observation sequence
// summed over every hidden-state path.
func (m *Model) Forward(obs []string) (float64, error) {
	alpha, err := m.ForwardTable(obs)
	if err != nil {
		return 0, err
	}
	last := len(obs) - 1
	total := 0.0
	for s := range alpha {
		total += alpha[s][last]
	}
	return total, nil
}

// ForwardTable computes the unscaled forward table.
// Returns [N][T] where alpha[s][t] = P(obs[0..t], state_t = s).
func (m *Model) ForwardTable(obs []string) ([][]float64, error) {
	ids, err := m.encode(obs)
	if err != nil {
		return nil, err
	}
	N := m.NumStates()
	T := len(ids)

	alpha := make([][]float64, N)
	for s := range N {
		alpha[s] = make([]float64, T)
		alpha[s][0] = m.prior[s] * m.emission[s][ids[0]]
	}

	prev := make([]float64, N)
	for t := 1; t < T; t++ {
		for p := range N {
			prev[p] = alpha[p][t-1]
		}
		for s := range N {
			alpha[s][t] = floats.Dot(prev, m.transitionT[s]) * m.emission[s][ids[t]]
		}
	}
	return alpha, nil
}
