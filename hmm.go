// Package hmm evaluates discrete Hidden Markov Models.
//
// A Model holds the prior, transition and emission tables of an HMM over a
// fixed observation alphabet and a fixed set of hidden states. It answers two
// questions about an observed symbol sequence: how likely the sequence is
// (Forward) and which hidden-state path most probably produced it (Viterbi).
//
//	m, _ := hmm.New(
//	    []string{"no-walk", "walk"},
//	    []string{"hot", "cold"},
//	    []float64{0.6, 0.4},
//	    [][]float64{{0.55, 0.45}, {0.3, 0.7}},
//	    [][]float64{{0.35, 0.65}, {0.8, 0.2}},
//	)
//	p, _ := m.Forward([]string{"walk", "walk", "no-walk", "no-walk"})    // 0.0735...
//	path, _ := m.Viterbi([]string{"walk", "walk", "no-walk", "no-walk"}) // [hot hot cold cold]
//
// A Model is immutable once built and may be shared between goroutines.
package hmm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrShapeMismatch reports model tables whose dimensions disagree.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyInput reports a zero-length observation sequence.
	ErrEmptyInput = errors.New("empty observation sequence")
	// ErrUnknownSymbol reports an observation outside the model's alphabet.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Model holds the normalised parameters of a discrete HMM.
type Model struct {
	symbols *alphabet
	states  *alphabet

	prior      []float64   // [N]
	transition [][]float64 // [N][N] row = from, column = to
	emission   [][]float64 // [N][M] row = state, column = symbol

	// transitionT[s] is column s of transition, for the forward dot products.
	transitionT [][]float64

	logPrior      []float64
	logTransition [][]float64
	logEmission   [][]float64
}

// New builds a model from an observation alphabet, hidden-state labels and
// the three probability tables. Tables are copied and normalised so the prior
// and every row of transition and emission sum to one. A row summing to zero
// yields NaN entries.
func New(symbols, states []string, prior []float64, transition, emission [][]float64) (*Model, error) {
	if err := checkShapes(symbols, states, prior, transition, emission); err != nil {
		return nil, err
	}

	symbolAlphabet, ok := alphabetOf(symbols)
	if !ok {
		return nil, fmt.Errorf("hmm: %w: observation symbols are not distinct", ErrShapeMismatch)
	}
	stateAlphabet, ok := alphabetOf(states)
	if !ok {
		return nil, fmt.Errorf("hmm: %w: hidden states are not distinct", ErrShapeMismatch)
	}

	m := &Model{
		symbols:    symbolAlphabet,
		states:     stateAlphabet,
		prior:      normalize(prior),
		transition: make([][]float64, len(transition)),
		emission:   make([][]float64, len(emission)),
	}
	for i, row := range transition {
		m.transition[i] = normalize(row)
	}
	for i, row := range emission {
		m.emission[i] = normalize(row)
	}

	n := len(states)
	m.transitionT = make([][]float64, n)
	for s := range n {
		m.transitionT[s] = make([]float64, n)
		for p := range n {
			m.transitionT[s][p] = m.transition[p][s]
		}
	}

	m.logPrior = logOf(m.prior)
	m.logTransition = make([][]float64, n)
	m.logEmission = make([][]float64, n)
	for s := range n {
		m.logTransition[s] = logOf(m.transition[s])
		m.logEmission[s] = logOf(m.emission[s])
	}
	return m, nil
}

func checkShapes(symbols, states []string, prior []float64, transition, emission [][]float64) error {
	n := len(states)
	if len(transition) == 0 || len(transition[0]) != n {
		return fmt.Errorf("hmm: %w: %d hidden states but transition has %d columns",
			ErrShapeMismatch, n, columns(transition))
	}
	if len(prior) != n {
		return fmt.Errorf("hmm: %w: %d hidden states but prior has length %d", ErrShapeMismatch, n, len(prior))
	}
	if len(transition) != len(transition[0]) {
		return fmt.Errorf("hmm: %w: transition is %dx%d, want square",
			ErrShapeMismatch, len(transition), len(transition[0]))
	}
	for i, row := range transition {
		if len(row) != n {
			return fmt.Errorf("hmm: %w: transition row %d has length %d, want %d", ErrShapeMismatch, i, len(row), n)
		}
	}
	if len(emission) == 0 || len(emission[0]) != len(symbols) {
		return fmt.Errorf("hmm: %w: %d observation symbols but emission has %d columns",
			ErrShapeMismatch, len(symbols), columns(emission))
	}
	if len(emission) != n {
		return fmt.Errorf("hmm: %w: %d hidden states but emission has %d rows", ErrShapeMismatch, n, len(emission))
	}
	for i, row := range emission {
		if len(row) != len(symbols) {
			return fmt.Errorf("hmm: %w: emission row %d has length %d, want %d",
				ErrShapeMismatch, i, len(row), len(symbols))
		}
	}
	return nil
}

func columns(m [][]float64) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// normalize returns a copy of v divided by its sum.
func normalize(v []float64) []float64 {
	sum := floats.Sum(v)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / sum
	}
	return out
}

func logOf(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Log(x)
	}
	return out
}

// encode translates observations to symbol IDs.
func (m *Model) encode(obs []string) ([]int, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("hmm: %w", ErrEmptyInput)
	}
	ids := make([]int, len(obs))
	for t, o := range obs {
		id := m.symbols.get(o)
		if id < 0 {
			return nil, fmt.Errorf("hmm: %w: %q at position %d", ErrUnknownSymbol, o, t)
		}
		ids[t] = id
	}
	return ids, nil
}

// NumStates returns the number of hidden states.
func (m *Model) NumStates() int {
	return m.states.size()
}

// NumSymbols returns the size of the observation alphabet.
func (m *Model) NumSymbols() int {
	return m.symbols.size()
}

// Symbols returns the observation alphabet in column order.
func (m *Model) Symbols() []string {
	return append([]string(nil), m.symbols.toStr...)
}

// States returns the hidden-state labels in row order.
func (m *Model) States() []string {
	return append([]string(nil), m.states.toStr...)
}

// Prior returns a copy of the normalised prior.
func (m *Model) Prior() []float64 {
	return append([]float64(nil), m.prior...)
}

// Transition returns a copy of the normalised transition matrix.
func (m *Model) Transition() [][]float64 {
	return copyMatrix(m.transition)
}

// Emission returns a copy of the normalised emission matrix.
func (m *Model) Emission() [][]float64 {
	return copyMatrix(m.emission)
}

func copyMatrix(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
