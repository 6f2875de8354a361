// Package batch runs HMM inference over many sequences in parallel.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/hmm"
)

// Op selects the inference to run.
type Op string

const (
	OpForward Op = "forward"
	OpViterbi Op = "viterbi"
)

// ParseOp validates an operation name.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpForward, OpViterbi:
		return Op(s), nil
	}
	return "", fmt.Errorf("batch: unknown op %q", s)
}

// Options controls a batch run.
type Options struct {
	Op      Op
	Workers int // <= 0 means one worker per sequence
}

// Result is the outcome for one input sequence.
type Result struct {
	Index      int
	Op         Op
	Likelihood float64  // OpForward
	Path       hmm.Path // OpViterbi
	Err        error
}

// Run evaluates every sequence against m. Results are in input order. A
// sequence the model rejects records its error on the result; only context
// cancellation fails the whole batch.
func Run(ctx context.Context, m *hmm.Model, seqs [][]string, opts Options) ([]Result, error) {
	if _, err := ParseOp(string(opts.Op)); err != nil {
		return nil, err
	}

	results := make([]Result, len(seqs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, seq := range seqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := Result{Index: i, Op: opts.Op}
			switch opts.Op {
			case OpForward:
				r.Likelihood, r.Err = m.Forward(seq)
			case OpViterbi:
				r.Path, r.Err = m.Decode(seq)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return results, nil
}

// Expectation is the known answer for one sequence. Nil fields are not checked.
type Expectation struct {
	Name       string
	BestPath   []string
	Likelihood *float64
}

// Mismatch describes a result that disagrees with its expectation.
type Mismatch struct {
	Name string
	Want string
	Got  string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: got %s, want %s", m.Name, m.Got, m.Want)
}

// ErrMismatch is returned by Check when any result disagrees.
var ErrMismatch = errors.New("results differ from expected")

// Check compares results with expectations of the same length. Likelihoods
// match within relative tolerance tol; paths must match exactly.
func Check(results []Result, want []Expectation, tol float64) ([]Mismatch, error) {
	if len(results) != len(want) {
		return nil, fmt.Errorf("batch: %d results for %d expectations", len(results), len(want))
	}
	var mismatches []Mismatch
	for i, r := range results {
		w := want[i]
		if r.Err != nil {
			mismatches = append(mismatches, Mismatch{Name: w.Name, Want: "no error", Got: r.Err.Error()})
			continue
		}
		if r.Op == OpViterbi && w.BestPath != nil && !slices.Equal(r.Path.States, w.BestPath) {
			mismatches = append(mismatches, Mismatch{
				Name: w.Name,
				Want: fmt.Sprint(w.BestPath),
				Got:  fmt.Sprint(r.Path.States),
			})
		}
		if r.Op == OpForward && w.Likelihood != nil && !closeTo(r.Likelihood, *w.Likelihood, tol) {
			mismatches = append(mismatches, Mismatch{
				Name: w.Name,
				Want: fmt.Sprint(*w.Likelihood),
				Got:  fmt.Sprint(r.Likelihood),
			})
		}
	}
	if len(mismatches) > 0 {
		return mismatches, ErrMismatch
	}
	return nil, nil
}

func closeTo(got, want, tol float64) bool {
	if got == want {
		return true
	}
	return math.Abs(got-want) <= tol*math.Max(math.Abs(got), math.Abs(want))
}
