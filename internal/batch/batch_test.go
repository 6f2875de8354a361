package batch

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/happyhackingspace/hmm"
)

func weather(t *testing.T) *hmm.Model {
	t.Helper()
	m, err := hmm.New(
		[]string{"no-walk", "walk"},
		[]string{"hot", "cold"},
		[]float64{0.6, 0.4},
		[][]float64{{0.55, 0.45}, {0.3, 0.7}},
		[][]float64{{0.35, 0.65}, {0.8, 0.2}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

var seqs = [][]string{
	{"walk", "walk", "no-walk", "no-walk"},
	{"walk"},
	{},
	{"no-walk"},
	{"swim"},
	{"walk", "no-walk"},
}

func TestRunViterbi(t *testing.T) {
	m := weather(t)

	for _, workers := range []int{0, 1, 3} {
		results, err := Run(context.Background(), m, seqs, Options{Op: OpViterbi, Workers: workers})
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != len(seqs) {
			t.Fatalf("len(results) = %d, want %d", len(results), len(seqs))
		}
		for i, r := range results {
			if r.Index != i {
				t.Errorf("results[%d].Index = %d", i, r.Index)
			}
		}
		if want := []string{"hot", "hot", "cold", "cold"}; !slices.Equal(results[0].Path.States, want) {
			t.Errorf("workers=%d: path = %v, want %v", workers, results[0].Path.States, want)
		}
		if !errors.Is(results[2].Err, hmm.ErrEmptyInput) {
			t.Errorf("results[2].Err = %v, want ErrEmptyInput", results[2].Err)
		}
		if !errors.Is(results[4].Err, hmm.ErrUnknownSymbol) {
			t.Errorf("results[4].Err = %v, want ErrUnknownSymbol", results[4].Err)
		}
	}
}

func TestRunForward(t *testing.T) {
	m := weather(t)

	results, err := Run(context.Background(), m, seqs, Options{Op: OpForward, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]float64{0: 0.07352896140625, 1: 0.47, 3: 0.53, 5: 0.268675}
	for i, p := range want {
		if results[i].Err != nil {
			t.Fatalf("results[%d].Err = %v", i, results[i].Err)
		}
		if math.Abs(results[i].Likelihood-p) > 1e-12 {
			t.Errorf("results[%d].Likelihood = %v, want %v", i, results[i].Likelihood, p)
		}
	}
}

func TestRunUnknownOp(t *testing.T) {
	if _, err := Run(context.Background(), weather(t), seqs, Options{Op: "backward"}); err == nil {
		t.Error("expected error for unknown op")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, weather(t), seqs, Options{Op: OpForward, Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCheck(t *testing.T) {
	m := weather(t)
	input := [][]string{{"walk", "walk", "no-walk", "no-walk"}, {"walk"}}

	paths, err := Run(context.Background(), m, input, Options{Op: OpViterbi})
	if err != nil {
		t.Fatal(err)
	}
	good := []Expectation{
		{Name: "four", BestPath: []string{"hot", "hot", "cold", "cold"}},
		{Name: "one", BestPath: []string{"hot"}},
	}
	if mm, err := Check(paths, good, 1e-9); err != nil {
		t.Errorf("Check = %v, %v; want no mismatches", mm, err)
	}

	bad := []Expectation{
		{Name: "four", BestPath: []string{"cold", "cold", "cold", "cold"}},
		{Name: "one"},
	}
	mm, err := Check(paths, bad, 1e-9)
	if !errors.Is(err, ErrMismatch) || len(mm) != 1 || mm[0].Name != "four" {
		t.Errorf("Check = %v, %v; want one mismatch for four", mm, err)
	}

	likelihoods, err := Run(context.Background(), m, input, Options{Op: OpForward})
	if err != nil {
		t.Fatal(err)
	}
	p := 0.0735289614
	mm, err = Check(likelihoods, []Expectation{{Name: "four", Likelihood: &p}, {Name: "one"}}, 1e-6)
	if err != nil {
		t.Errorf("Check = %v, %v; want match within tolerance", mm, err)
	}
	mm, err = Check(likelihoods, []Expectation{{Name: "four", Likelihood: &p}, {Name: "one"}}, 1e-12)
	if !errors.Is(err, ErrMismatch) || len(mm) != 1 {
		t.Errorf("Check = %v, %v; want one mismatch", mm, err)
	}

	if _, err := Check(paths, good[:1], 1e-9); err == nil || errors.Is(err, ErrMismatch) {
		t.Errorf("Check with short expectations = %v, want length error", err)
	}
}

func TestParseOp(t *testing.T) {
	for _, s := range []string{"forward", "viterbi"} {
		if op, err := ParseOp(s); err != nil || string(op) != s {
			t.Errorf("ParseOp(%q) = %q, %v", s, op, err)
		}
	}
	if _, err := ParseOp("baum-welch"); err == nil {
		t.Error("expected error for unknown op")
	}
}
