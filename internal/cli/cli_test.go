package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/happyhackingspace/hmm"
	"github.com/happyhackingspace/hmm/internal/batch"
)

const testdata = "../storage/testdata"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New("test")
	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetErr(&out)
	c.rootCmd.SetArgs(append([]string{"-s"}, args...))
	err := c.Run()
	return out.String(), err
}

func decode(t *testing.T, out string) []record {
	t.Helper()
	var recs []record
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return recs
}

func TestViterbiArgs(t *testing.T) {
	out, err := run(t, "viterbi", "--model", filepath.Join(testdata, "mini_weather.yaml"),
		"walk", "walk", "no-walk", "no-walk")
	if err != nil {
		t.Fatal(err)
	}
	recs := decode(t, out)
	if len(recs) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(recs))
	}
	if want := []string{"hot", "hot", "cold", "cold"}; !slices.Equal(recs[0].States, want) {
		t.Errorf("States = %v, want %v", recs[0].States, want)
	}
}

func TestForwardArgs(t *testing.T) {
	out, err := run(t, "forward", "--model", filepath.Join(testdata, "mini_weather.yaml"), "walk")
	if err != nil {
		t.Fatal(err)
	}
	recs := decode(t, out)
	if recs[0].Likelihood == nil || math.Abs(*recs[0].Likelihood-0.47) > 1e-12 {
		t.Errorf("Likelihood = %v, want 0.47", recs[0].Likelihood)
	}
}

func TestForwardZeroSumRow(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "zero.yaml")
	sequences := filepath.Join(dir, "zero_sequences.yaml")
	files := map[string]string{
		model: `observations: [no-walk, walk]
states: [hot, cold]
prior: [0.6, 0.4]
transition: [[0, 0], [0.5, 0.5]]
emission: [[0.35, 0.65], [0.8, 0.2]]
`,
		sequences: `sequences:
  - name: two-days
    observations: [walk, walk]
  - name: one-day
    observations: [walk]
`,
	}
	for path, body := range files {
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := run(t, "forward", "--model", model, "--sequences", sequences)
	if err != nil {
		t.Fatal(err)
	}
	recs := decode(t, out)
	if len(recs) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(recs))
	}
	if recs[0].Likelihood != nil {
		t.Errorf("two-days Likelihood = %v, want null", *recs[0].Likelihood)
	}
	if recs[1].Likelihood == nil || math.Abs(*recs[1].Likelihood-0.47) > 1e-12 {
		t.Errorf("one-day Likelihood = %v, want 0.47", recs[1].Likelihood)
	}
}

func TestInferenceErrors(t *testing.T) {
	model := filepath.Join(testdata, "mini_weather.yaml")

	if _, err := run(t, "viterbi", "--model", model, "swim"); !errors.Is(err, hmm.ErrUnknownSymbol) {
		t.Errorf("unknown symbol: err = %v, want ErrUnknownSymbol", err)
	}
	if _, err := run(t, "forward", "walk"); err == nil {
		t.Error("expected error without --model")
	}
	if _, err := run(t, "forward", "--model", model); err == nil {
		t.Error("expected error without sequences")
	}
	if _, err := run(t, "forward", "--model", model,
		"--sequences", filepath.Join(testdata, "mini_weather_sequences.yaml"), "walk"); err == nil {
		t.Error("expected error with both arguments and --sequences")
	}
	if _, err := run(t, "forward", "--model", model, "--text", "walk", "walk"); err == nil {
		t.Error("expected error with both arguments and --text")
	}
}

func TestViterbiText(t *testing.T) {
	out, err := run(t, "viterbi", "--model", filepath.Join(testdata, "mini_weather.yaml"),
		"--text", "Walk, WALK!")
	if err != nil {
		t.Fatal(err)
	}
	recs := decode(t, out)
	if want := []string{"hot", "hot"}; len(recs) != 1 || !slices.Equal(recs[0].States, want) {
		t.Errorf("records = %+v, want states %v", recs, want)
	}
}

func TestSequencesCheck(t *testing.T) {
	for _, op := range []string{"forward", "viterbi"} {
		out, err := run(t, op, "--check",
			"--model", filepath.Join(testdata, "full_weather.json"),
			"--sequences", filepath.Join(testdata, "full_weather_sequences.json"))
		if err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		recs := decode(t, out)
		if len(recs) != 1 || recs[0].Name != "sixteen-days" {
			t.Errorf("%s: records = %+v", op, recs)
		}
	}
}

func TestSequencesCheckMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong_sequences.yaml")
	body := "sequences:\n  - name: wrong\n    observations: [walk]\n    best_path: [cold]\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "viterbi", "--check",
		"--model", filepath.Join(testdata, "mini_weather.yaml"),
		"--sequences", path)
	if !errors.Is(err, batch.ErrMismatch) {
		t.Fatalf("err = %v, want ErrMismatch", err)
	}
	if !strings.Contains(err.Error(), "wrong") {
		t.Errorf("error %q does not name the sequence", err)
	}
}

func TestCheckFolder(t *testing.T) {
	out, err := run(t, "check", "--data-folder", testdata)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 models OK") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckEmptyFolder(t *testing.T) {
	if _, err := run(t, "check", "--data-folder", t.TempDir()); err == nil {
		t.Error("expected error for folder without fixtures")
	}
}
