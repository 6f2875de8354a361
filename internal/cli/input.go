package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/happyhackingspace/hmm"
	"github.com/happyhackingspace/hmm/internal/batch"
	"github.com/happyhackingspace/hmm/internal/storage"
	"github.com/happyhackingspace/hmm/internal/textutil"
)

// inferenceFlags are shared by the forward and viterbi commands.
type inferenceFlags struct {
	modelPath     string
	sequencesPath string
	text          string
	workers       int
	check         bool
	tolerance     float64
}

// input is what an inference command runs on.
type input struct {
	model     *hmm.Model
	names     []string
	sequences [][]string
	expected  []batch.Expectation
}

func (f *inferenceFlags) load(args []string) (*input, error) {
	if f.modelPath == "" {
		return nil, errors.New("--model is required")
	}
	sources := 0
	for _, set := range []bool{len(args) > 0, f.sequencesPath != "", f.text != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, errors.New("use only one of symbol arguments, --sequences or --text")
	}
	if sources == 0 {
		if isStdinTerminal() {
			return nil, errors.New("give observation symbols as arguments, --sequences, --text or stdin")
		}
		symbols, err := readFromStdin()
		if err != nil {
			return nil, err
		}
		args = symbols
	}
	if f.text != "" {
		args = textutil.Words(f.text)
		slog.Debug("Text tokenized", "symbols", len(args))
	}

	start := time.Now()
	m, err := storage.LoadModel(f.modelPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("Model loaded", "path", f.modelPath, "states", m.NumStates(),
		"symbols", m.NumSymbols(), "duration", time.Since(start))

	in := &input{model: m}
	if f.sequencesPath == "" {
		in.names = []string{"input"}
		in.sequences = [][]string{args}
		in.expected = []batch.Expectation{{Name: "input"}}
		return in, nil
	}

	seqs, err := storage.LoadSequences(f.sequencesPath)
	if err != nil {
		return nil, err
	}
	for _, s := range seqs.Sequences {
		in.names = append(in.names, s.Name)
		in.expected = append(in.expected, batch.Expectation{
			Name:       s.Name,
			BestPath:   s.BestPath,
			Likelihood: s.Likelihood,
		})
	}
	in.sequences = seqs.Observations()
	slog.Debug("Sequences loaded", "path", f.sequencesPath, "count", len(in.sequences))
	return in, nil
}

// record is one line of command output.
type record struct {
	Name       string   `json:"name"`
	Likelihood *float64 `json:"likelihood,omitempty"`
	States     []string `json:"states,omitempty"`
	LogProb    *float64 `json:"log_prob,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func toRecords(names []string, results []batch.Result) []record {
	out := make([]record, len(results))
	for i, r := range results {
		rec := record{Name: names[i]}
		switch {
		case r.Err != nil:
			rec.Error = r.Err.Error()
		case r.Op == batch.OpForward:
			rec.Likelihood = finite(r.Likelihood)
		default:
			rec.States = r.Path.States
			rec.LogProb = finite(r.Path.LogProb)
		}
		out[i] = rec
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func reportMismatches(mismatches []batch.Mismatch) error {
	lines := make([]string, len(mismatches))
	for i, m := range mismatches {
		slog.Error("Mismatch", "sequence", m.Name, "got", m.Got, "want", m.Want)
		lines[i] = m.String()
	}
	return fmt.Errorf("%w:\n  %s", batch.ErrMismatch, strings.Join(lines, "\n  "))
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// readFromStdin reads whitespace-separated symbols.
func readFromStdin() ([]string, error) {
	slog.Debug("Reading from stdin")
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	symbols := textutil.Fields(string(body))
	if len(symbols) == 0 {
		return nil, errors.New("stdin is empty")
	}
	return symbols, nil
}
