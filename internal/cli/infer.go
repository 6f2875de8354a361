package cli

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/happyhackingspace/hmm/internal/batch"
	"github.com/spf13/cobra"
)

func (c *CLI) newForwardCommand() *cobra.Command {
	var flags inferenceFlags

	cmd := &cobra.Command{
		Use:   "forward [symbol...]",
		Short: "Compute the likelihood of observation sequences (forward algorithm)",
		Example: `  # Likelihood of one sequence
  hmm forward --model weather.yaml walk walk no-walk no-walk

  # Every sequence in a file, checked against the recorded likelihoods
  hmm forward --model weather.yaml --sequences weather_sequences.yaml --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInference(cmd, batch.OpForward, &flags, args)
		},
	}
	addInferenceFlags(cmd, &flags)
	return cmd
}

func (c *CLI) newViterbiCommand() *cobra.Command {
	var flags inferenceFlags

	cmd := &cobra.Command{
		Use:   "viterbi [symbol...]",
		Short: "Decode the most probable hidden-state path (Viterbi algorithm)",
		Example: `  # Best path for one sequence
  hmm viterbi --model weather.yaml walk walk no-walk no-walk

  # Every sequence in a file, checked against the recorded best paths
  hmm viterbi --model weather.yaml --sequences weather_sequences.yaml --check

  # Tag the words of a sentence with a word-level model
  hmm viterbi --model tagger.json --text "The dog runs"

  # Symbols from stdin, separated by whitespace
  echo "walk walk no-walk" | hmm viterbi --model weather.yaml

  # Verbose mode with debug output
  hmm viterbi --model weather.json --sequences days.json -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInference(cmd, batch.OpViterbi, &flags, args)
		},
	}
	addInferenceFlags(cmd, &flags)
	return cmd
}

func addInferenceFlags(cmd *cobra.Command, flags *inferenceFlags) {
	cmd.Flags().StringVar(&flags.modelPath, "model", "", "Path to model file (.json, .yaml)")
	cmd.Flags().StringVar(&flags.sequencesPath, "sequences", "", "Path to sequence file (.json, .yaml)")
	cmd.Flags().StringVar(&flags.text, "text", "", "Free text whose lowercased words are the observations")
	cmd.Flags().IntVar(&flags.workers, "workers", 4, "Sequences evaluated in parallel")
	cmd.Flags().BoolVar(&flags.check, "check", false, "Fail if results differ from the expected values in --sequences")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 1e-9, "Relative tolerance for likelihood checks")
}

func runInference(cmd *cobra.Command, op batch.Op, flags *inferenceFlags, args []string) error {
	in, err := flags.load(args)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := batch.Run(cmd.Context(), in.model, in.sequences, batch.Options{Op: op, Workers: flags.workers})
	if err != nil {
		return err
	}
	slog.Debug("Inference completed", "op", op, "sequences", len(results), "duration", time.Since(start))

	// A single sequence from the command line reports its error directly.
	if flags.sequencesPath == "" && results[0].Err != nil {
		return results[0].Err
	}
	if err := writeJSON(cmd.OutOrStdout(), toRecords(in.names, results)); err != nil {
		return err
	}

	if !flags.check {
		return nil
	}
	mismatches, err := batch.Check(results, in.expected, flags.tolerance)
	if errors.Is(err, batch.ErrMismatch) {
		return reportMismatches(mismatches)
	}
	if err != nil {
		return err
	}
	slog.Info("All sequences match", "count", len(results))
	return nil
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
