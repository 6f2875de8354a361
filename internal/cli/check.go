package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/hmm/internal/batch"
	"github.com/happyhackingspace/hmm/internal/storage"
	"github.com/spf13/cobra"
)

func (c *CLI) newCheckCommand() *cobra.Command {
	var dataFolder string
	var workers int
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every model in a folder against its recorded sequences",
		Long: `Loads each model file in the folder together with its <name>_sequences file
and checks the forward likelihood and Viterbi path of every sequence that
records one.`,
		Example: `  hmm check --data-folder testdata`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := storage.NewStorage(dataFolder).IterFixtures()
			if err != nil {
				return err
			}
			if len(fixtures) == 0 {
				return fmt.Errorf("no models with sequences in %s", dataFolder)
			}

			var mismatches []batch.Mismatch
			for _, fx := range fixtures {
				seqs := make([][]string, len(fx.Sequences))
				want := make([]batch.Expectation, len(fx.Sequences))
				for i, s := range fx.Sequences {
					seqs[i] = s.Observations
					want[i] = batch.Expectation{
						Name:       fx.Name + "/" + s.Name,
						BestPath:   s.BestPath,
						Likelihood: s.Likelihood,
					}
				}
				for _, op := range []batch.Op{batch.OpForward, batch.OpViterbi} {
					results, err := batch.Run(cmd.Context(), fx.Model, seqs, batch.Options{Op: op, Workers: workers})
					if err != nil {
						return err
					}
					mm, err := batch.Check(results, want, tolerance)
					if err != nil && !errors.Is(err, batch.ErrMismatch) {
						return err
					}
					mismatches = append(mismatches, mm...)
				}
				slog.Info("Checked model", "model", fx.Name, "sequences", len(seqs))
			}
			if len(mismatches) > 0 {
				return reportMismatches(mismatches)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d models OK\n", len(fixtures))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Folder with model and sequence files")
	cmd.Flags().IntVar(&workers, "workers", 4, "Sequences evaluated in parallel")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-9, "Relative tolerance for likelihood checks")
	return cmd
}
