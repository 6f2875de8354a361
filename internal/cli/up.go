package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "happyhackingspace/hmm"

// releaseSource is the part of *selfupdate.Updater the up command uses.
type releaseSource interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

var newReleaseSource = func() (releaseSource, error) {
	return selfupdate.NewUpdater(selfupdate.Config{})
}

func (c *CLI) newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Self-update to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := newReleaseSource()
			if err != nil {
				return err
			}
			return c.selfUpdate(cmd.Context(), cmd.OutOrStdout(), src)
		},
	}
}

func (c *CLI) selfUpdate(ctx context.Context, w io.Writer, src releaseSource) error {
	v := c.version
	if v == "dev" {
		v = "0.0.0"
	}

	latest, found, err := src.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return errors.New("no release found")
	}

	if latest.LessOrEqual(v) {
		fmt.Fprintf(w, "Already up to date (%s)\n", c.version)
		return nil
	}

	slog.Info("Updating", "from", c.version, "to", latest.Version())

	exe, err := os.Executable()
	if err != nil {
		return err
	}

	if err := src.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	fmt.Fprintf(w, "Updated to %s\n", latest.Version())
	return nil
}
