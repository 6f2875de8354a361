package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/happyhackingspace/hmm/internal/config"
	"github.com/happyhackingspace/hmm/internal/server"
	"github.com/happyhackingspace/hmm/internal/storage"
	"github.com/spf13/cobra"
)

func (c *CLI) newServeCommand() *cobra.Command {
	var configPath string
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forward and Viterbi inference over HTTP",
		Example: `  hmm serve --config hmm.yaml
  hmm serve --config hmm.yaml --listen 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			m, err := storage.LoadModel(cfg.Model)
			if err != nil {
				return err
			}
			slog.Info("Model loaded", "path", cfg.Model, "states", m.NumStates(), "symbols", m.NumSymbols())

			if !c.verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(m, cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "hmm.yaml", "Path to service config file")
	cmd.Flags().StringVar(&listen, "listen", "", "Override the listen address from the config")
	return cmd
}
