package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/Seednode/whosaid/internal/game"
	"github.com/Seednode/whosaid/internal/quotes"
	"github.com/Seednode/whosaid/internal/round"
	"github.com/Seednode/whosaid/internal/tty"
)

func newPlayCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a session in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateGame(); err != nil {
				return err
			}

			loader, err := cfg.newLoader()
			if err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}

			// Log lines would scribble over the screen, so the session runs quiet.
			return tty.Play(cmd.Context(), screen, game.Config{
				Store:     quotes.NewStore(nil),
				Loader:    loader,
				Generator: round.NewGenerator(nil),
				Options:   cfg.gameOptions(),
			})
		},
	}
}
