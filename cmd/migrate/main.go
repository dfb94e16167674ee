package main

import (
	"fmt"
	"os"

	"guesthouse/config"
	"guesthouse/helper"
	"guesthouse/shared/logger"

	"github.com/spf13/cobra"
)

func actionCmd(use, short string, run func(cfg *config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(config.Get())
		},
	}
}

func main() {
	logger.InitLogger()

	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Guesthouse database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.Configure(config.Get())
		},
	}

	rootCmd.AddCommand(
		actionCmd(helper.ActionUp, "Apply all pending migrations", helper.Up),
		actionCmd(helper.ActionDown, "Roll back the most recent migration", helper.Down),
		actionCmd(helper.ActionStepUp, "Apply the next pending migration", helper.StepUp),
		actionCmd(helper.ActionDrop, "Roll back every migration", helper.Drop),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
