package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "pathwise",
		Short: "Career assessment, personality profile and advisor chat",
		Long: `pathwise walks you through a career assessment, a color personality
profile and a chat with the career advisor, and keeps your progress locally.

Examples:
  pathwise assess --resume ./cv.pdf
  pathwise personality
  pathwise chat "What skills are in demand?"
  pathwise dashboard`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newAssessCmd(),
		newPersonalityCmd(),
		newChatCmd(),
		newForecastCmd(),
		newDashboardCmd(),
		newStatsCmd(),
		newServeCmd(),
		newStatusCmd(),
		newStopCmd(),
		newConfigCmd(),
		newDataCmd(),
	)
	return root
}
