package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jetson-tools/jetlab/cmd"
	"github.com/jetson-tools/jetlab/pkg/jetlab"
	"github.com/jetson-tools/jetlab/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "jetlab",
		Short: "GPU-enabled Jupyter Lab sessions on NVIDIA Jetson",
		Long: `jetlab manages GPU-enabled Jupyter Lab sessions on NVIDIA Jetson
devices: it launches the notebook container with the NVIDIA runtime,
waits for the server to come up, verifies the GPU is visible inside,
and tears the session down again.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cmd.Backend, "backend", "", `Container backend, "cli" or "api"`)

	rootCmd.AddCommand(cmd.NewStartCommand())
	rootCmd.AddCommand(cmd.NewStopCommand())
	rootCmd.AddCommand(cmd.NewStatusCommand())
	rootCmd.AddCommand(cmd.NewTokenCommand())
	rootCmd.AddCommand(cmd.NewGPUCheckCommand())
	rootCmd.AddCommand(cmd.NewListCommand())
	rootCmd.AddCommand(cmd.NewLogsCommand())
	rootCmd.AddCommand(cmd.NewShellCommand())
	rootCmd.AddCommand(cmd.NewDoctorCommand())
	rootCmd.AddCommand(cmd.NewMonitorCommand())
	rootCmd.AddCommand(cmd.NewPowerCommand())
	rootCmd.AddCommand(cmd.NewSwapCommand())
	rootCmd.AddCommand(cmd.NewImageInfoCommand())
	rootCmd.AddCommand(cmd.NewConfigCommand())
	rootCmd.AddCommand(cmd.NewValidateCommand())
	rootCmd.AddCommand(cmd.NewGenSchemaCommand())

	// Ctrl-C cancels the command's context instead of killing the
	// process, so a start can report what it left behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(jetlab.ExitCode(err))
	}
}
