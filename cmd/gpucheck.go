package cmd

import (
	"errors"
	"fmt"

	"github.com/jetson-tools/jetlab/pkg/jetlab"
	"github.com/spf13/cobra"
)

func NewGPUCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpu-check",
		Short: "Verify the GPU is visible inside a running session",
		Long: `Verify the GPU is visible inside a running session by asking the
container's CUDA runtime for a device.

Exits 0 when a device is visible, 1 when the session runs without GPU
access, and 2 when there is no session on the port.`,
		Args: cobra.NoArgs,
		RunE: GPUCheck,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port of the session")

	return cmd
}

func GPUCheck(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")

	j, err := newJetlab()
	if err != nil {
		return err
	}

	if port == 0 {
		port = j.Options.Port
	}

	report, err := j.VerifyGPU(cmd.Context(), port)
	if err != nil {
		var noSession *jetlab.NoSessionError
		if errors.As(err, &noSession) {
			return jetlab.WithExitCode(err, jetlab.ExitConflict)
		}
		return err
	}

	fmt.Println("GPU available:", report.DeviceName)
	return nil
}
