package cmd

import (
	"fmt"
	"time"

	"github.com/jetson-tools/jetlab/pkg/host"
	"github.com/spf13/cobra"
)

func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream live host utilization",
		Long: `Stream live host utilization, one line per sample, until interrupted.

On a Jetson the samples come from tegrastats and include the GPU; on
other hosts jetlab falls back to kernel counters without it.`,
		Args: cobra.NoArgs,
		RunE: MonitorHost,
	}

	cmd.Flags().DurationP("interval", "i", time.Second, "Delay between samples")

	return cmd
}

func MonitorHost(cmd *cobra.Command, args []string) (err error) {
	interval, _ := cmd.Flags().GetDuration("interval")

	samples := make(chan host.Stats)
	errCh := make(chan error, 1)
	go func() {
		errCh <- host.StreamStats(cmd.Context(), interval, samples)
	}()

	for s := range samples {
		line := fmt.Sprintf("RAM %d/%d MB  SWAP %d/%d MB  CPU %d%%  GPU %d%%",
			s.RAMUsedMB, s.RAMTotalMB, s.SwapUsedMB, s.SwapTotalMB, s.CPUPercent, s.GPUPercent)
		if s.CPUTempC > 0 {
			line += fmt.Sprintf("  CPU %.1fC", s.CPUTempC)
		}
		if s.GPUTempC > 0 {
			line += fmt.Sprintf("  GPU %.1fC", s.GPUTempC)
		}
		fmt.Println(line)
	}

	return <-errCh
}
