package cmd

import (
	"fmt"

	"github.com/jetson-tools/jetlab/pkg/host"
	"github.com/jetson-tools/jetlab/pkg/tools"
	"github.com/spf13/cobra"
)

func NewSwapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Show swap usage or toggle the zram service",
		Long: `Show swap usage and the zram device table.

Training workloads on small boards depend on swap; --enable-zram and
--disable-zram toggle the nvzramconfig service that provides it.`,
		Args: cobra.NoArgs,
		RunE: RunSwap,
	}

	cmd.Flags().Bool("enable-zram", false, "Enable and start the nvzramconfig service")
	cmd.Flags().Bool("disable-zram", false, "Disable and stop the nvzramconfig service")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func swapError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while managing swap: %w", iErr)
	return
}

func RunSwap(cmd *cobra.Command, args []string) (err error) {
	enable, _ := cmd.Flags().GetBool("enable-zram")
	disable, _ := cmd.Flags().GetBool("disable-zram")
	yes, _ := cmd.Flags().GetBool("yes")

	if enable && disable {
		return swapError(fmt.Errorf("--enable-zram and --disable-zram are mutually exclusive"))
	}

	if enable || disable {
		verb := "Enable"
		if disable {
			verb = "Disable"
		}
		if !yes && !tools.ConfirmOperation(verb+" the nvzramconfig zram service") {
			return nil
		}
		if err := host.SetZramService(cmd.Context(), enable); err != nil {
			return swapError(err)
		}
		fmt.Println("Zram service updated. The change applies to new swap allocations.")
		return nil
	}

	report, err := host.Swap(cmd.Context())
	if err != nil {
		return swapError(err)
	}

	fmt.Printf("Swap: %d/%d MB used (%.1f%%)\n",
		report.UsedBytes/1024/1024, report.TotalBytes/1024/1024, report.UsedPercent)

	if len(report.Devices) > 0 {
		data := [][]string{}
		for _, d := range report.Devices {
			data = append(data, []string{d.Name, d.Algorithm, d.DiskSize, d.Data, d.Compressed, d.Total})
		}
		tools.ShowTable([]string{"Device", "Algorithm", "Size", "Data", "Compressed", "Total"}, data)
	}

	return nil
}
