package cmd

import (
	"fmt"

	"github.com/jetson-tools/jetlab/pkg/host"
	"github.com/jetson-tools/jetlab/pkg/tools"
	"github.com/spf13/cobra"
)

func NewPowerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "power",
		Short: "Show or change the Jetson power mode",
		Long: `Show or change the Jetson power mode.

Without flags the current nvpmodel mode is printed. Changing the mode
or locking the clocks affects thermals and power draw, so both ask for
confirmation first.`,
		Args: cobra.NoArgs,
		RunE: RunPower,
	}

	cmd.Flags().IntP("mode", "m", -1, "Switch to the given nvpmodel mode id")
	cmd.Flags().Bool("max-clocks", false, "Lock all clocks to their maximum (jetson_clocks)")
	cmd.Flags().Bool("show-clocks", false, "Print the current clock configuration")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func powerError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while managing the power mode: %w", iErr)
	return
}

func RunPower(cmd *cobra.Command, args []string) (err error) {
	mode, _ := cmd.Flags().GetInt("mode")
	maxClocks, _ := cmd.Flags().GetBool("max-clocks")
	showClocks, _ := cmd.Flags().GetBool("show-clocks")
	yes, _ := cmd.Flags().GetBool("yes")

	if showClocks {
		out, err := host.ShowClocks(cmd.Context())
		if err != nil {
			return powerError(err)
		}
		fmt.Println(out)
		return nil
	}

	if mode >= 0 {
		question := fmt.Sprintf("Switch to power mode %d? The board may reduce or raise its power draw", mode)
		if !yes && !tools.ConfirmOperation(question) {
			return nil
		}
		if err := host.SetPowerMode(cmd.Context(), mode); err != nil {
			return powerError(err)
		}
		fmt.Println("Power mode set to", mode)
	}

	if maxClocks {
		if !yes && !tools.ConfirmOperation("Lock all clocks to their maximum? This raises power draw and heat") {
			return nil
		}
		if err := host.MaxClocks(cmd.Context()); err != nil {
			return powerError(err)
		}
		fmt.Println("Clocks locked to maximum.")
	}

	if mode >= 0 || maxClocks {
		return nil
	}

	status, err := host.QueryPowerMode(cmd.Context())
	if err != nil {
		return powerError(err)
	}

	data := [][]string{
		{"Mode", fmt.Sprintf("%d", status.ModeID)},
		{"Name", status.ModeName},
	}
	if status.FanMode != "" {
		data = append(data, []string{"Fan", status.FanMode})
	}
	tools.ShowTable([]string{"Key", "Value"}, data)
	return nil
}
