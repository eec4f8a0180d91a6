package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jetson-tools/jetlab/pkg/host"
	"github.com/jetson-tools/jetlab/pkg/tools"
	"github.com/shirou/gopsutil/mem"
	"github.com/spf13/cobra"
)

func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the host is ready to run GPU sessions",
		Long: `Check the host is ready to run GPU sessions: the Jetson device tree,
the container engine, the NVIDIA runtime and the driver artifacts the
containers need.`,
		Args: cobra.NoArgs,
		RunE: RunDoctor,
	}

	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")

	return cmd
}

type doctorCheck struct {
	Check  string `json:"check"`
	Result string `json:"result"`
	Detail string `json:"detail"`
}

// RunDoctor runs the host checks and prints one row per check. The
// command fails when the container engine is unreachable or the NVIDIA
// runtime is not configured, since no session can start then.
func RunDoctor(cmd *cobra.Command, args []string) error {
	jsonFlag, _ := cmd.Flags().GetBool("json")

	j, err := newJetlab()
	if err != nil {
		return err
	}

	checks := []doctorCheck{}
	var broken []string

	device := host.Describe()
	if device.IsJetson() {
		checks = append(checks, doctorCheck{"Jetson device", "ok", device.Model})
	} else {
		checks = append(checks, doctorCheck{"Jetson device", "warn", "no Jetson device tree found"})
	}
	if device.L4TRelease != "" {
		checks = append(checks, doctorCheck{"L4T release", "ok", device.L4TRelease})
	} else {
		checks = append(checks, doctorCheck{"L4T release", "warn", "/etc/nv_tegra_release not readable"})
	}

	if pingErr := j.Runtime.Ping(cmd.Context()); pingErr != nil {
		checks = append(checks, doctorCheck{"Container engine", "fail", pingErr.Error()})
		broken = append(broken, "container engine unreachable")
	} else {
		info, infoErr := j.Runtime.Info(cmd.Context())
		if infoErr != nil {
			checks = append(checks, doctorCheck{"Container engine", "warn", infoErr.Error()})
		} else {
			checks = append(checks, doctorCheck{"Container engine", "ok", "version " + info.ServerVersion})

			hasRuntime := false
			for _, rt := range info.Runtimes {
				if rt == j.Options.ContainerRuntime {
					hasRuntime = true
				}
			}
			if hasRuntime {
				checks = append(checks, doctorCheck{"NVIDIA runtime", "ok", j.Options.ContainerRuntime})
			} else {
				checks = append(checks, doctorCheck{"NVIDIA runtime", "fail",
					fmt.Sprintf("runtime %q not configured (found: %s)",
						j.Options.ContainerRuntime, strings.Join(info.Runtimes, ", "))})
				broken = append(broken, "NVIDIA container runtime missing")
			}
		}
	}

	artifacts := host.NvidiaArtifacts()
	if len(artifacts) > 0 {
		checks = append(checks, doctorCheck{"Driver artifacts", "ok", fmt.Sprintf("%d files", len(artifacts))})
	} else {
		checks = append(checks, doctorCheck{"Driver artifacts", "warn", "no NVIDIA driver files found"})
	}

	if vm, memErr := mem.VirtualMemory(); memErr == nil {
		checks = append(checks, doctorCheck{"Memory", "ok", fmt.Sprintf("%d MB total", vm.Total/1024/1024)})
	}
	if swap, swapErr := host.Swap(cmd.Context()); swapErr == nil {
		checks = append(checks, doctorCheck{"Swap", "ok", fmt.Sprintf("%d MB total", swap.TotalBytes/1024/1024)})
	}

	if jsonFlag {
		jsonBytes, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonBytes))
	} else {
		data := [][]string{}
		for _, c := range checks {
			data = append(data, []string{c.Check, c.Result, c.Detail})
		}
		tools.ShowTable([]string{"Check", "Result", "Detail"}, data)
	}

	if len(broken) > 0 {
		return fmt.Errorf("host is not ready: %s", strings.Join(broken, "; "))
	}

	if !jsonFlag {
		fmt.Println("Host is ready to run GPU sessions.")
	}
	return nil
}
