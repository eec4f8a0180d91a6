package host

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PowerStatus is the nvpmodel view of the active power profile.
type PowerStatus struct {
	ModeID   int
	ModeName string
	FanMode  string
}

// QueryPowerMode runs nvpmodel -q and parses the active mode.
func QueryPowerMode(ctx context.Context) (PowerStatus, error) {
	out, err := runCommand(ctx, "nvpmodel", "-q")
	if err != nil {
		return PowerStatus{}, fmt.Errorf("failed to query the power mode: %w", err)
	}
	return parseNvpmodelQuery(out)
}

// SetPowerMode runs nvpmodel -m with the given mode id. Requires root;
// some mode changes prompt for a reboot on the device itself.
func SetPowerMode(ctx context.Context, id int) error {
	if _, err := runCommand(ctx, "nvpmodel", "-m", strconv.Itoa(id)); err != nil {
		return fmt.Errorf("failed to set power mode %d: %w", id, err)
	}
	return nil
}

// MaxClocks runs jetson_clocks, pinning all clocks to their maximum
// until the next reboot.
func MaxClocks(ctx context.Context) error {
	if _, err := runCommand(ctx, "jetson_clocks"); err != nil {
		return fmt.Errorf("failed to pin clocks: %w", err)
	}
	return nil
}

// ShowClocks returns the jetson_clocks --show report verbatim.
func ShowClocks(ctx context.Context) (string, error) {
	out, err := runCommand(ctx, "jetson_clocks", "--show")
	if err != nil {
		return "", fmt.Errorf("failed to read clock state: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// parseNvpmodelQuery reads nvpmodel -q output, for example
//
//	NV Fan Mode:quiet
//	NV Power Mode: 15W
//	2
//
// The trailing bare number is the mode id.
func parseNvpmodelQuery(out string) (PowerStatus, error) {
	status := PowerStatus{ModeID: -1}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "NV Power Mode:"):
			status.ModeName = strings.TrimSpace(strings.TrimPrefix(line, "NV Power Mode:"))
		case strings.HasPrefix(line, "NV Fan Mode:"):
			status.FanMode = strings.TrimSpace(strings.TrimPrefix(line, "NV Fan Mode:"))
		default:
			if id, err := strconv.Atoi(line); err == nil {
				status.ModeID = id
			}
		}
	}
	if status.ModeName == "" && status.ModeID < 0 {
		return status, fmt.Errorf("unrecognized nvpmodel output: %q", strings.TrimSpace(out))
	}
	return status, nil
}
