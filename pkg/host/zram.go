package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/mem"
)

// ZramDevice is one row of the zramctl device table. Sizes stay in the
// human-readable units zramctl prints.
type ZramDevice struct {
	Name       string
	Algorithm  string
	DiskSize   string
	Data       string
	Compressed string
	Total      string
	Streams    string
	Mountpoint string
}

// SwapReport combines the kernel swap totals with the zram device
// table. Training runs on 8 GB boards live and die by this.
type SwapReport struct {
	TotalBytes  uint64
	UsedBytes   uint64
	UsedPercent float64
	Devices     []ZramDevice
}

// Swap reads the current swap state. The zram table is best effort;
// hosts without zramctl still report the kernel totals.
func Swap(ctx context.Context) (SwapReport, error) {
	swap, err := mem.SwapMemory()
	if err != nil {
		return SwapReport{}, fmt.Errorf("failed to read swap totals: %w", err)
	}

	report := SwapReport{
		TotalBytes:  swap.Total,
		UsedBytes:   swap.Used,
		UsedPercent: swap.UsedPercent,
	}
	if out, zramErr := runCommand(ctx, "zramctl"); zramErr == nil {
		report.Devices = parseZramctl(out)
	}
	return report, nil
}

// SetZramService enables or disables the JetPack nvzramconfig service,
// which configures the zram swap devices at boot. Takes effect
// immediately through systemctl --now. Requires root.
func SetZramService(ctx context.Context, enable bool) error {
	action := "disable"
	if enable {
		action = "enable"
	}
	if _, err := runCommand(ctx, "systemctl", action, "--now", "nvzramconfig"); err != nil {
		return fmt.Errorf("failed to %s the zram service: %w", action, err)
	}
	return nil
}

// parseZramctl reads the default zramctl table,
//
//	NAME       ALGORITHM DISKSIZE  DATA COMPR TOTAL STREAMS MOUNTPOINT
//	/dev/zram0 lz4           1.8G    4K   74B   12K       6 [SWAP]
func parseZramctl(out string) []ZramDevice {
	var devices []ZramDevice
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 7 || !strings.HasPrefix(fields[0], "/dev/") {
			continue
		}
		device := ZramDevice{
			Name:       fields[0],
			Algorithm:  fields[1],
			DiskSize:   fields[2],
			Data:       fields[3],
			Compressed: fields[4],
			Total:      fields[5],
			Streams:    fields[6],
		}
		if len(fields) > 7 {
			device.Mountpoint = fields[7]
		}
		devices = append(devices, device)
	}
	return devices
}
