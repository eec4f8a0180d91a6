package host

import (
	"os"
	"path/filepath"
	"strings"
)

// Device identifies the board and its L4T software release.
type Device struct {
	// Model is the device-tree model string, for example "NVIDIA Jetson
	// Orin Nano Developer Kit". Empty on non-Jetson hosts.
	Model string

	// L4TRelease is the Linux for Tegra release, for example "R36.2.0".
	// Empty when /etc/nv_tegra_release is absent.
	L4TRelease string
}

// IsJetson reports whether the host looks like a Jetson board.
func (d Device) IsJetson() bool {
	return strings.Contains(d.Model, "Jetson") || d.L4TRelease != ""
}

// Describe probes the board identity. Missing files produce empty
// fields rather than failures, so the same binary runs on a development
// workstation.
func Describe() Device {
	return describeFrom("/proc", "/etc")
}

// describeFrom is the testable implementation of Describe. It accepts
// root paths for /proc and /etc so tests can point at synthetic trees.
func describeFrom(procRoot, etcRoot string) Device {
	return Device{
		Model:      readDeviceTreeModel(filepath.Join(procRoot, "device-tree", "model")),
		L4TRelease: parseTegraRelease(readFirstLine(filepath.Join(etcRoot, "nv_tegra_release"))),
	}
}

// readDeviceTreeModel reads the NUL-terminated model string the kernel
// exposes from the device tree.
func readDeviceTreeModel(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(raw), "\x00\n ")
}

// readFirstLine returns the first line of a file, or "" if unreadable.
func readFirstLine(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(raw), "\n")
	return strings.TrimSpace(line)
}

// parseTegraRelease reduces the banner line of /etc/nv_tegra_release,
//
//	# R36 (release), REVISION: 2.0, GCID: 34956989, BOARD: generic, ...
//
// to the compact form "R36.2.0".
func parseTegraRelease(line string) string {
	var major, revision string
	fields := strings.Fields(line)
	for i, field := range fields {
		trimmed := strings.TrimSuffix(field, ",")
		if major == "" && len(trimmed) > 1 && trimmed[0] == 'R' && trimmed[1] >= '0' && trimmed[1] <= '9' {
			major = trimmed
		}
		if trimmed == "REVISION:" && i+1 < len(fields) {
			revision = strings.TrimSuffix(fields[i+1], ",")
		}
	}
	if major == "" {
		return ""
	}
	if revision == "" {
		return major
	}
	return major + "." + revision
}
