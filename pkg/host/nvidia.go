package host

import "path/filepath"

// NvidiaArtifacts finds the host driver files and device nodes the
// nvidia container runtime maps into sessions. An empty result on a
// Jetson usually means the L4T drivers are missing or the JetPack
// install is broken.
func NvidiaArtifacts() []string {
	var found []string
	for _, pattern := range []string{
		"/dev/nvidia*",
		"/dev/nvhost-*",
		"/dev/nvmap",
		"/etc/nvidia-container-runtime/*",
		"/usr/lib/aarch64-linux-gnu/tegra/*.so*",
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		found = append(found, matches...)
	}
	return found
}
