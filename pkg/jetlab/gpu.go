package jetlab

import (
	"context"
	"fmt"
	"strings"

	"github.com/jetson-tools/jetlab/pkg/types"
)

// gpuProbeScript runs inside the session container. It prints one
// cuda=<bool> line and, when a device is visible, one name=<device>
// line. torch ships in the l4t machine-learning images and is the
// authoritative answer to whether notebooks can reach the GPU.
const gpuProbeScript = `import torch
print("cuda=%s" % torch.cuda.is_available())
if torch.cuda.is_available():
    print("name=%s" % torch.cuda.get_device_name(0))
`

// VerifyGPU checks that CUDA is usable inside the running session on
// the port. The session keeps serving either way; a GPUUnavailableError
// only signals the degraded state.
func (j *Jetlab) VerifyGPU(ctx context.Context, port int) (types.GPUReport, error) {
	session, err := j.SessionByPort(ctx, port)
	if err != nil {
		return types.GPUReport{}, err
	}
	if !session.Running() {
		return types.GPUReport{}, &NoSessionError{Port: port}
	}

	stdout, stderr, code, err := j.Runtime.Exec(ctx, session.ContainerID, []string{
		"python3", "-c", gpuProbeScript,
	})
	if err != nil {
		return types.GPUReport{}, fmt.Errorf("failed to run GPU probe: %w", err)
	}

	report := parseGPUProbe(stdout)
	report.Raw = strings.TrimSpace(stdout)
	if code != 0 {
		reason := fmt.Sprintf("probe exited with status %d", code)
		if msg := strings.TrimSpace(stderr); msg != "" {
			reason += ": " + msg
		}
		return report, &GPUUnavailableError{Reason: reason}
	}
	if !report.Available {
		return report, &GPUUnavailableError{Reason: "torch reports CUDA is not available"}
	}
	return report, nil
}

// parseGPUProbe reads the cuda= and name= lines the probe prints.
func parseGPUProbe(out string) types.GPUReport {
	var report types.GPUReport
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if value, found := strings.CutPrefix(line, "cuda="); found {
			report.Available = strings.EqualFold(value, "true")
		}
		if value, found := strings.CutPrefix(line, "name="); found {
			report.DeviceName = value
		}
	}
	return report
}
