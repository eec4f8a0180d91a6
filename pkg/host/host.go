// Package host integrates with the Jetson board tools that live outside
// the container engine: device identification, nvpmodel power profiles,
// jetson_clocks, ZRAM swap, and tegrastats sampling.
package host

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jetson-tools/jetlab/pkg/logger"
)

// runCommand executes one host tool invocation and returns its combined
// output. Host tools write diagnostics to both streams interchangeably,
// so they are captured together.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debugf("exec: %s %s", name, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
