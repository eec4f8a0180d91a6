package jetlab

import (
	"context"
	"errors"

	"github.com/jetson-tools/jetlab/pkg/logger"
	"github.com/jetson-tools/jetlab/pkg/runtime"
)

// StopSession stops the session on the port: a graceful stop bounded by
// the configured grace window, then a kill if the container is somehow
// still alive. Stopping a port with no session is a no-op, so the
// start/stop pair is idempotent and stop can always be retried.
func (j *Jetlab) StopSession(ctx context.Context, port int) error {
	session, err := j.SessionByPort(ctx, port)
	if err != nil {
		var noSession *NoSessionError
		if errors.As(err, &noSession) {
			logger.Printf("No session on port %d, nothing to stop", port)
			return nil
		}
		return err
	}

	if session.Running() {
		logger.Printf("Stopping session %s", session.Name)
		if err := j.Runtime.Stop(ctx, session.ContainerID, j.Options.StopGrace); err != nil {
			logger.Warnf("Graceful stop failed: %v", err)
		}

		// With auto-remove the container disappears by itself once it
		// exits; otherwise check whether the grace window was enough.
		c, inspErr := j.Runtime.Inspect(ctx, session.ContainerID)
		if inspErr == nil && c.IsRunning() {
			logger.Warnf("Container %s survived the grace period, killing it", session.Name)
			if killErr := j.Runtime.Kill(ctx, session.ContainerID); killErr != nil {
				logger.Warnf("Kill failed: %v", killErr)
			}
		}
	}

	// Leftover exited containers keep their name and block the port for
	// the next start, so remove them here.
	if err := j.Runtime.Remove(ctx, session.ContainerID); err != nil && !errors.Is(err, runtime.ErrNotFound) {
		logger.Warnf("Failed to remove container %s: %v", session.Name, err)
	}

	logger.Printf("Session on port %d stopped", port)
	return nil
}
