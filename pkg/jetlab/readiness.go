package jetlab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jetson-tools/jetlab/pkg/logger"
	"github.com/jetson-tools/jetlab/pkg/runtime"
	"github.com/jetson-tools/jetlab/pkg/types"
	"github.com/schollz/progressbar/v3"
)

var probeClient = &http.Client{Timeout: 2 * time.Second}

// probeOnce reports whether the notebook server on the port answers.
// The probe is an HTTP GET against the server's API root rather than a
// bare TCP dial: the engine's port proxy accepts connections as soon as
// the port is published, long before Jupyter is listening.
func (j *Jetlab) probeOnce(ctx context.Context, port int) bool {
	url := fmt.Sprintf("http://127.0.0.1:%d/api", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := probeClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// waitReady polls the server until it answers, the window closes, the
// container dies, or ctx is canceled. On success the session moves to
// Ready. On timeout the session moves to Failed and the returned error
// carries the trailing container log lines.
func (j *Jetlab) waitReady(ctx context.Context, session *types.Session, timeout time.Duration, cleanup bool) error {
	polls := int(timeout / j.Options.PollInterval)
	if polls < 1 {
		polls = 1
	}
	bar := progressbar.NewOptions(polls,
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "━",
			SaucerHead:    "╸",
			SaucerPadding: " ",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionSetWriter(j.Progress),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(fmt.Sprintf("Waiting for notebook server on port %d", session.Port)),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(j.Progress, "\n") }),
	)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(j.Options.PollInterval)
	defer tick.Stop()

	for {
		if j.probeOnce(ctx, session.Port) {
			_ = bar.Finish()
			_ = session.Transition(types.SessionReady)
			logger.Printf("Session on port %d is ready", session.Port)
			return nil
		}

		// A dead container will never become ready; fail fast instead of
		// sitting out the rest of the window.
		c, inspErr := j.Runtime.Inspect(ctx, session.ContainerID)
		if errors.Is(inspErr, runtime.ErrNotFound) {
			_ = bar.Finish()
			_ = session.Transition(types.SessionFailed)
			return &LaunchError{Port: session.Port,
				Err: fmt.Errorf("container exited during startup and was auto-removed")}
		}
		if inspErr == nil && !c.IsRunning() {
			_ = bar.Finish()
			_ = session.Transition(types.SessionFailed)
			tail := j.logTail(ctx, session.ContainerID, 20)
			err := fmt.Errorf("container exited during startup (%s)", c.Status)
			if tail != "" {
				err = fmt.Errorf("container exited during startup (%s)\nlast container output:\n%s", c.Status, tail)
			}
			return &LaunchError{Port: session.Port, Err: err}
		}

		select {
		case <-ctx.Done():
			_ = bar.Finish()
			return j.abortWait(session, timeout, cleanup, ctx.Err())
		case <-deadline.C:
			_ = bar.Finish()
			return j.abortWait(session, timeout, cleanup, nil)
		case <-tick.C:
			_ = bar.Add(1)
		}
	}
}

// abortWait handles a readiness window that closed without an answer,
// from either the timeout or an interrupt. The default policy leaves
// the container running so the operator can inspect it; cleanup opts
// into tearing it down instead.
func (j *Jetlab) abortWait(session *types.Session, timeout time.Duration, cleanup bool, cause error) error {
	_ = session.Transition(types.SessionFailed)

	// The caller's context may already be canceled; diagnostics and
	// teardown get a short one of their own.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tail := j.logTail(ctx, session.ContainerID, 20)

	if cleanup {
		logger.Printf("Tearing down container %s", session.Name)
		if err := j.Runtime.Stop(ctx, session.ContainerID, j.Options.StopGrace); err != nil {
			logger.Warnf("Teardown stop failed: %v", err)
		}
		if err := j.Runtime.Remove(ctx, session.ContainerID); err != nil && !errors.Is(err, runtime.ErrNotFound) {
			logger.Warnf("Teardown remove failed: %v", err)
		}
	} else {
		logger.Printf("Container %s is still running; inspect it with 'jetlab logs --port %d' or remove it with 'jetlab stop --port %d'",
			session.Name, session.Port, session.Port)
	}

	if cause != nil {
		return fmt.Errorf("readiness wait interrupted: %w", cause)
	}
	return &ReadinessTimeoutError{Port: session.Port, Timeout: timeout, LogTail: tail}
}

// logTail returns the last n container log lines, best effort.
func (j *Jetlab) logTail(ctx context.Context, id string, n int) string {
	var buf bytes.Buffer
	if err := j.Runtime.Logs(ctx, id, false, n, &buf); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}
