package jetlab

import (
	"errors"
	"fmt"
	"time"
)

// Exit statuses reported by the CLI. Scripts branch on these, so they
// are part of the command contract and must stay stable.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitConflict = 2
	ExitTimeout  = 3
)

// exitCoder is implemented by errors that carry their own exit status.
type exitCoder interface {
	ExitCode() int
}

// ExitCode maps an error to the process exit status for it. A nil error
// maps to 0 and errors without their own code map to 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitFailure
}

// LaunchError is a session launch that failed before the server was
// confirmed ready.
type LaunchError struct {
	Port int
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch session on port %d: %v", e.Port, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// PortConflictError reports that the requested host port is taken,
// either by another jetlab session or by a foreign process.
type PortConflictError struct {
	Port   int
	Holder string
}

func (e *PortConflictError) Error() string {
	if e.Holder != "" {
		return fmt.Sprintf("port %d is already in use by %s", e.Port, e.Holder)
	}
	return fmt.Sprintf("port %d is already in use", e.Port)
}

func (e *PortConflictError) ExitCode() int { return ExitConflict }

// ReadinessTimeoutError reports that the container came up but the
// notebook server never answered within the window. LogTail carries the
// trailing container output for diagnosis.
type ReadinessTimeoutError struct {
	Port    int
	Timeout time.Duration
	LogTail string
}

func (e *ReadinessTimeoutError) Error() string {
	msg := fmt.Sprintf("session on port %d not ready after %s", e.Port, e.Timeout)
	if e.LogTail != "" {
		msg += "\nlast container output:\n" + e.LogTail
	}
	return msg
}

func (e *ReadinessTimeoutError) ExitCode() int { return ExitTimeout }

// GPUUnavailableError reports that CUDA is not usable inside a running
// session. The session itself keeps serving on CPU.
type GPUUnavailableError struct {
	Reason string
}

func (e *GPUUnavailableError) Error() string {
	return "GPU unavailable: " + e.Reason
}

// NoSessionError reports that no managed session exists on the port.
type NoSessionError struct {
	Port int
}

func (e *NoSessionError) Error() string {
	return fmt.Sprintf("no session on port %d", e.Port)
}

// codedError overrides the exit status of a wrapped error. gpu-check
// uses it to distinguish a missing session from an unavailable GPU.
type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }
func (e *codedError) ExitCode() int { return e.code }

// WithExitCode returns err with its exit status forced to code.
func WithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &codedError{err: err, code: code}
}
