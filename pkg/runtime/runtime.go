// Package runtime abstracts the container engine behind a small interface
// so the orchestration logic can be driven against the docker binary, the
// Engine API socket, or a fake in tests. Only containers carrying the
// jetlab labels are ever listed or touched.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Labels attached to every container jetlab launches. Sessions are
// re-derived from the engine by filtering on LabelManaged; the port and
// workspace travel as labels so no state lives outside the engine.
const (
	LabelManaged   = "jetlab.managed"
	LabelPort      = "jetlab.port"
	LabelWorkspace = "jetlab.workspace"
)

// ErrNotFound is returned by Inspect, Exec and Logs when the engine has no
// container with the given identifier. Stop, Kill and Remove swallow it:
// acting on a gone container is success.
var ErrNotFound = errors.New("container not found")

// LaunchSpec describes one container-start invocation.
type LaunchSpec struct {
	Image           string
	Name            string
	HostPort        int
	ContainerPort   int
	WorkspaceDir    string
	WorkspaceTarget string
	ShmSize         string
	Runtime         string
	Env             []string
	Mounts          []string
	Labels          map[string]string
	AutoRemove      bool
}

// Container is the engine's view of a container, reduced to what jetlab
// needs to re-derive a session.
type Container struct {
	ID        string
	Name      string
	Image     string
	State     string
	Status    string
	Labels    map[string]string
	CreatedAt time.Time
}

// IsRunning reports whether the engine considers the container alive.
func (c Container) IsRunning() bool {
	return c.State == "running"
}

// Info is the subset of engine details the doctor command reports.
type Info struct {
	ServerVersion string
	Runtimes      []string
}

// Runtime is the container engine surface jetlab depends on.
type Runtime interface {
	// Ping verifies the engine is reachable.
	Ping(ctx context.Context) error

	// Launch issues one container-start invocation and returns the
	// engine-assigned container identifier.
	Launch(ctx context.Context, spec LaunchSpec) (string, error)

	// List returns all jetlab-labeled containers, including exited ones.
	List(ctx context.Context) ([]Container, error)

	// Inspect returns one container by identifier, or ErrNotFound.
	Inspect(ctx context.Context, id string) (Container, error)

	// Exec runs a command inside the container and returns its separated
	// output streams and exit status.
	Exec(ctx context.Context, id string, cmd []string) (stdout, stderr string, exitCode int, err error)

	// Stop asks the container to exit within the grace period. A missing
	// container is success.
	Stop(ctx context.Context, id string, grace time.Duration) error

	// Kill terminates the container immediately. A missing container is
	// success.
	Kill(ctx context.Context, id string) error

	// Remove deletes a stopped container. A missing container is success.
	Remove(ctx context.Context, id string) error

	// Logs writes the container's output to w, optionally following and
	// limited to the last tail lines (0 means everything).
	Logs(ctx context.Context, id string, follow bool, tail int, w io.Writer) error

	// Shell runs an interactive command inside the container wired to the
	// caller's terminal.
	Shell(ctx context.Context, id string, cmd []string) error

	// Info returns engine version and configured runtimes.
	Info(ctx context.Context) (Info, error)
}

// New returns the runtime backend for the given name: "cli" execs the
// docker binary, "api" talks to the engine socket directly.
func New(backend string) (Runtime, error) {
	switch backend {
	case "", "cli":
		return NewDockerCLI(), nil
	case "api":
		return NewEngineAPI()
	default:
		return nil, fmt.Errorf("unknown container backend %q (want \"cli\" or \"api\")", backend)
	}
}
