package jetlab

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/jetson-tools/jetlab/pkg/logger"
	"github.com/jetson-tools/jetlab/pkg/runtime"
	"github.com/jetson-tools/jetlab/pkg/types"
)

// The notebook server inside the l4t images listens on 8888; the host
// workspace is mounted at a fixed path so notebooks have a stable root
// regardless of which directory was shared.
const (
	notebookPort    = 8888
	workspaceTarget = "/workspace"
)

// StartSession launches a notebook session and waits for the server to
// become ready. On success the returned session is Ready and carries
// the access token. A readiness timeout returns the session in its
// Failed state together with a ReadinessTimeoutError.
func (j *Jetlab) StartSession(ctx context.Context, cfg types.LaunchConfig) (types.Session, error) {
	session, err := j.launch(ctx, cfg)
	if err != nil {
		return types.Session{}, err
	}

	timeout := cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = j.Options.ReadyTimeout
	}
	if err := j.waitReady(ctx, &session, timeout, cfg.CleanupOnTimeout); err != nil {
		return session, err
	}

	if !cfg.SkipGPUCheck {
		report, gpuErr := j.VerifyGPU(ctx, session.Port)
		if gpuErr != nil {
			logger.Warnf("GPU verification failed: %v", gpuErr)
			logger.Warnf("The session is running, but notebooks will not see the GPU.")
		} else {
			logger.Printf("GPU available: %s", report.DeviceName)
		}
	}

	return session, nil
}

// launch runs the preflight checks and starts the container. The mutex
// covers the whole window so two starts in one process cannot race each
// other onto a port; across processes the deterministic container name
// makes the engine reject the second create.
func (j *Jetlab) launch(ctx context.Context, cfg types.LaunchConfig) (types.Session, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	port := cfg.Port
	if port == 0 {
		port = j.Options.Port
	}

	if err := j.preflight(ctx, port); err != nil {
		return types.Session{}, err
	}

	workspace, err := j.workspaceDir(cfg.WorkspaceDir)
	if err != nil {
		return types.Session{}, &LaunchError{Port: port, Err: err}
	}

	token := cfg.Token
	if token == "" {
		token = uuid.NewString()
	}

	image := cfg.Image
	if image == "" {
		image = j.Options.Image
	}
	shm := cfg.ShmSize
	if shm == "" {
		shm = j.Options.ShmSize
	}

	env := []string{"JUPYTER_TOKEN=" + token}
	env = append(env, j.Options.ExtraEnv...)
	env = append(env, cfg.Env...)

	mounts := append([]string{}, j.Options.ExtraMounts...)
	mounts = append(mounts, cfg.Mounts...)

	spec := runtime.LaunchSpec{
		Image:           image,
		Name:            containerName(port),
		HostPort:        port,
		ContainerPort:   notebookPort,
		WorkspaceDir:    workspace,
		WorkspaceTarget: workspaceTarget,
		ShmSize:         shm,
		Runtime:         j.Options.ContainerRuntime,
		Env:             env,
		Mounts:          mounts,
		Labels: map[string]string{
			runtime.LabelManaged:   "true",
			runtime.LabelPort:      strconv.Itoa(port),
			runtime.LabelWorkspace: workspace,
		},
		AutoRemove: j.Options.AutoRemove,
	}

	logger.Printf("Starting session on port %d with image %s", port, image)
	id, err := j.Runtime.Launch(ctx, spec)
	if err != nil {
		return types.Session{}, &LaunchError{Port: port, Err: err}
	}

	session := types.Session{
		ContainerID:  id,
		Name:         spec.Name,
		Port:         port,
		WorkspaceDir: workspace,
		Image:        image,
		State:        types.SessionStarting,
	}
	_ = session.SetToken(token)
	return session, nil
}

// preflight enforces one session per port before anything is launched.
// A running managed container on the port is a conflict; an exited
// leftover is removed so the name can be reused. A bind probe then
// catches foreign processes holding the port, which the engine would
// only reject after the container is already created.
func (j *Jetlab) preflight(ctx context.Context, port int) error {
	containers, err := j.Runtime.List(ctx)
	if err != nil {
		return &LaunchError{Port: port, Err: err}
	}
	for _, c := range containers {
		if c.Labels[runtime.LabelPort] != strconv.Itoa(port) {
			continue
		}
		if c.IsRunning() {
			return &PortConflictError{Port: port, Holder: "session " + c.Name}
		}
		logger.Printf("Removing stopped leftover container %s", c.Name)
		if err := j.Runtime.Remove(ctx, c.ID); err != nil {
			return &LaunchError{Port: port, Err: err}
		}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return &PortConflictError{Port: port}
	}
	ln.Close()
	return nil
}
