package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"
	"github.com/jetson-tools/jetlab/pkg/logger"
	"golang.org/x/term"
)

// EngineAPI drives the container engine over its API socket using the
// Docker SDK. It honors DOCKER_HOST, so it also works against remote
// engines where no docker binary is installed locally.
type EngineAPI struct {
	cli *client.Client
}

// NewEngineAPI creates the API-based backend from the environment.
func NewEngineAPI() (*EngineAPI, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}
	return &EngineAPI{cli: cli}, nil
}

func (a *EngineAPI) Ping(ctx context.Context) error {
	if _, err := a.cli.Ping(ctx); err != nil {
		return fmt.Errorf("container engine unreachable: %w", err)
	}
	return nil
}

// parseBindMounts turns /host/path:/container/path[:ro] specs into API
// mount descriptors.
func parseBindMounts(specs []string) ([]mount.Mount, error) {
	var mounts []mount.Mount
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid mount %q (want /host/path:/container/path[:ro])", spec)
		}
		m := mount.Mount{
			Type:   mount.TypeBind,
			Source: parts[0],
			Target: parts[1],
		}
		if len(parts) == 3 {
			if parts[2] != "ro" {
				return nil, fmt.Errorf("invalid mount option %q in %q (only \"ro\" is supported)", parts[2], spec)
			}
			m.ReadOnly = true
		}
		mounts = append(mounts, m)
	}
	return mounts, nil
}

func (a *EngineAPI) Launch(ctx context.Context, spec LaunchSpec) (string, error) {
	port, err := nat.NewPort("tcp", strconv.Itoa(spec.ContainerPort))
	if err != nil {
		return "", fmt.Errorf("invalid container port %d: %w", spec.ContainerPort, err)
	}

	mountSpecs := spec.Mounts
	if spec.WorkspaceDir != "" {
		mountSpecs = append([]string{spec.WorkspaceDir + ":" + spec.WorkspaceTarget}, mountSpecs...)
	}
	mounts, err := parseBindMounts(mountSpecs)
	if err != nil {
		return "", err
	}

	hostConfig := &container.HostConfig{
		Runtime:    spec.Runtime,
		AutoRemove: spec.AutoRemove,
		Mounts:     mounts,
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(spec.HostPort)}},
		},
	}
	if spec.ShmSize != "" {
		shm, err := units.RAMInBytes(spec.ShmSize)
		if err != nil {
			return "", fmt.Errorf("invalid shm size %q: %w", spec.ShmSize, err)
		}
		hostConfig.ShmSize = shm
	}

	config := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		Labels:       spec.Labels,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}

	resp, err := a.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	if client.IsErrNotFound(err) {
		// Image not present locally; pull it and retry once, matching
		// what docker run does for the operator.
		logger.Printf("Image %s not found locally, pulling...", spec.Image)
		reader, pullErr := a.cli.ImagePull(ctx, spec.Image, types.ImagePullOptions{})
		if pullErr != nil {
			return "", fmt.Errorf("failed to pull image %s: %w", spec.Image, pullErr)
		}
		_, _ = io.Copy(io.Discard, reader)
		reader.Close()
		resp, err = a.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, spec.Name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	return resp.ID, nil
}

func (a *EngineAPI) List(ctx context.Context) ([]Container, error) {
	listed, err := a.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelManaged+"=true")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var containers []Container
	for _, c := range listed {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		containers = append(containers, Container{
			ID:        c.ID,
			Name:      name,
			Image:     c.Image,
			State:     c.State,
			Status:    c.Status,
			Labels:    c.Labels,
			CreatedAt: time.Unix(c.Created, 0),
		})
	}
	return containers, nil
}

func (a *EngineAPI) Inspect(ctx context.Context, id string) (Container, error) {
	insp, err := a.cli.ContainerInspect(ctx, id)
	if client.IsErrNotFound(err) {
		return Container{}, ErrNotFound
	}
	if err != nil {
		return Container{}, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	created, _ := time.Parse(time.RFC3339Nano, insp.Created)
	c := Container{
		ID:        insp.ID,
		Name:      strings.TrimPrefix(insp.Name, "/"),
		CreatedAt: created,
	}
	if insp.State != nil {
		c.State = insp.State.Status
		c.Status = insp.State.Status
	}
	if insp.Config != nil {
		c.Image = insp.Config.Image
		c.Labels = insp.Config.Labels
	}
	return c, nil
}

func (a *EngineAPI) Exec(ctx context.Context, id string, cmd []string) (string, string, int, error) {
	execResp, err := a.cli.ContainerExecCreate(ctx, id, types.ExecConfig{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if client.IsErrNotFound(err) {
		return "", "", 0, ErrNotFound
	}
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create exec in container %s: %w", id, err)
	}

	attach, err := a.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{})
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to attach exec in container %s: %w", id, err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return "", "", 0, fmt.Errorf("failed to read exec output: %w", err)
	}

	insp, err := a.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to inspect exec result: %w", err)
	}
	return stdout.String(), stderr.String(), insp.ExitCode, nil
}

func (a *EngineAPI) Stop(ctx context.Context, id string, grace time.Duration) error {
	secs := int(grace.Seconds())
	if secs < 1 {
		secs = 1
	}
	err := a.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &secs})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return nil
}

func (a *EngineAPI) Kill(ctx context.Context, id string) error {
	err := a.cli.ContainerKill(ctx, id, "KILL")
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to kill container %s: %w", id, err)
	}
	return nil
}

func (a *EngineAPI) Remove(ctx context.Context, id string) error {
	err := a.cli.ContainerRemove(ctx, id, types.ContainerRemoveOptions{})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}

func (a *EngineAPI) Logs(ctx context.Context, id string, follow bool, tail int, w io.Writer) error {
	opts := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     follow,
	}
	if tail > 0 {
		opts.Tail = strconv.Itoa(tail)
	}

	rc, err := a.cli.ContainerLogs(ctx, id, opts)
	if client.IsErrNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read container logs: %w", err)
	}
	defer rc.Close()

	// Containers are launched without a TTY, so the stream is multiplexed.
	if _, err := stdcopy.StdCopy(w, w, rc); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to copy container logs: %w", err)
	}
	return nil
}

func (a *EngineAPI) Shell(ctx context.Context, id string, cmd []string) error {
	execResp, err := a.cli.ContainerExecCreate(ctx, id, types.ExecConfig{
		Cmd:          cmd,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          true,
	})
	if client.IsErrNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to create shell in container %s: %w", id, err)
	}

	attach, err := a.cli.ContainerExecAttach(ctx, execResp.ID, types.ExecStartCheck{Tty: true})
	if err != nil {
		return fmt.Errorf("failed to attach shell in container %s: %w", id, err)
	}
	defer attach.Close()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, rawErr := term.MakeRaw(int(os.Stdin.Fd()))
		if rawErr == nil {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	go func() {
		_, _ = io.Copy(attach.Conn, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, attach.Reader)

	insp, err := a.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil
	}
	if insp.ExitCode != 0 {
		return fmt.Errorf("shell exited with status %d", insp.ExitCode)
	}
	return nil
}

func (a *EngineAPI) Info(ctx context.Context) (Info, error) {
	info, err := a.cli.Info(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read engine info: %w", err)
	}
	names := make([]string, 0, len(info.Runtimes))
	for name := range info.Runtimes {
		names = append(names, name)
	}
	sort.Strings(names)
	return Info{
		ServerVersion: info.ServerVersion,
		Runtimes:      names,
	}, nil
}
