package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/jetson-tools/jetlab/pkg/logger"
	"golang.org/x/term"
)

// DockerCLI drives the container engine by exec'ing the docker binary,
// the same invocations an operator would type. Failures are detected by
// the child process exit status, never by scraping success output.
type DockerCLI struct {
	bin string
}

// NewDockerCLI returns the exec-based backend. The docker binary is
// resolved from PATH at invocation time.
func NewDockerCLI() *DockerCLI {
	return &DockerCLI{bin: "docker"}
}

// run executes one docker invocation and returns its stdout. On a
// non-zero exit the returned error carries the trailing stderr lines.
func (d *DockerCLI) run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("exec: %s %s", d.bin, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return stdout.String(), &cliError{
			args:   args,
			stderr: stderr.String(),
			err:    err,
		}
	}
	return stdout.String(), nil
}

// cliError is a failed docker invocation, keeping stderr so callers can
// classify the failure and surface diagnostics.
type cliError struct {
	args   []string
	stderr string
	err    error
}

func (e *cliError) Error() string {
	msg := tailLines(e.stderr, 5)
	if msg == "" {
		return fmt.Sprintf("docker %s: %v", e.args[0], e.err)
	}
	return fmt.Sprintf("docker %s: %v: %s", e.args[0], e.err, msg)
}

func (e *cliError) Unwrap() error { return e.err }

// notFound reports whether a docker invocation failed because the target
// container does not exist.
func notFound(err error) bool {
	var ce *cliError
	if !errors.As(err, &ce) {
		return false
	}
	return strings.Contains(ce.stderr, "No such container") ||
		strings.Contains(ce.stderr, "No such object")
}

// tailLines returns the last n non-empty lines of s joined by "; ".
func tailLines(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}

func (d *DockerCLI) Ping(ctx context.Context) error {
	if _, err := exec.LookPath(d.bin); err != nil {
		return fmt.Errorf("docker binary not found in PATH: %w", err)
	}
	if _, err := d.run(ctx, "version", "--format", "{{.Server.Version}}"); err != nil {
		return fmt.Errorf("container engine unreachable: %w", err)
	}
	return nil
}

// buildRunArgs translates a LaunchSpec into the docker run argument list.
// Label order is sorted so the invocation is deterministic.
func buildRunArgs(spec LaunchSpec) []string {
	args := []string{"run", "--detach", "--name", spec.Name}
	if spec.AutoRemove {
		args = append(args, "--rm")
	}
	if spec.Runtime != "" {
		args = append(args, "--runtime", spec.Runtime)
	}
	args = append(args, "--publish", fmt.Sprintf("%d:%d", spec.HostPort, spec.ContainerPort))
	if spec.ShmSize != "" {
		args = append(args, "--shm-size", spec.ShmSize)
	}
	if spec.WorkspaceDir != "" {
		args = append(args, "--volume", spec.WorkspaceDir+":"+spec.WorkspaceTarget)
	}
	for _, m := range spec.Mounts {
		args = append(args, "--volume", m)
	}
	for _, e := range spec.Env {
		args = append(args, "--env", e)
	}
	keys := make([]string, 0, len(spec.Labels))
	for k := range spec.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--label", k+"="+spec.Labels[k])
	}
	args = append(args, spec.Image)
	return args
}

func (d *DockerCLI) Launch(ctx context.Context, spec LaunchSpec) (string, error) {
	// Stream stderr through so the operator sees the image pull progress
	// docker run emits on a cold cache, while keeping a copy for the
	// failure diagnostics.
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.bin, buildRunArgs(spec)...)
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	logger.Debugf("exec: %s %s", d.bin, strings.Join(cmd.Args[1:], " "))
	if err := cmd.Run(); err != nil {
		return "", &cliError{args: cmd.Args[1:], stderr: stderr.String(), err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// psEntry is one line of docker ps --format '{{json .}}'.
type psEntry struct {
	ID        string `json:"ID"`
	Names     string `json:"Names"`
	Image     string `json:"Image"`
	State     string `json:"State"`
	Status    string `json:"Status"`
	Labels    string `json:"Labels"`
	CreatedAt string `json:"CreatedAt"`
}

// parseLabels splits docker ps's comma-joined label string into a map.
func parseLabels(s string) map[string]string {
	labels := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		labels[key] = value
	}
	return labels
}

// parsePSLine decodes one docker ps JSON line into a Container.
func parsePSLine(line string) (Container, error) {
	var entry psEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return Container{}, fmt.Errorf("unparseable container listing line: %w", err)
	}
	created, _ := time.Parse("2006-01-02 15:04:05 -0700 MST", entry.CreatedAt)
	return Container{
		ID:        entry.ID,
		Name:      entry.Names,
		Image:     entry.Image,
		State:     entry.State,
		Status:    entry.Status,
		Labels:    parseLabels(entry.Labels),
		CreatedAt: created,
	}, nil
}

func (d *DockerCLI) List(ctx context.Context) ([]Container, error) {
	out, err := d.run(ctx, "ps", "--all",
		"--filter", "label="+LabelManaged+"=true",
		"--format", "{{json .}}")
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var containers []Container
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c, err := parsePSLine(line)
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// inspectEntry is the subset of docker inspect output jetlab reads.
type inspectEntry struct {
	ID      string `json:"Id"`
	Created string `json:"Created"`
	Name    string `json:"Name"`
	State   struct {
		Status string `json:"Status"`
	} `json:"State"`
	Config struct {
		Image  string            `json:"Image"`
		Labels map[string]string `json:"Labels"`
	} `json:"Config"`
}

func (d *DockerCLI) Inspect(ctx context.Context, id string) (Container, error) {
	out, err := d.run(ctx, "inspect", "--format", "{{json .}}", id)
	if err != nil {
		if notFound(err) {
			return Container{}, ErrNotFound
		}
		return Container{}, fmt.Errorf("failed to inspect container %s: %w", id, err)
	}

	var entry inspectEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		return Container{}, fmt.Errorf("unparseable inspect output for %s: %w", id, err)
	}
	created, _ := time.Parse(time.RFC3339Nano, entry.Created)
	return Container{
		ID:        entry.ID,
		Name:      strings.TrimPrefix(entry.Name, "/"),
		Image:     entry.Config.Image,
		State:     entry.State.Status,
		Status:    entry.State.Status,
		Labels:    entry.Config.Labels,
		CreatedAt: created,
	}, nil
}

func (d *DockerCLI) Exec(ctx context.Context, id string, cmdline []string) (string, string, int, error) {
	args := append([]string{"exec", id}, cmdline...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("exec: %s %s", d.bin, strings.Join(args, " "))
	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		wrapped := &cliError{args: args, stderr: stderr.String(), err: err}
		if notFound(wrapped) {
			return "", "", 0, ErrNotFound
		}
		// The command inside the container failed; that is a result, not
		// an invocation error.
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}
	return "", "", 0, fmt.Errorf("failed to exec in container %s: %w", id, err)
}

func (d *DockerCLI) Stop(ctx context.Context, id string, grace time.Duration) error {
	secs := int(grace.Seconds())
	if secs < 1 {
		secs = 1
	}
	_, err := d.run(ctx, "stop", "--time", strconv.Itoa(secs), id)
	if err != nil && !notFound(err) {
		return fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return nil
}

func (d *DockerCLI) Kill(ctx context.Context, id string) error {
	_, err := d.run(ctx, "kill", id)
	if err != nil && !notFound(err) {
		return fmt.Errorf("failed to kill container %s: %w", id, err)
	}
	return nil
}

func (d *DockerCLI) Remove(ctx context.Context, id string) error {
	_, err := d.run(ctx, "rm", id)
	if err != nil && !notFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	return nil
}

func (d *DockerCLI) Logs(ctx context.Context, id string, follow bool, tail int, w io.Writer) error {
	args := []string{"logs"}
	if follow {
		args = append(args, "--follow")
	}
	if tail > 0 {
		args = append(args, "--tail", strconv.Itoa(tail))
	}
	args = append(args, id)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.bin, args...)
	// The notebook server logs on stderr; both streams go to the caller.
	cmd.Stdout = w
	cmd.Stderr = io.MultiWriter(w, &stderr)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Interrupted while following; not a failure.
			return nil
		}
		wrapped := &cliError{args: args, stderr: stderr.String(), err: err}
		if notFound(wrapped) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read container logs: %w", wrapped)
	}
	return nil
}

// Shell runs docker exec -it under a local pty so the container gets a
// real terminal, with window size kept in sync with the caller's.
func (d *DockerCLI) Shell(ctx context.Context, id string, cmdline []string) error {
	args := append([]string{"exec", "-it", id}, cmdline...)
	cmd := exec.CommandContext(ctx, d.bin, args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to allocate pty: %w", err)
	}
	defer ptmx.Close()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	winch <- syscall.SIGWINCH

	if term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, rawErr := term.MakeRaw(int(os.Stdin.Fd()))
		if rawErr == nil {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, ptmx)

	return cmd.Wait()
}

func (d *DockerCLI) Info(ctx context.Context) (Info, error) {
	version, err := d.run(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return Info{}, fmt.Errorf("container engine unreachable: %w", err)
	}

	out, err := d.run(ctx, "info", "--format", "{{json .Runtimes}}")
	if err != nil {
		return Info{}, fmt.Errorf("failed to read engine info: %w", err)
	}
	runtimes := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &runtimes); err != nil {
		return Info{}, fmt.Errorf("unparseable engine runtime list: %w", err)
	}
	names := make([]string, 0, len(runtimes))
	for name := range runtimes {
		names = append(names, name)
	}
	sort.Strings(names)

	return Info{
		ServerVersion: strings.TrimSpace(version),
		Runtimes:      names,
	}, nil
}
