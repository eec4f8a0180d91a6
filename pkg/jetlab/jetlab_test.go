package jetlab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jetson-tools/jetlab/pkg/runtime"
	"github.com/jetson-tools/jetlab/pkg/types"
)

// fakeRuntime implements runtime.Runtime in memory. Launched containers
// optionally serve a real HTTP endpoint on the host port so the
// readiness probe has an actual server to talk to.
type fakeRuntime struct {
	mu         sync.Mutex
	containers map[string]*fakeContainer
	nextID     int

	launchErr  error
	serveReady bool
	deadOnBoot bool

	execOut  string
	execErr  string
	execCode int
	execLog  [][]string

	logs string
}

type fakeContainer struct {
	c          runtime.Container
	autoRemove bool
	listener   net.Listener
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{containers: map[string]*fakeContainer{}}
}

func (f *fakeRuntime) Ping(ctx context.Context) error { return nil }

func (f *fakeRuntime) Launch(ctx context.Context, spec runtime.LaunchSpec) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.launchErr != nil {
		return "", f.launchErr
	}

	f.nextID++
	id := fmt.Sprintf("container-%d", f.nextID)
	fc := &fakeContainer{
		c: runtime.Container{
			ID:        id,
			Name:      spec.Name,
			Image:     spec.Image,
			State:     "running",
			Status:    "Up 1 second",
			Labels:    spec.Labels,
			CreatedAt: time.Now(),
		},
		autoRemove: spec.AutoRemove,
	}
	if f.deadOnBoot {
		fc.c.State = "exited"
		fc.c.Status = "Exited (1) 1 second ago"
	}
	if f.serveReady && !f.deadOnBoot {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", spec.HostPort))
		if err != nil {
			return "", err
		}
		fc.listener = ln
		mux := http.NewServeMux()
		mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		go func() { _ = http.Serve(ln, mux) }()
	}

	f.containers[id] = fc
	return id, nil
}

func (f *fakeRuntime) List(ctx context.Context) ([]runtime.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []runtime.Container
	for _, fc := range f.containers {
		out = append(out, fc.c)
	}
	return out, nil
}

func (f *fakeRuntime) Inspect(ctx context.Context, id string) (runtime.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fc, ok := f.containers[id]
	if !ok {
		return runtime.Container{}, runtime.ErrNotFound
	}
	return fc.c, nil
}

func (f *fakeRuntime) Exec(ctx context.Context, id string, cmd []string) (string, string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.containers[id]; !ok {
		return "", "", 0, runtime.ErrNotFound
	}
	f.execLog = append(f.execLog, cmd)
	return f.execOut, f.execErr, f.execCode, nil
}

// halt marks a container exited and, on auto-remove, deletes it the way
// the engine would.
func (f *fakeRuntime) halt(id string) {
	fc, ok := f.containers[id]
	if !ok {
		return
	}
	if fc.listener != nil {
		fc.listener.Close()
		fc.listener = nil
	}
	fc.c.State = "exited"
	fc.c.Status = "Exited (0) 1 second ago"
	if fc.autoRemove {
		delete(f.containers, id)
	}
}

func (f *fakeRuntime) Stop(ctx context.Context, id string, grace time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halt(id)
	return nil
}

func (f *fakeRuntime) Kill(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halt(id)
	return nil
}

func (f *fakeRuntime) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fc, ok := f.containers[id]; ok && fc.listener != nil {
		fc.listener.Close()
	}
	delete(f.containers, id)
	return nil
}

func (f *fakeRuntime) Logs(ctx context.Context, id string, follow bool, tail int, w io.Writer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.containers[id]; !ok {
		return runtime.ErrNotFound
	}
	_, err := io.WriteString(w, f.logs)
	return err
}

func (f *fakeRuntime) Shell(ctx context.Context, id string, cmd []string) error { return nil }

func (f *fakeRuntime) Info(ctx context.Context) (runtime.Info, error) {
	return runtime.Info{ServerVersion: "25.0.0", Runtimes: []string{"nvidia", "runc"}}, nil
}

// seed registers a container directly, bypassing Launch.
func (f *fakeRuntime) seed(id, name, state string, port int, autoRemove bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers[id] = &fakeContainer{
		c: runtime.Container{
			ID:     id,
			Name:   name,
			Image:  "test/l4t-ml:latest",
			State:  state,
			Status: state,
			Labels: map[string]string{
				runtime.LabelManaged: "true",
				runtime.LabelPort:    strconv.Itoa(port),
			},
			CreatedAt: time.Now(),
		},
		autoRemove: autoRemove,
	}
}

func (f *fakeRuntime) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.containers)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func testJetlab(rt runtime.Runtime) *Jetlab {
	j := New(types.Options{
		Image:               "test/l4t-ml:latest",
		ShmSize:             "1g",
		ContainerRuntime:    "nvidia",
		AutoRemove:          true,
		ReadyTimeoutSeconds: 5,
		PollIntervalSeconds: 1,
		StopGraceSeconds:    1,
	}, rt)
	j.Options.PollInterval = 20 * time.Millisecond
	j.Progress = io.Discard
	return j
}

func startConfig(t *testing.T, port int) types.LaunchConfig {
	t.Helper()
	return types.LaunchConfig{
		Port:         port,
		WorkspaceDir: t.TempDir(),
		Token:        "secret",
		ReadyTimeout: 2 * time.Second,
		SkipGPUCheck: true,
	}
}

func TestStartSessionBecomesReady(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	j := testJetlab(rt)
	port := freePort(t)

	session, err := j.StartSession(context.Background(), startConfig(t, port))
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if session.State != types.SessionReady {
		t.Errorf("session state = %s, want %s", session.State, types.SessionReady)
	}
	if got, want := session.Name, fmt.Sprintf("jetlab-%d", port); got != want {
		t.Errorf("session name = %q, want %q", got, want)
	}
	if session.Token() != "secret" {
		t.Errorf("session token = %q, want %q", session.Token(), "secret")
	}

	c, err := rt.Inspect(context.Background(), session.ContainerID)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if c.Labels[runtime.LabelPort] != strconv.Itoa(port) {
		t.Errorf("container port label = %q, want %q", c.Labels[runtime.LabelPort], strconv.Itoa(port))
	}
	if c.Labels[runtime.LabelManaged] != "true" {
		t.Errorf("container managed label = %q, want %q", c.Labels[runtime.LabelManaged], "true")
	}
}

func TestStartThenStopLeavesNothingRunning(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	j := testJetlab(rt)
	port := freePort(t)

	if _, err := j.StartSession(context.Background(), startConfig(t, port)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := j.StopSession(context.Background(), port); err != nil {
		t.Fatalf("StopSession() error = %v", err)
	}

	sessions, err := j.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	for _, s := range sessions {
		if s.Running() {
			t.Errorf("session on port %d still running after stop", s.Port)
		}
	}
}

func TestStatusReportsReadyThenGone(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	j := testJetlab(rt)
	port := freePort(t)

	if _, err := j.StartSession(context.Background(), startConfig(t, port)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	session, err := j.Status(context.Background(), port)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if session.State != types.SessionReady {
		t.Errorf("status state = %s, want %s", session.State, types.SessionReady)
	}

	if err := j.StopSession(context.Background(), port); err != nil {
		t.Fatalf("StopSession() error = %v", err)
	}

	_, err = j.Status(context.Background(), port)
	var noSession *NoSessionError
	if !errors.As(err, &noSession) {
		t.Fatalf("Status() after stop error = %v, want NoSessionError", err)
	}
	if code := ExitCode(err); code != ExitFailure {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, ExitFailure)
	}
}

func TestStopTwiceIsNoOp(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	j := testJetlab(rt)
	port := freePort(t)

	if _, err := j.StartSession(context.Background(), startConfig(t, port)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := j.StopSession(context.Background(), port); err != nil {
		t.Fatalf("first StopSession() error = %v", err)
	}
	if err := j.StopSession(context.Background(), port); err != nil {
		t.Fatalf("second StopSession() error = %v", err)
	}
}

func TestStartTwiceSamePortConflicts(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	j := testJetlab(rt)
	port := freePort(t)

	if _, err := j.StartSession(context.Background(), startConfig(t, port)); err != nil {
		t.Fatalf("first StartSession() error = %v", err)
	}

	_, err := j.StartSession(context.Background(), startConfig(t, port))
	var conflict *PortConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second StartSession() error = %v, want PortConflictError", err)
	}
	if code := ExitCode(err); code != ExitConflict {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, ExitConflict)
	}
}

func TestConcurrentStartsOnePort(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	j := testJetlab(rt)
	port := freePort(t)
	cfg := startConfig(t, port)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := j.StartSession(context.Background(), cfg)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var conflict *PortConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("unexpected StartSession() error = %v", err)
		}
		conflicts++
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly one of each", successes, conflicts)
	}
	if rt.count() != 1 {
		t.Errorf("container count = %d, want 1", rt.count())
	}
}

func TestStartOnForeignPortConflicts(t *testing.T) {
	port := freePort(t)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		t.Fatalf("failed to occupy port: %v", err)
	}
	defer ln.Close()

	j := testJetlab(newFakeRuntime())
	_, err = j.StartSession(context.Background(), startConfig(t, port))
	var conflict *PortConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("StartSession() error = %v, want PortConflictError", err)
	}
}

func TestStartRemovesStoppedLeftover(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	rt.seed("stale-1", "jetlab-0", "exited", 0, false)
	j := testJetlab(rt)
	port := freePort(t)
	rt.seed("stale-2", fmt.Sprintf("jetlab-%d", port), "exited", port, false)

	session, err := j.StartSession(context.Background(), startConfig(t, port))
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if session.State != types.SessionReady {
		t.Errorf("session state = %s, want %s", session.State, types.SessionReady)
	}
	if _, err := rt.Inspect(context.Background(), "stale-2"); !errors.Is(err, runtime.ErrNotFound) {
		t.Errorf("stale container on the port was not removed")
	}
	if _, err := rt.Inspect(context.Background(), "stale-1"); err != nil {
		t.Errorf("unrelated stale container was removed")
	}
}

func TestLaunchFailure(t *testing.T) {
	rt := newFakeRuntime()
	rt.launchErr = errors.New("engine rejected the create")
	j := testJetlab(rt)

	_, err := j.StartSession(context.Background(), startConfig(t, freePort(t)))
	var launch *LaunchError
	if !errors.As(err, &launch) {
		t.Fatalf("StartSession() error = %v, want LaunchError", err)
	}
	if code := ExitCode(err); code != ExitFailure {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, ExitFailure)
	}
}

func TestReadinessTimeoutLeavesContainer(t *testing.T) {
	rt := newFakeRuntime()
	rt.logs = "Traceback: kernel went away\n"
	j := testJetlab(rt)
	port := freePort(t)

	cfg := startConfig(t, port)
	cfg.ReadyTimeout = 150 * time.Millisecond

	session, err := j.StartSession(context.Background(), cfg)
	var timeout *ReadinessTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("StartSession() error = %v, want ReadinessTimeoutError", err)
	}
	if code := ExitCode(err); code != ExitTimeout {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, ExitTimeout)
	}
	if !strings.Contains(timeout.LogTail, "kernel went away") {
		t.Errorf("timeout log tail = %q, want the container output", timeout.LogTail)
	}
	if session.State != types.SessionFailed {
		t.Errorf("session state = %s, want %s", session.State, types.SessionFailed)
	}
	if rt.count() != 1 {
		t.Errorf("container count = %d, want 1 (left running for inspection)", rt.count())
	}
}

func TestReadinessTimeoutCleanup(t *testing.T) {
	rt := newFakeRuntime()
	j := testJetlab(rt)
	port := freePort(t)

	cfg := startConfig(t, port)
	cfg.ReadyTimeout = 150 * time.Millisecond
	cfg.CleanupOnTimeout = true

	_, err := j.StartSession(context.Background(), cfg)
	var timeout *ReadinessTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("StartSession() error = %v, want ReadinessTimeoutError", err)
	}
	if rt.count() != 0 {
		t.Errorf("container count = %d, want 0 after cleanup", rt.count())
	}
}

func TestReadinessInterruptLeavesContainer(t *testing.T) {
	rt := newFakeRuntime()
	j := testJetlab(rt)
	port := freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	cfg := startConfig(t, port)
	cfg.ReadyTimeout = 5 * time.Second

	_, err := j.StartSession(ctx, cfg)
	if err == nil {
		t.Fatal("StartSession() succeeded despite the interrupt")
	}
	var timeout *ReadinessTimeoutError
	if errors.As(err, &timeout) {
		t.Fatalf("StartSession() error = %v, want an interrupt error, not a timeout", err)
	}
	if rt.count() != 1 {
		t.Errorf("container count = %d, want 1 (left running on interrupt)", rt.count())
	}
}

func TestContainerDiedDuringStartup(t *testing.T) {
	rt := newFakeRuntime()
	rt.deadOnBoot = true
	rt.logs = "OCI runtime create failed\n"
	j := testJetlab(rt)

	cfg := startConfig(t, freePort(t))
	session, err := j.StartSession(context.Background(), cfg)
	var launch *LaunchError
	if !errors.As(err, &launch) {
		t.Fatalf("StartSession() error = %v, want LaunchError", err)
	}
	if session.State != types.SessionFailed {
		t.Errorf("session state = %s, want %s", session.State, types.SessionFailed)
	}
}

func TestTokenRepeatedQueriesReturnSameValue(t *testing.T) {
	rt := newFakeRuntime()
	rt.serveReady = true
	rt.execOut = `{"token": "abc123", "url": "http://localhost:8888/", "port": 8888}` + "\n"
	j := testJetlab(rt)
	port := freePort(t)

	if _, err := j.StartSession(context.Background(), startConfig(t, port)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	first, err := j.Token(context.Background(), port)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	second, err := j.Token(context.Background(), port)
	if err != nil {
		t.Fatalf("second Token() error = %v", err)
	}
	if first != "abc123" || second != first {
		t.Errorf("Token() = %q then %q, want %q both times", first, second, "abc123")
	}

	if len(rt.execLog) == 0 || rt.execLog[0][0] != "jupyter" {
		t.Errorf("token retrieval did not query jupyter, exec log: %v", rt.execLog)
	}
}

func TestTokenWithoutSession(t *testing.T) {
	j := testJetlab(newFakeRuntime())
	_, err := j.Token(context.Background(), 8888)
	var noSession *NoSessionError
	if !errors.As(err, &noSession) {
		t.Fatalf("Token() error = %v, want NoSessionError", err)
	}
	if code := ExitCode(err); code != ExitFailure {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, ExitFailure)
	}
}

func TestVerifyGPU(t *testing.T) {
	rt := newFakeRuntime()
	rt.seed("gpu-1", "jetlab-8888", "running", 8888, true)
	j := testJetlab(rt)

	rt.execOut = "cuda=True\nname=Orin\n"
	report, err := j.VerifyGPU(context.Background(), 8888)
	if err != nil {
		t.Fatalf("VerifyGPU() error = %v", err)
	}
	if !report.Available {
		t.Errorf("report.Available = false, want true")
	}
	if report.DeviceName != "Orin" {
		t.Errorf("report.DeviceName = %q, want %q", report.DeviceName, "Orin")
	}

	rt.execOut = "cuda=False\n"
	_, err = j.VerifyGPU(context.Background(), 8888)
	var unavailable *GPUUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("VerifyGPU() error = %v, want GPUUnavailableError", err)
	}
	if code := ExitCode(err); code != ExitFailure {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, ExitFailure)
	}
}

func TestVerifyGPUWithoutSession(t *testing.T) {
	j := testJetlab(newFakeRuntime())
	_, err := j.VerifyGPU(context.Background(), 8888)
	var noSession *NoSessionError
	if !errors.As(err, &noSession) {
		t.Fatalf("VerifyGPU() error = %v, want NoSessionError", err)
	}
	if code := ExitCode(WithExitCode(err, ExitConflict)); code != ExitConflict {
		t.Errorf("ExitCode(WithExitCode(err, 2)) = %d, want %d", code, ExitConflict)
	}
}

func TestSessionsSortedByPort(t *testing.T) {
	rt := newFakeRuntime()
	rt.seed("c-1", "jetlab-9999", "running", 9999, true)
	rt.seed("c-2", "jetlab-8888", "exited", 8888, false)
	j := testJetlab(rt)

	sessions, err := j.Sessions(context.Background())
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].Port != 8888 || sessions[1].Port != 9999 {
		t.Errorf("sessions out of port order: %d, %d", sessions[0].Port, sessions[1].Port)
	}
	if sessions[0].State != types.SessionStopped {
		t.Errorf("exited container state = %s, want %s", sessions[0].State, types.SessionStopped)
	}
	if sessions[1].State != types.SessionStarting {
		t.Errorf("running container state = %s, want %s", sessions[1].State, types.SessionStarting)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitFailure},
		{"launch", &LaunchError{Port: 8888, Err: errors.New("boom")}, ExitFailure},
		{"port conflict", &PortConflictError{Port: 8888}, ExitConflict},
		{"readiness timeout", &ReadinessTimeoutError{Port: 8888, Timeout: time.Minute}, ExitTimeout},
		{"gpu unavailable", &GPUUnavailableError{Reason: "no device"}, ExitFailure},
		{"no session", &NoSessionError{Port: 8888}, ExitFailure},
		{"no session recoded", WithExitCode(&NoSessionError{Port: 8888}, ExitConflict), ExitConflict},
		{"wrapped conflict", fmt.Errorf("start: %w", &PortConflictError{Port: 8888}), ExitConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestOptionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jetlab.json")
	content := `{"port": 9999, "image": "custom/lab:latest", "ready_timeout_seconds": 120}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write options file: %v", err)
	}
	t.Setenv("JETLAB_OPTS_FILE", path)

	options, err := getJetlabOptions()
	if err != nil {
		t.Fatalf("getJetlabOptions() error = %v", err)
	}
	if options.Port != 9999 {
		t.Errorf("Port = %d, want 9999", options.Port)
	}
	if options.Image != "custom/lab:latest" {
		t.Errorf("Image = %q, want %q", options.Image, "custom/lab:latest")
	}
	if options.ReadyTimeout != 120*time.Second {
		t.Errorf("ReadyTimeout = %s, want 120s", options.ReadyTimeout)
	}
	if options.ShmSize != "8g" {
		t.Errorf("ShmSize = %q, want the default %q", options.ShmSize, "8g")
	}
}

func TestOptionsDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("JETLAB_OPTS_FILE", filepath.Join(t.TempDir(), "missing.json"))

	options, err := getJetlabOptions()
	if err != nil {
		t.Fatalf("getJetlabOptions() error = %v", err)
	}
	defaults := types.DefaultOptions()
	if options.Image != defaults.Image {
		t.Errorf("Image = %q, want default %q", options.Image, defaults.Image)
	}
	if options.Port != defaults.Port {
		t.Errorf("Port = %d, want default %d", options.Port, defaults.Port)
	}
	if options.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %s, want 2s", options.PollInterval)
	}
}

func TestSaveOptionsRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("JETLAB_OPTS_FILE", "")

	options := types.DefaultOptions()
	options.Port = 9090
	options.ExtraEnv = []string{"JUPYTER_ENABLE_LAB=yes"}

	path, err := SaveOptions(options)
	if err != nil {
		t.Fatalf("SaveOptions() error = %v", err)
	}
	if want := filepath.Join(home, ".config", "jetlab", "jetlab.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	loaded, err := LoadOptions()
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if loaded.Port != 9090 {
		t.Errorf("Port = %d, want 9090", loaded.Port)
	}
	if len(loaded.ExtraEnv) != 1 || loaded.ExtraEnv[0] != "JUPYTER_ENABLE_LAB=yes" {
		t.Errorf("ExtraEnv = %v, want the saved value", loaded.ExtraEnv)
	}
}

func TestParseServerList(t *testing.T) {
	out := "[JupyterServerListApp] Currently running servers:\n" +
		`{"base_url": "/", "token": "deadbeef", "url": "http://0.0.0.0:8888/", "port": 8888}` + "\n"
	token, err := parseServerList(out)
	if err != nil {
		t.Fatalf("parseServerList() error = %v", err)
	}
	if token != "deadbeef" {
		t.Errorf("token = %q, want %q", token, "deadbeef")
	}

	if _, err := parseServerList("no servers here\n"); err == nil {
		t.Errorf("parseServerList() on empty listing did not fail")
	}
}

func TestParseGPUProbe(t *testing.T) {
	report := parseGPUProbe("cuda=True\nname=Orin\n")
	if !report.Available || report.DeviceName != "Orin" {
		t.Errorf("parseGPUProbe() = %+v, want available Orin", report)
	}

	report = parseGPUProbe("cuda=False\n")
	if report.Available {
		t.Errorf("parseGPUProbe() reports available on cuda=False")
	}
	if report.DeviceName != "" {
		t.Errorf("DeviceName = %q, want empty", report.DeviceName)
	}
}
