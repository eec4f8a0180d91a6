package runtime

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestBuildRunArgs(t *testing.T) {
	tests := []struct {
		name string
		spec LaunchSpec
		want []string
	}{
		{
			name: "full spec",
			spec: LaunchSpec{
				Image:           "dustynv/l4t-ml:r36.2.0",
				Name:            "jetlab-8888",
				HostPort:        8888,
				ContainerPort:   8888,
				WorkspaceDir:    "/home/nvidia/notebooks",
				WorkspaceTarget: "/workspace",
				ShmSize:         "8g",
				Runtime:         "nvidia",
				Env:             []string{"JUPYTER_TOKEN=abc"},
				Mounts:          []string{"/data:/data:ro"},
				Labels: map[string]string{
					"jetlab.port":    "8888",
					"jetlab.managed": "true",
				},
				AutoRemove: true,
			},
			want: []string{
				"run", "--detach", "--name", "jetlab-8888", "--rm",
				"--runtime", "nvidia",
				"--publish", "8888:8888",
				"--shm-size", "8g",
				"--volume", "/home/nvidia/notebooks:/workspace",
				"--volume", "/data:/data:ro",
				"--env", "JUPYTER_TOKEN=abc",
				"--label", "jetlab.managed=true",
				"--label", "jetlab.port=8888",
				"dustynv/l4t-ml:r36.2.0",
			},
		},
		{
			name: "minimal spec",
			spec: LaunchSpec{
				Image:         "busybox",
				Name:          "jetlab-9000",
				HostPort:      9000,
				ContainerPort: 8888,
			},
			want: []string{
				"run", "--detach", "--name", "jetlab-9000",
				"--publish", "9000:8888",
				"busybox",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildRunArgs(tt.spec)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildRunArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePSLine(t *testing.T) {
	line := `{"ID":"f2d3","Names":"jetlab-8888","Image":"dustynv/l4t-ml:r36.2.0",` +
		`"State":"running","Status":"Up 3 minutes",` +
		`"Labels":"jetlab.managed=true,jetlab.port=8888",` +
		`"CreatedAt":"2026-08-23 10:15:00 +0000 UTC"}`

	got, err := parsePSLine(line)
	if err != nil {
		t.Fatalf("parsePSLine() error = %v", err)
	}
	if got.ID != "f2d3" {
		t.Errorf("ID = %q, want %q", got.ID, "f2d3")
	}
	if got.Name != "jetlab-8888" {
		t.Errorf("Name = %q, want %q", got.Name, "jetlab-8888")
	}
	if !got.IsRunning() {
		t.Errorf("IsRunning() = false, want true")
	}
	if got.Labels[LabelPort] != "8888" {
		t.Errorf("Labels[%q] = %q, want %q", LabelPort, got.Labels[LabelPort], "8888")
	}
	if got.CreatedAt.IsZero() {
		t.Errorf("CreatedAt not parsed from %q", "2026-08-23 10:15:00 +0000 UTC")
	}

	if _, err := parsePSLine("not json"); err == nil {
		t.Errorf("parsePSLine() on garbage input did not fail")
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "two labels",
			in:   "jetlab.managed=true,jetlab.port=8888",
			want: map[string]string{"jetlab.managed": "true", "jetlab.port": "8888"},
		},
		{
			name: "value with equals sign",
			in:   "jetlab.workspace=/srv/lab=shared",
			want: map[string]string{"jetlab.workspace": "/srv/lab=shared"},
		},
		{
			name: "empty string",
			in:   "",
			want: map[string]string{},
		},
		{
			name: "bare key skipped",
			in:   "orphan,jetlab.managed=true",
			want: map[string]string{"jetlab.managed": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLabels(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseLabels(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTailLines(t *testing.T) {
	in := "one\ntwo\n\nthree\nfour\n"
	if got, want := tailLines(in, 2), "three; four"; got != want {
		t.Errorf("tailLines(%q, 2) = %q, want %q", in, got, want)
	}
	if got, want := tailLines(in, 10), "one; two; three; four"; got != want {
		t.Errorf("tailLines(%q, 10) = %q, want %q", in, got, want)
	}
	if got := tailLines("", 5); got != "" {
		t.Errorf("tailLines(\"\", 5) = %q, want \"\"", got)
	}
}

func TestNotFound(t *testing.T) {
	missing := &cliError{
		args:   []string{"inspect", "jetlab-8888"},
		stderr: "Error response from daemon: No such container: jetlab-8888\n",
		err:    errors.New("exit status 1"),
	}
	if !notFound(missing) {
		t.Errorf("notFound() = false for a missing-container error")
	}
	if !notFound(fmt.Errorf("failed to inspect: %w", missing)) {
		t.Errorf("notFound() = false for a wrapped missing-container error")
	}

	other := &cliError{
		args:   []string{"stop", "jetlab-8888"},
		stderr: "Cannot connect to the Docker daemon\n",
		err:    errors.New("exit status 1"),
	}
	if notFound(other) {
		t.Errorf("notFound() = true for a daemon connection error")
	}
	if notFound(errors.New("plain error")) {
		t.Errorf("notFound() = true for a non-docker error")
	}
}

func TestCLIErrorMessage(t *testing.T) {
	e := &cliError{
		args:   []string{"run", "--detach", "busybox"},
		stderr: "line one\nline two\n",
		err:    errors.New("exit status 125"),
	}
	msg := e.Error()
	if !strings.Contains(msg, "docker run") {
		t.Errorf("Error() = %q, want the docker subcommand named", msg)
	}
	if !strings.Contains(msg, "line two") {
		t.Errorf("Error() = %q, want trailing stderr included", msg)
	}
}
