// Package jetlab orchestrates GPU-enabled Jupyter Lab sessions on NVIDIA
// Jetson devices. It wraps the container runtime behind a small session
// model: one notebook server per host port, launched with the NVIDIA
// runtime, probed until ready, and torn down on request.
package jetlab

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jetson-tools/jetlab/pkg/runtime"
	"github.com/jetson-tools/jetlab/pkg/types"
)

// Jetlab orchestrates notebook sessions on one container engine. It
// holds no session state of its own: sessions are re-derived from the
// engine's labeled containers on every query, so instances are cheap
// and several can coexist in one process.
type Jetlab struct {
	Options types.Options
	Runtime runtime.Runtime

	// Progress receives human-oriented progress output such as the
	// readiness bar. Defaults to stderr; tests point it elsewhere.
	Progress io.Writer

	// mu serializes the port preflight and launch inside one process.
	mu sync.Mutex
}

// NewJetlab creates an orchestrator with options resolved from the
// configuration files and the runtime backend they select.
func NewJetlab() (j *Jetlab, err error) {
	options, err := getJetlabOptions()
	if err != nil {
		return
	}

	rt, err := runtime.New(options.Backend)
	if err != nil {
		return
	}

	j = &Jetlab{
		Options:  options,
		Runtime:  rt,
		Progress: os.Stderr,
	}
	return
}

// New creates an orchestrator with explicit options and runtime,
// bypassing configuration file resolution.
func New(options types.Options, rt runtime.Runtime) *Jetlab {
	fillDefaults(&options)
	return &Jetlab{Options: options, Runtime: rt, Progress: os.Stderr}
}

// getJetlabOptions reads jetlab configuration options following a
// defined priority order:
//  1. If the JETLAB_OPTS_FILE environment variable is set, the
//     configuration file path is extracted from this variable and used
//     as the sole source.
//  2. Otherwise, configuration files are searched in three predefined
//     locations, in order:
//     a. In the current user's specific path: "~/.config/jetlab/jetlab.json".
//     b. In the system directory: "/etc/jetlab/jetlab.json".
//     c. In the installation directory: "/usr/share/jetlab/jetlab.json".
//  3. If a configuration file is found, options are loaded from that
//     file; fields it omits keep their built-in defaults.
//  4. If no configuration file is found, the built-in defaults are used
//     as they are.
func getJetlabOptions() (options types.Options, err error) {
	options = types.DefaultOptions()

	confPaths, err := optionsPaths()
	if err != nil {
		return
	}

	for _, confPath := range confPaths {
		if _, statErr := os.Stat(confPath); statErr == nil {
			err = readOptions(confPath, &options)
			if err != nil {
				err = fmt.Errorf("failed to read configuration %s: %w", confPath, err)
				return
			}
			break
		}
	}

	fillDefaults(&options)
	return
}

// optionsPaths returns the configuration file locations in priority
// order.
func optionsPaths() ([]string, error) {
	if path := os.Getenv("JETLAB_OPTS_FILE"); path != "" {
		return []string{path}, nil
	}

	homedir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(homedir, ".config", "jetlab", "jetlab.json"),
		filepath.Join("/", "etc", "jetlab", "jetlab.json"),
		filepath.Join("/", "usr", "share", "jetlab", "jetlab.json"),
	}, nil
}

// readOptions reads and parses the configuration file at the given
// path. The file must be a valid JSON file.
func readOptions(path string, options *types.Options) (err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	err = json.NewDecoder(file).Decode(options)
	return
}

// LoadOptions resolves the configuration the same way NewJetlab does,
// without connecting to a container engine.
func LoadOptions() (types.Options, error) {
	return getJetlabOptions()
}

// SaveOptions writes the options to the user's configuration file,
// ~/.config/jetlab/jetlab.json, and returns the path written.
func SaveOptions(options types.Options) (path string, err error) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return
	}

	confDir := filepath.Join(homedir, ".config", "jetlab")
	err = os.MkdirAll(confDir, 0755)
	if err != nil {
		return
	}

	path = filepath.Join(confDir, "jetlab.json")
	file, err := os.Create(path)
	if err != nil {
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(options)
	return
}

// fillDefaults replaces zeroed fields with built-in defaults and derives
// the duration fields from their second counts.
func fillDefaults(options *types.Options) {
	defaults := types.DefaultOptions()

	if options.Image == "" {
		options.Image = defaults.Image
	}
	if options.Port == 0 {
		options.Port = defaults.Port
	}
	if options.ShmSize == "" {
		options.ShmSize = defaults.ShmSize
	}
	if options.ContainerRuntime == "" {
		options.ContainerRuntime = defaults.ContainerRuntime
	}
	if options.Backend == "" {
		options.Backend = defaults.Backend
	}
	if options.ReadyTimeoutSeconds <= 0 {
		options.ReadyTimeoutSeconds = defaults.ReadyTimeoutSeconds
	}
	if options.PollIntervalSeconds <= 0 {
		options.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if options.StopGraceSeconds <= 0 {
		options.StopGraceSeconds = defaults.StopGraceSeconds
	}

	options.ReadyTimeout = time.Duration(options.ReadyTimeoutSeconds) * time.Second
	options.PollInterval = time.Duration(options.PollIntervalSeconds) * time.Second
	options.StopGrace = time.Duration(options.StopGraceSeconds) * time.Second
}

// workspaceDir resolves the host workspace directory for a launch,
// falling back to the configured default and then to ~/jetlab. The
// directory is created if missing so the bind mount never fails on a
// fresh device.
func (j *Jetlab) workspaceDir(requested string) (string, error) {
	dir := requested
	if dir == "" {
		dir = j.Options.WorkspaceDir
	}
	if dir == "" {
		homedir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(homedir, "jetlab")
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
	}
	return dir, nil
}

// containerName returns the deterministic container name for a port.
// The name doubles as a engine-level guard: two sessions cannot share a
// port because they would share a name.
func containerName(port int) string {
	return fmt.Sprintf("jetlab-%d", port)
}
