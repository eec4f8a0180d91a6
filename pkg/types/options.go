package types

import "time"

// Options is the jetlab configuration document (jetlab.json). Every field
// has a built-in default so the file is optional; flags override whatever
// the file provides. The flag tags are consumed by the config-set binder,
// keyed by the JSON field names.
type Options struct {
	// Image is the notebook container image to launch. The default is the
	// NVIDIA L4T machine-learning image, which ships Jupyter Lab
	// preinstalled.
	Image string `json:"image" flag:"image,string"`

	// Port is the default host port the notebook server is published on.
	Port int `json:"port" flag:"port,int"`

	// WorkspaceDir is the default host directory mounted into the
	// container as the notebook workspace. Empty means ~/jetlab.
	WorkspaceDir string `json:"workspace_dir" flag:"workspace_dir,string"`

	// ShmSize is the shared-memory allocation for the container. Data
	// loaders burn through the 64 MB container default quickly.
	ShmSize string `json:"shm_size" flag:"shm_size,string"`

	// ContainerRuntime is the runtime handed to the container engine for
	// GPU access. On JetPack this is "nvidia".
	ContainerRuntime string `json:"container_runtime" flag:"container_runtime,string"`

	// Backend selects how jetlab talks to the container engine: "cli"
	// execs the docker binary, "api" talks to the engine socket directly.
	Backend string `json:"backend" flag:"backend,string"`

	// AutoRemove makes the runtime delete the container once it exits, so
	// stopped sessions leave nothing behind.
	AutoRemove bool `json:"auto_remove" flag:"auto_remove,bool"`

	// ReadyTimeoutSeconds bounds the readiness probe after start.
	ReadyTimeoutSeconds int `json:"ready_timeout_seconds" flag:"ready_timeout_seconds,int"`

	// PollIntervalSeconds is the fixed delay between readiness probe
	// attempts.
	PollIntervalSeconds int `json:"poll_interval_seconds" flag:"poll_interval_seconds,int"`

	// StopGraceSeconds is how long a stop invocation waits for the
	// container to exit before escalating to a kill.
	StopGraceSeconds int `json:"stop_grace_seconds" flag:"stop_grace_seconds,int"`

	// ExtraEnv is appended to every session's environment, KEY=VALUE.
	ExtraEnv []string `json:"extra_env" flag:"extra_env,strings"`

	// ExtraMounts is appended to every session's mounts,
	// /host/path:/container/path[:ro].
	ExtraMounts []string `json:"extra_mounts" flag:"extra_mounts,strings"`

	// Following durations are derived from the *Seconds fields after the
	// options are loaded; they are not part of the configuration file.
	ReadyTimeout time.Duration `json:"-"`
	PollInterval time.Duration `json:"-"`
	StopGrace    time.Duration `json:"-"`
}

// DefaultOptions returns the built-in configuration used when no options
// file is found.
func DefaultOptions() Options {
	return Options{
		Image:               "dustynv/l4t-ml:r36.2.0",
		Port:                8888,
		ShmSize:             "8g",
		ContainerRuntime:    "nvidia",
		Backend:             "cli",
		AutoRemove:          true,
		ReadyTimeoutSeconds: 60,
		PollIntervalSeconds: 2,
		StopGraceSeconds:    10,
	}
}
