package types

import "time"

// LaunchConfig is the per-start configuration assembled from flags and
// option defaults. Zero values mean "use the configured default".
type LaunchConfig struct {
	// Port is the host port to publish the notebook server on.
	Port int

	// WorkspaceDir is the host path mounted as the notebook workspace.
	WorkspaceDir string

	// ShmSize is the shared-memory allocation, e.g. "8g".
	ShmSize string

	// Token is the access token for the notebook web interface. Empty
	// means jetlab generates one.
	Token string

	// Image overrides the configured container image.
	Image string

	// Env is extra KEY=VALUE pairs for the container environment.
	Env []string

	// Mounts is extra bind mounts, /host/path:/container/path[:ro].
	Mounts []string

	// ReadyTimeout bounds the readiness probe; zero means the configured
	// default.
	ReadyTimeout time.Duration

	// CleanupOnTimeout tears the container down when the readiness probe
	// times out or is interrupted, instead of leaving it running for
	// inspection.
	CleanupOnTimeout bool

	// SkipGPUCheck disables the post-readiness GPU verification.
	SkipGPUCheck bool
}
