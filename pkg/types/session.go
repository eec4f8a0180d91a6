package types

import (
	"fmt"
	"time"
)

// SessionState is the lifecycle state of a notebook session. States only
// move forward: Starting can become Ready or Failed, Ready can become
// Stopped. There is no way back.
type SessionState string

const (
	// SessionStarting means the container-start invocation succeeded and
	// the server inside has not been confirmed ready yet.
	SessionStarting SessionState = "Starting"

	// SessionReady means the readiness probe confirmed the server is
	// accepting connections.
	SessionReady SessionState = "Ready"

	// SessionFailed means the server never became ready within the
	// readiness window, or the container died while waiting.
	SessionFailed SessionState = "Failed"

	// SessionStopped means a stop invocation was issued, or the container
	// is otherwise gone.
	SessionStopped SessionState = "Stopped"
)

// validTransitions maps each state to the states it may move into.
var validTransitions = map[SessionState][]SessionState{
	SessionStarting: {SessionReady, SessionFailed},
	SessionReady:    {SessionStopped},
	SessionFailed:   {},
	SessionStopped:  {},
}

// CanTransition reports whether moving from s to next is a legal forward
// step in the session lifecycle.
func (s SessionState) CanTransition(next SessionState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session represents one running instance of the GPU-enabled notebook
// server, identified by its container. Sessions are never persisted by
// jetlab; they are re-derived from the container runtime on every
// invocation, so everything here is either assigned by the runtime or
// recomputed from its metadata.
type Session struct {
	// ContainerID is the identifier the container runtime assigned at
	// creation.
	ContainerID string `json:"container_id"`

	// Name is the deterministic container name, jetlab-<port>.
	Name string `json:"name"`

	// Port is the host port the notebook server is published on. One
	// session per port.
	Port int `json:"port"`

	// WorkspaceDir is the host path mounted into the container as the
	// notebook workspace.
	WorkspaceDir string `json:"workspace_dir"`

	// Image is the container image the session runs.
	Image string `json:"image"`

	// State is the current lifecycle state.
	State SessionState `json:"state"`

	// StartedAt is when the container was created, as reported by the
	// runtime.
	StartedAt time.Time `json:"started_at,omitempty"`

	// token is the access credential for the notebook web interface. It
	// is immutable once set; later invocations re-derive it by querying
	// the server inside the container.
	token string
}

// Transition moves the session into next, enforcing the forward-only
// lifecycle. Transitioning into the current state is a no-op.
func (s *Session) Transition(next SessionState) error {
	if s.State == next {
		return nil
	}
	if !s.State.CanTransition(next) {
		return fmt.Errorf("invalid session state transition %s -> %s", s.State, next)
	}
	s.State = next
	return nil
}

// SetToken assigns the session's access token. The token is immutable: a
// second assignment with a different value is rejected.
func (s *Session) SetToken(token string) error {
	if s.token != "" && s.token != token {
		return fmt.Errorf("session token already assigned")
	}
	s.token = token
	return nil
}

// Token returns the access token, or an empty string if none has been
// assigned in this process.
func (s *Session) Token() string {
	return s.token
}

// AccessURL returns the browser URL for the session, including the token
// query parameter when one is known.
func (s *Session) AccessURL() string {
	if s.token == "" {
		return fmt.Sprintf("http://localhost:%d/", s.Port)
	}
	return fmt.Sprintf("http://localhost:%d/?token=%s", s.Port, s.token)
}

// Running reports whether the session is in a state where the container
// is expected to be alive.
func (s *Session) Running() bool {
	return s.State == SessionStarting || s.State == SessionReady
}
