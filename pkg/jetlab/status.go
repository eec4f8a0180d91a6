package jetlab

import (
	"context"
	"sort"
	"strconv"

	"github.com/jetson-tools/jetlab/pkg/runtime"
	"github.com/jetson-tools/jetlab/pkg/types"
)

// sessionFromContainer derives the session view of one managed
// container. A running container counts as Starting until a probe
// confirms the server answers; an exited one is Stopped.
func sessionFromContainer(c runtime.Container) types.Session {
	port, _ := strconv.Atoi(c.Labels[runtime.LabelPort])
	s := types.Session{
		ContainerID:  c.ID,
		Name:         c.Name,
		Port:         port,
		WorkspaceDir: c.Labels[runtime.LabelWorkspace],
		Image:        c.Image,
		StartedAt:    c.CreatedAt,
		State:        types.SessionStopped,
	}
	if c.IsRunning() {
		s.State = types.SessionStarting
	}
	return s
}

// Sessions lists every managed session the runtime knows about, running
// or not, ordered by port. Sessions are derived entirely from labeled
// containers; there is no registry to fall out of sync with.
func (j *Jetlab) Sessions(ctx context.Context) ([]types.Session, error) {
	containers, err := j.Runtime.List(ctx)
	if err != nil {
		return nil, err
	}

	sessions := make([]types.Session, 0, len(containers))
	for _, c := range containers {
		sessions = append(sessions, sessionFromContainer(c))
	}
	sort.Slice(sessions, func(a, b int) bool { return sessions[a].Port < sessions[b].Port })
	return sessions, nil
}

// SessionByPort returns the managed session on the given port, or a
// NoSessionError when none exists.
func (j *Jetlab) SessionByPort(ctx context.Context, port int) (types.Session, error) {
	containers, err := j.Runtime.List(ctx)
	if err != nil {
		return types.Session{}, err
	}
	for _, c := range containers {
		if c.Labels[runtime.LabelPort] == strconv.Itoa(port) {
			return sessionFromContainer(c), nil
		}
	}
	return types.Session{}, &NoSessionError{Port: port}
}

// Status reports the session on the given port, probing the server once
// to distinguish Ready from Starting.
func (j *Jetlab) Status(ctx context.Context, port int) (types.Session, error) {
	session, err := j.SessionByPort(ctx, port)
	if err != nil {
		return types.Session{}, err
	}
	if session.State == types.SessionStarting && j.probeOnce(ctx, session.Port) {
		_ = session.Transition(types.SessionReady)
	}
	return session, nil
}
