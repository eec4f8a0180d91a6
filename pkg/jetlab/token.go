package jetlab

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// jupyterServerEntry is one line of jupyter server list --json output.
type jupyterServerEntry struct {
	Token string `json:"token"`
	URL   string `json:"url"`
	Port  int    `json:"port"`
}

// Token returns the access token of the running session on the port by
// asking the server inside the container. The query is read-only and
// repeatable; the token never changes for the life of a session.
func (j *Jetlab) Token(ctx context.Context, port int) (string, error) {
	session, err := j.SessionByPort(ctx, port)
	if err != nil {
		return "", err
	}
	if !session.Running() {
		return "", &NoSessionError{Port: port}
	}

	stdout, stderr, code, err := j.Runtime.Exec(ctx, session.ContainerID, []string{
		"jupyter", "server", "list", "--json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to query notebook server: %w", err)
	}
	if code != 0 {
		// Older images ship the classic notebook frontend instead.
		stdout, stderr, code, err = j.Runtime.Exec(ctx, session.ContainerID, []string{
			"jupyter", "notebook", "list", "--json",
		})
		if err != nil {
			return "", fmt.Errorf("failed to query notebook server: %w", err)
		}
	}
	if code != 0 {
		return "", fmt.Errorf("notebook server listing failed with status %d: %s",
			code, strings.TrimSpace(stderr))
	}

	return parseServerList(stdout)
}

// parseServerList extracts the token from jupyter's server listing, one
// JSON document per line.
func parseServerList(out string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var entry jupyterServerEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Token != "" {
			return entry.Token, nil
		}
	}
	return "", fmt.Errorf("no notebook server reported a token")
}
