package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell [command...]",
		Short: "Open an interactive shell inside a session",
		Long: `Open an interactive shell inside a running session, or run the given
command instead of a shell.`,
		RunE: SessionShell,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port of the session")

	return cmd
}

func shellError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while opening the session shell: %w", iErr)
	return
}

func SessionShell(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")

	j, err := newJetlab()
	if err != nil {
		return shellError(err)
	}

	if port == 0 {
		port = j.Options.Port
	}

	session, err := j.SessionByPort(cmd.Context(), port)
	if err != nil {
		return shellError(err)
	}
	if !session.Running() {
		return shellError(fmt.Errorf("session on port %d is not running", port))
	}

	command := args
	if len(command) == 0 {
		command = []string{"bash"}
	}

	err = j.Runtime.Shell(cmd.Context(), session.ContainerID, command)
	if err != nil {
		return shellError(err)
	}

	return nil
}
