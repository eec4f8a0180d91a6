package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the container output of a session",
		Args:  cobra.NoArgs,
		RunE:  SessionLogs,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port of the session")
	cmd.Flags().BoolP("follow", "f", false, "Keep streaming output until interrupted")
	cmd.Flags().IntP("tail", "n", 0, "Only print the last N lines")

	return cmd
}

func logsError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while reading session logs: %w", iErr)
	return
}

func SessionLogs(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")
	follow, _ := cmd.Flags().GetBool("follow")
	tail, _ := cmd.Flags().GetInt("tail")

	j, err := newJetlab()
	if err != nil {
		return logsError(err)
	}

	if port == 0 {
		port = j.Options.Port
	}

	session, err := j.SessionByPort(cmd.Context(), port)
	if err != nil {
		return logsError(err)
	}

	err = j.Runtime.Logs(cmd.Context(), session.ContainerID, follow, tail, os.Stdout)
	if err != nil {
		return logsError(err)
	}

	return nil
}
