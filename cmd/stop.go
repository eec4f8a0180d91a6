package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running session",
		Long: `Stop a running session, giving the notebook server a grace period
before the container is killed. Stopping a port with no session is not
an error.`,
		Args: cobra.NoArgs,
		RunE: StopSession,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port of the session to stop")
	cmd.Flags().Duration("grace", 0, "Grace period before the container is killed")

	return cmd
}

func stopError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while stopping the session: %w", iErr)
	return
}

func StopSession(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")
	grace, _ := cmd.Flags().GetDuration("grace")

	j, err := newJetlab()
	if err != nil {
		return stopError(err)
	}

	if port == 0 {
		port = j.Options.Port
	}
	if grace > 0 {
		j.Options.StopGrace = grace
		j.Options.StopGraceSeconds = int(grace / time.Second)
	}

	err = j.StopSession(cmd.Context(), port)
	if err != nil {
		return stopError(err)
	}

	return nil
}
