package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the session on a port",
		Long: `Show the state of the session on a port.

Exits 0 when a session is running on the port, non-zero otherwise, so
the command can gate scripts.`,
		Args: cobra.NoArgs,
		RunE: SessionStatus,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port of the session")
	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")

	return cmd
}

func SessionStatus(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")
	jsonFlag, _ := cmd.Flags().GetBool("json")

	j, err := newJetlab()
	if err != nil {
		return err
	}

	if port == 0 {
		port = j.Options.Port
	}

	session, err := j.Status(cmd.Context(), port)
	if err != nil {
		return err
	}

	if jsonFlag {
		jsonBytes, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Println("State:", session.State)
		fmt.Println("Container:", session.Name)
		fmt.Println("Image:", session.Image)
		if session.WorkspaceDir != "" {
			fmt.Println("Workspace:", session.WorkspaceDir)
		}
		if !session.StartedAt.IsZero() {
			fmt.Println("Started:", session.StartedAt.Format("2006-01-02 15:04:05"))
		}
	}

	if !session.Running() {
		return fmt.Errorf("session on port %d is not running", port)
	}

	if !jsonFlag {
		fmt.Println("URL:", session.AccessURL())
	}
	return nil
}
