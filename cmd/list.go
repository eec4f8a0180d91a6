package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jetson-tools/jetlab/pkg/tools"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		Args:  cobra.NoArgs,
		RunE:  ListSessions,
	}

	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")

	return cmd
}

func listError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while listing sessions: %w", iErr)
	return
}

func ListSessions(cmd *cobra.Command, args []string) error {
	jsonFlag, err := cmd.Flags().GetBool("json")
	if err != nil {
		return listError(err)
	}

	j, err := newJetlab()
	if err != nil {
		return listError(err)
	}

	sessions, err := j.Sessions(cmd.Context())
	if err != nil {
		return listError(err)
	}

	if !jsonFlag {
		header := []string{"Port", "State", "Image", "Container", "Started"}
		data := [][]string{}
		for _, s := range sessions {
			data = append(data, []string{
				strconv.Itoa(s.Port),
				string(s.State),
				s.Image,
				s.Name,
				s.StartedAt.Format(time.RFC3339),
			})
		}
		tools.ShowTable(header, data)
	} else {
		jsonBytes, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return listError(err)
		}
		fmt.Println(string(jsonBytes))
	}

	return nil
}
