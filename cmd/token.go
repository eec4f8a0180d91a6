package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the access token of a running session",
		Long: `Print the access token of a running session.

The token is read from the notebook server inside the container, so it
is the same value on every invocation for the lifetime of the session.`,
		Args: cobra.NoArgs,
		RunE: SessionToken,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port of the session")
	cmd.Flags().Bool("url", false, "Print the full access URL instead of the bare token")

	return cmd
}

func tokenError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while reading the token: %w", iErr)
	return
}

func SessionToken(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")
	asURL, _ := cmd.Flags().GetBool("url")

	j, err := newJetlab()
	if err != nil {
		return tokenError(err)
	}

	if port == 0 {
		port = j.Options.Port
	}

	token, err := j.Token(cmd.Context(), port)
	if err != nil {
		return tokenError(err)
	}

	if asURL {
		fmt.Printf("http://localhost:%d/?token=%s\n", port, token)
		return nil
	}

	fmt.Println(token)
	return nil
}
