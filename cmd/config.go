package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jetson-tools/jetlab/pkg/jetlab"
	"github.com/jetson-tools/jetlab/pkg/tools"
	"github.com/mirkobrombin/go-struct-flags/v1/binder"
	"github.com/spf13/cobra"
)

// NewConfigCommand returns the cobra command for showing the resolved
// configuration or setting a single key/value
func NewConfigCommand() *cobra.Command {
	var key, value string
	cmd := &cobra.Command{
		Use:   "config [-k key -v value]",
		Short: "Show the configuration or set a single key",
		Long: `Show the resolved configuration, or set a single key in the user
configuration file (~/.config/jetlab/jetlab.json).
Use JSON field names for KEY (e.g. image, port, shm_size, etc.).
For list fields (extra_env, extra_mounts), separate items with ','`,
		Args: cobra.NoArgs,
		RunE: RunConfig,
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Configuration key to set")
	cmd.Flags().StringVarP(&value, "value", "v", "", "Value to assign")
	return cmd
}

// RunConfig shows the configuration, or sets key to value and saves the
// user configuration file
func RunConfig(cmd *cobra.Command, args []string) error {
	key, err := cmd.Flags().GetString("key")
	if err != nil {
		return err
	}
	value, err := cmd.Flags().GetString("value")
	if err != nil {
		return err
	}

	options, err := jetlab.LoadOptions()
	if err != nil {
		return err
	}

	if key == "" {
		tools.PrintStructKeyVal(options)
		return nil
	}
	if value == "" {
		return fmt.Errorf("a value is required when setting a key")
	}

	// Initialize the flag binder
	binder, err := binder.NewBinder(&options, os.TempDir(), true)
	if err != nil {
		return err
	}

	// Mount specs carry colons, so list items are comma separated.
	argsList := []string{value}
	if key == "extra_env" || key == "extra_mounts" {
		argsList = strings.Split(value, ",")
	}

	// Register the key with the binder
	if err := binder.Run(key, argsList); err != nil {
		return err
	}

	path, err := jetlab.SaveOptions(options)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration %s=%s saved to %s\n", key, value, path)
	return nil
}
