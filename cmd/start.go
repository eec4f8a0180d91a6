package cmd

import (
	"errors"
	"fmt"

	"github.com/jetson-tools/jetlab/pkg/jetlab"
	"github.com/jetson-tools/jetlab/pkg/types"
	"github.com/spf13/cobra"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a GPU-enabled Jupyter Lab session",
		Long: `Start a GPU-enabled Jupyter Lab session.

The container is launched with the NVIDIA runtime and the workspace
directory mounted at /workspace. The command waits until the notebook
server answers on the published port, verifies the GPU is visible from
inside the container, and prints the access URL.

On a readiness timeout or Ctrl-C the container is left running for
inspection unless --cleanup-on-timeout is given; jetlab prints the
follow-up commands either way.`,
		Args: cobra.NoArgs,
		RunE: StartSession,
	}

	cmd.Flags().IntP("port", "p", 0, "Host port to publish the notebook server on")
	cmd.Flags().StringP("workspace", "w", "", "Host directory mounted at /workspace")
	cmd.Flags().String("image", "", "Container image to launch")
	cmd.Flags().String("shm-size", "", "Shared memory size, e.g. 8g")
	cmd.Flags().String("token", "", "Access token (generated when empty)")
	cmd.Flags().StringArrayP("env", "e", nil, "Extra environment variable, KEY=VALUE")
	cmd.Flags().StringArrayP("mount", "m", nil, "Extra bind mount, /host/path:/container/path[:ro]")
	cmd.Flags().Duration("timeout", 0, "Readiness wait window, e.g. 90s")
	cmd.Flags().Bool("cleanup-on-timeout", false, "Remove the container when readiness times out")
	cmd.Flags().Bool("no-gpu-check", false, "Skip the GPU verification step")

	return cmd
}

func startError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while starting the session: %w", iErr)
	return
}

func StartSession(cmd *cobra.Command, args []string) (err error) {
	port, _ := cmd.Flags().GetInt("port")
	workspace, _ := cmd.Flags().GetString("workspace")
	image, _ := cmd.Flags().GetString("image")
	shmSize, _ := cmd.Flags().GetString("shm-size")
	token, _ := cmd.Flags().GetString("token")
	env, _ := cmd.Flags().GetStringArray("env")
	mounts, _ := cmd.Flags().GetStringArray("mount")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	cleanup, _ := cmd.Flags().GetBool("cleanup-on-timeout")
	noGPUCheck, _ := cmd.Flags().GetBool("no-gpu-check")

	j, err := newJetlab()
	if err != nil {
		return startError(err)
	}

	session, err := j.StartSession(cmd.Context(), types.LaunchConfig{
		Port:             port,
		WorkspaceDir:     workspace,
		Image:            image,
		ShmSize:          shmSize,
		Token:            token,
		Env:              env,
		Mounts:           mounts,
		ReadyTimeout:     timeout,
		CleanupOnTimeout: cleanup,
		SkipGPUCheck:     noGPUCheck,
	})
	if err != nil {
		var timeoutErr *jetlab.ReadinessTimeoutError
		if errors.As(err, &timeoutErr) {
			return err
		}
		return startError(err)
	}

	fmt.Println("Session is ready:", session.AccessURL())
	fmt.Println("Workspace:", session.WorkspaceDir)
	fmt.Println("Container:", session.Name)
	fmt.Printf("Stop it with: jetlab stop --port %d\n", session.Port)

	return nil
}
