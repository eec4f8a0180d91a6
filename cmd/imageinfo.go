package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/jetson-tools/jetlab/pkg/tools"
	"github.com/spf13/cobra"
)

func NewImageInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image-info [reference]",
		Short: "Inspect a container image without pulling it",
		Long: `Inspect a container image's registry metadata without pulling its
layers. The notebook images run to several gigabytes, so checking the
architecture and download size first saves a doomed pull on the wrong
board.`,
		Args: cobra.MaximumNArgs(1),
		RunE: ImageInfo,
	}
	return cmd
}

func imageInfoError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while inspecting the image: %w", iErr)
	return
}

func ImageInfo(cmd *cobra.Command, args []string) (err error) {
	j, err := newJetlab()
	if err != nil {
		return imageInfoError(err)
	}

	reference := j.Options.Image
	if len(args) > 0 {
		reference = args[0]
	}

	fmt.Println("Inspecting image:", reference)

	info, err := j.InspectImage(cmd.Context(), reference)
	if err != nil {
		return imageInfoError(err)
	}

	data := [][]string{
		{"Digest", info.Digest},
		{"Platform", info.OS + "/" + info.Architecture},
		{"Download size", units.HumanSize(float64(info.SizeBytes))},
	}
	if !info.Created.IsZero() {
		data = append(data, []string{"Created", info.Created.Format(time.RFC3339)})
	}
	if len(info.ExposedPorts) > 0 {
		data = append(data, []string{"Exposed ports", strings.Join(info.ExposedPorts, ", ")})
	}
	tools.ShowTable([]string{"Key", "Value"}, data)

	if info.Architecture != "arm64" {
		fmt.Println("Warning: image is not built for arm64 and will not run on a Jetson.")
	}

	return nil
}
