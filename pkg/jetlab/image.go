package jetlab

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/go-containerregistry/pkg/crane"
)

// ImageInfo describes a notebook image as the registry reports it,
// before any layer lands on the device.
type ImageInfo struct {
	Reference    string
	Digest       string
	Created      time.Time
	SizeBytes    int64
	Architecture string
	OS           string
	Env          []string
	Labels       map[string]string
	ExposedPorts []string
}

// InspectImage queries the registry for an image's metadata without
// pulling its layers. The l4t images run to several gigabytes, so
// checking architecture and size beforehand saves a doomed pull on the
// wrong device.
func (j *Jetlab) InspectImage(ctx context.Context, image string) (info ImageInfo, err error) {
	if image == "" {
		image = j.Options.Image
	}
	info.Reference = image

	digest, err := crane.Digest(image, crane.WithContext(ctx))
	if err != nil {
		err = fmt.Errorf("failed to resolve image %s: %w", image, err)
		return
	}
	info.Digest = digest

	img, err := crane.Pull(image, crane.WithContext(ctx))
	if err != nil {
		err = fmt.Errorf("failed to read image %s: %w", image, err)
		return
	}

	cfg, err := img.ConfigFile()
	if err != nil {
		err = fmt.Errorf("failed to read config of image %s: %w", image, err)
		return
	}
	info.Architecture = cfg.Architecture
	info.OS = cfg.OS
	info.Created = cfg.Created.Time
	info.Env = cfg.Config.Env
	info.Labels = cfg.Config.Labels
	for port := range cfg.Config.ExposedPorts {
		info.ExposedPorts = append(info.ExposedPorts, port)
	}
	sort.Strings(info.ExposedPorts)

	manifest, err := img.Manifest()
	if err != nil {
		err = fmt.Errorf("failed to read manifest of image %s: %w", image, err)
		return
	}
	for _, layer := range manifest.Layers {
		info.SizeBytes += layer.Size
	}
	return
}
