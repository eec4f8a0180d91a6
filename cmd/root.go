package cmd

import (
	"github.com/jetson-tools/jetlab/pkg/jetlab"
	"github.com/jetson-tools/jetlab/pkg/runtime"
)

// Backend overrides the configured container backend when the root
// --backend flag is set.
var Backend string

// newJetlab builds the orchestrator, honoring the backend override.
func newJetlab() (*jetlab.Jetlab, error) {
	if Backend == "" {
		return jetlab.NewJetlab()
	}

	options, err := jetlab.LoadOptions()
	if err != nil {
		return nil, err
	}
	options.Backend = Backend

	rt, err := runtime.New(options.Backend)
	if err != nil {
		return nil, err
	}

	return jetlab.New(options, rt), nil
}
