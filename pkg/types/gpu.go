package types

// GPUReport is the result of the in-container GPU verification probe.
type GPUReport struct {
	// Available reports whether the CUDA runtime inside the container can
	// see a device.
	Available bool `json:"available"`

	// DeviceName is the device reported by the probe, e.g. "Orin". Empty
	// when no device is visible.
	DeviceName string `json:"device_name,omitempty"`

	// Raw is the unparsed probe output, kept for diagnostics.
	Raw string `json:"-"`
}
