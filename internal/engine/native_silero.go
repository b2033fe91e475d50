//go:build silero

package engine

// NativeAvailable reports that the Silero VAD backend is compiled in.
func NativeAvailable() bool { return true }

// NewNativeModel creates a Model for the requested Silero variant.
func NewNativeModel(variant SileroVariant, frameSamples int) (Model, error) {
	return NewSileroEngine(variant, frameSamples)
}
