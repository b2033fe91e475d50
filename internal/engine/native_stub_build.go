//go:build !silero

package engine

import "errors"

// ErrNativeUnavailable indicates the Silero backend is not compiled in.
var ErrNativeUnavailable = errors.New("engine: silero backend not available (build without -tags silero)")

// NativeAvailable reports that no native Silero backend is compiled in.
func NativeAvailable() bool { return false }

// NewNativeModel returns an error when built without the silero tag.
func NewNativeModel(_ SileroVariant, _ int) (Model, error) {
	return nil, ErrNativeUnavailable
}
