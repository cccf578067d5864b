// Package config resolves the composition document a device boots with.
// Documents are embedded per device id so firmware needs no filesystem.
package config

import (
	"errors"
	"fmt"
)

var (
	ErrNoDevice = errors.New("config: missing device id")
	ErrNoConfig = errors.New("config: no embedded composition for device")
)

// EmbeddedConfigLookup allows overriding how compositions are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Composition returns the embedded composition document for device.
func Composition(device string) ([]byte, error) {
	if device == "" {
		return nil, ErrNoDevice
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoConfig, device)
	}
	return raw, nil
}

// Devices lists the device ids with an embedded composition.
func Devices() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	return out
}
