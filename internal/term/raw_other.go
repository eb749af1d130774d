//go:build !unix

package term

import "errors"

type rawInput struct{}

// Start reports that raw keyboard input is unsupported on this platform.
func (k *Keyboard) Start() error {
	return errors.New("term: raw keyboard input is not supported on this platform")
}

// Stop does nothing.
func (k *Keyboard) Stop() {}

// Width returns fallback.
func Width(fallback int) int {
	return fallback
}
