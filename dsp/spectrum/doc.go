// Package spectrum provides FFT-adjacent spectrum-domain utilities.
//
// The package intentionally does not implement FFT itself. It operates on
// complex bins produced by an external FFT backend and turns them into the
// smoothed, floored decibel curves an analyser view displays.
package spectrum
