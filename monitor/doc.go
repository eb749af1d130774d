// Package monitor samples the synth output for visualization.
//
// An Analyser sits on the render path as a tap and keeps the most recent
// samples. A Monitor reads it once per frame, in waveform or spectrum
// mode, and hands fixed-size snapshots to a Sink. The draw helpers map a
// snapshot to canvas coordinates and colors.
package monitor
