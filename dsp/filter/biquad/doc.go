// Package biquad provides the second-order IIR runtime used by the synth's
// channel filters.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Steeper rolloffs cascade
// several sections in a [Chain]. Coefficient design lives in dsp/filter/design.
package biquad
