// Package design provides RBJ-style biquad coefficient designers for the
// synth channel filters.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing. [Cascade] repeats a section to
// build the steeper rolloffs offered by the channel filter.
package design
