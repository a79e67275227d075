// Package hyperband is a streaming batch engine for ENVI-format hyperspectral
// image cubes. It provides interleave conversion between BIP, BIL and BSQ
// layouts, a three-pass statistical pipeline (mean, then standard deviation,
// then covariance) over out-of-core images, principal-component analysis built on
// that pipeline, colour rendering of selected bands, and cropping.
//
// Resident memory for every operation is bounded by a configurable chunk
// size and is independent of the size of the input image; images are
// expected to range from a few megabytes to tens of gigabytes.
package hyperband
