// Package dsl provides a fluent builder for constructing trees in code.
// It is the programmatic alternative to sending tree documents over the
// API, aimed at tests, examples and embedded use.
package dsl
