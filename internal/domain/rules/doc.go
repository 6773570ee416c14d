// Package rules contains the exclusion rules applied while packaging.
//
// A Set combines literal substring rules (the historical behavior) with
// optional doublestar globs. It is built once at the start of a run and never
// mutated afterwards.
package rules
