// Package diag aggregates diagnostics and per item timings for one build run.
//
// The Aggregator is passed explicitly to every component that can report a
// problem. Recording an Error or Critical message raises a sticky flag that
// stays set until ClearErrors is called; callers read HasErrors after the
// whole pipeline has run to decide whether the build failed.
package diag
