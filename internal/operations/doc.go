// Package operations orchestrates the batch consolidation pipeline. A run is
// single-threaded and run-to-completion: stages execute strictly in order
// (read sources, consolidate, validate, export) against a shared RunState
// identified by a UUID. Source-level failures degrade into quality
// observations; invariant violations abort the run before the export stage,
// so partial or incorrect canonical output is never written.
package operations
