// Package dataprocessing contains the consolidation core: the source readers
// that parse each category's portal workbook into normalized rows, the
// numeric cell coercion policy, and the consolidator that outer-joins the
// three row sets into the canonical (school, year) record set.
//
// The flow is strictly one way. Readers own their raw rows only for the
// duration of one parse call and emit immutable NormalizedRow values; the
// consolidator consumes those and produces CanonicalRecords that are never
// mutated afterwards. Failures stay local to one file: a workbook that
// cannot be opened or resolved contributes nothing and the rest of the run
// continues, with the gap recorded in the quality report.
package dataprocessing
