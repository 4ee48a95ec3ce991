// Package schema isolates the year-to-year header drift of the portal
// extracts behind a configuration table: category × year → sheet aliases and
// column aliases. Source readers consult it once per file to resolve a fixed
// field-to-column mapping, so the join logic downstream never sees raw
// header text. Resolution is deterministic first-match; every fallback and
// ambiguity is reported to the caller rather than decided silently.
package schema
