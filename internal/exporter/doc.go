// Package exporter serializes the validated canonical dataset to its durable
// formats: delimited text (CSV with UTF-8 BOM), a single-sheet xlsx workbook,
// and the human-readable quality report. Exporters run only after validation
// passes; a fatal run never reaches this package.
package exporter
