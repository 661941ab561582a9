// Package core provides the business logic for tabular file analysis.
//
// This package is the heart of datasight, containing all domain logic
// independent of any transport layer. It is used by the web handlers and
// the CLI without modification.
//
// # Architecture
//
// A file flows through a fixed pipeline:
//
//	File -> Validator -> ParseDelimited | ParseWorkbook -> Normalize -> Table
//
// The resulting [Table] is immutable. It feeds [Analyze] once, on load, and
// [Render] every time the [ViewState] changes.
//
//   - Validator: rejects missing, oversized or unsupported files before any
//     bytes are parsed.
//   - Parsers: CSV-like text (delimiter detected) and Excel workbooks (first
//     sheet only, .xlsx and .xls).
//   - Normalizer: trimmed non-empty headers, rectangular rows, no blank rows.
//   - Analysis: per-column type (by first non-empty sample) and statistics.
//   - View: tri-state sort, per-column filters, display cap.
//
// # Service
//
// [Service] keeps loaded datasets in a TTL-bounded in-memory store. A
// replacement file is ingested in full before it is swapped in, so a failed
// upload never disturbs the table already being viewed. Ingestion is bounded
// by an [IngestLimiter].
//
// # Error Handling
//
// Pipeline failures are [*IngestError] values carrying an [ErrorKind].
// [MapError] turns any error into a user-facing message with a support code:
//
//   - FILE001-FILE008: File errors (size, format, headers, rows)
//   - DS001-DS002: Dataset errors (expired, busy)
//   - REQ001-REQ005: Request errors (cancelled, timeout, bad filter or column)
package core
