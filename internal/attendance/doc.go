// Package attendance implements ingestion and storage of attendance punches.
//
// Terminals push punch data as tab-separated TRANS lines inside a text
// payload. Ingestion is line-by-line with partial success: malformed lines
// are counted and skipped, valid lines in the same payload are stored. The
// log is append-only; the only mutation is the operator bulk clear.
package attendance
