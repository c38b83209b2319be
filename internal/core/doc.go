// Package core provides the record enrichment pipeline.
//
// This package contains all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the CLI and tests without
// modification.
//
// # Pipeline
//
// A run flows through four stages, each usable on its own:
//
//  1. [Parse] (or [ParseSpreadsheet]) turns delimited text into a [Table] of
//     [RawRow] values keyed by the original column labels.
//  2. A [Normalizer] remaps those labels to canonical field names (cpf, nome,
//     email, telefone) using the first [Strategy] that recognizes the table.
//  3. [Join] indexes master records by normalized CPF and emits one
//     [EnrichedRecord] per work record, counting matches.
//  4. [SerializeCSV] or [SerializeXLSX] renders the enriched records for
//     download.
//
// [Service] orchestrates the stages for callers that start from uploaded
// files: it validates inputs, reads both sources concurrently, limits the
// number of parallel runs and keeps results for a short time so they can be
// downloaded.
//
// # Diagnostics
//
// Every stage accepts a [DiagnosticSink]. Events are leveled and carry the
// emitting component and structured attributes. The pipeline never reads the
// stream back, so a nil sink is always valid.
//
// # Error Handling
//
// Structural parse failures are returned as [*ParseError] and abort the run.
// Row-shape problems are collected as warnings on the [Table]. The normalizer
// and join never fail. Technical errors are mapped to user-facing messages
// with support codes by [MapError]:
//
//   - FILE001-FILE006: File errors (size, format, encoding)
//   - PARSE001-PARSE003: Structural parse errors
//   - INPUT001: Missing master or work input
//   - RUN001-RUN004: Run errors (busy, cancelled, expired, timeout)
package core
