// Package leadimport turns raw CSV lead exports into canonical lead rows.
//
// The package is pure: it performs no I/O and holds no mutable global state.
// Callers hand it the whole file as a string and get back the accepted rows
// together with the rejected ones.
//
// # Pipeline
//
// For a file, [Parser.Parse] runs:
//
//  1. Split into non-empty trimmed lines
//  2. [DetectDelimiter] on the header line (';' or ',')
//  3. [SplitLine] + header normalization on every header cell
//  4. Per data line: special columns, then the [AliasTable], then the
//     ordered [HeuristicRule] list
//  5. Derived fields (full name, source, product) and required-field check
//
// # Two input shapes
//
// Flat exports name every lead field in its own column. Facebook Lead-Ads
// exports keep most answers in a single field_data column holding a JSON
// array of {name, values} entries; see [ParseFieldData]. Both shapes feed the
// same per-row builder, so a value found in either place is handled the same
// way.
//
// # Tables
//
// Alias, status, heuristic and policy tables are plain values on the
// [Parser]. [NewParser] installs the defaults; tests and the YAML override
// loader ([LoadTables]) substitute their own.
package leadimport
