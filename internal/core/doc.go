// Package core runs lead imports on top of the leadimport parser.
//
// It owns everything around the pure normalization step: reading the
// uploaded bytes, bounding concurrent imports, stamping caller defaults on
// accepted rows and writing them to PostgreSQL in a single batch. It can be
// used by the HTTP server, the CLI, or tests without modification.
//
// # Import Flow
//
//  1. [Service.ImportLeads] takes a slot from the [ImportLimiter]
//  2. [ReadUpload] enforces the size limit, drops a UTF-8 BOM and replaces
//     invalid bytes
//  3. The parser turns the text into accepted rows plus rejected lines
//  4. Defaults are applied and the batch goes to [LeadStore.InsertLeads]
//
// A read failure aborts the import with no partial result. Rows missing a
// required field never fail the import; they are counted and listed in
// [ImportResult.FailedRows].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code for support reference:
//
//   - DB001-DB007: database errors
//   - FILE001-FILE005: file errors (size, emptiness)
//   - UPL002-UPL005: import slot and request errors
//   - IMP001-IMP003: lead content and default errors
package core
