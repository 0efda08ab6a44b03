// Package stack holds the on-prem stack configuration document and the pure
// functions that derive runtime state from it.
//
// This is part of the Functional Core - no file, network or process I/O.
//
// # Functions
//
//   - Defaults: build a fresh default document (DefaultConfig)
//   - Secrets: generate and backfill credentials (GenerateSecret, BackfillSecrets)
//   - Model names: derive the served model name from an image tag (ExtractModelName)
//   - Environment: flatten the document for docker compose (Materialize)
//   - Lookup: navigate the document by dotted key path (Lookup)
//   - Validation: check the document before launching (Validate)
//
// The imperative shell (internal/shell/configstore, internal/shell/envfile)
// reads and writes the files these values come from.
package stack
