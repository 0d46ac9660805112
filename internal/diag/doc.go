// Package diag defines the diagnostic model shared by the expander, the
// evaluator bridge and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – the exact text shown to the user.
//   - Path/Line – the source position the finding is attributed to.
//   - Primary – optional span in a loaded source.File (syntax and evaluator errors).
//   - Notes – optional secondary spans/messages.
//
// # Emitting diagnostics
//
// Producers depend only on Reporter. BagReporter collects into a Bag for tests
// and for formats that need the whole set (json); the CLI streams through a
// diagfmt reporter so every line appears as soon as it is produced.
//
// Package diag does not perform any formatting or IO; rendering lives in
// internal/diagfmt.
package diag
