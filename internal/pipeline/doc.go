// Package pipeline orchestrates the batch: input directory discovery,
// per-file inspect/plan/encode processing, ledger bookkeeping, optional
// export copies, and the long-running watch mode.
package pipeline
