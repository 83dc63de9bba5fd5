// Package errors provides standardized error handling patterns for confsync.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop the operation).
//
// Classification lets the synchronizer make informed decisions about retries
// and degradation without hardcoded error string matching. A fetch that timed
// out is worth retrying; a composite document that does not parse is not.
//
// # Error Classification
//
//   - Transient: store timeouts, connection issues, failed disk writes (retry recommended)
//   - Invalid: malformed markup, nameless fragments, empty documents (do not retry)
//   - Fatal: missing installation root, missing required configuration (fail the operation)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if home == "" {
//	    return errors.ErrMissingInstallRoot
//	}
//
// Wrap errors with context for debugging:
//
//	if err := store.Fetch(ctx, dataID, group); err != nil {
//	    return errors.WrapTransient(err, "Syncer", "SyncOnce", "fetch composite")
//	}
//
// Check classification for retry logic:
//
//	if err := op(); err != nil && errors.IsTransient(err) {
//	    // worth another attempt; see the retry package
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing and operational monitoring. Three
// wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// The generic Wrap() preserves the original error's classification.
//
// Backoff policy lives in the retry package; this package only answers
// whether an error is worth retrying.
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access.
package errors
