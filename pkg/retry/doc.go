// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff, used by
// the remote store adapters for fetch, publish, and key-value operations.
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Usage Examples
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return store.Publish(ctx, dataID, group, content)
//	})
//
// Retry with result:
//
//	content, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (string, error) {
//	    return client.GetConfig(param)
//	})
//
// Marking an error as not worth retrying:
//
//	err := retry.Do(ctx, cfg, func() error {
//	    if badInput {
//	        return retry.NonRetryable(errInvalid)
//	    }
//	    return op()
//	})
//
// # Design Philosophy
//
// This package is intentionally minimal:
//
//   - No circuit breakers
//   - No metrics collection (instrument at the call site)
//   - No error classification (the errors package owns that; callers mark
//     non-retryable cases explicitly)
//   - Just exponential backoff with jitter
//
// # Context Cancellation
//
// All retry operations respect context cancellation and stop retrying when the
// context is cancelled, either during operation execution or during backoff delay.
//
// # Thread Safety
//
// All functions are safe for concurrent use.
package retry
