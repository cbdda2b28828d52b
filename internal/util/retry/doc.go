// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, maximum delay, and additive random jitter. It is used for
// document store reads and token validation. [WithFixedInterval] covers the
// constant-interval case used for credential helper invocations.
package retry
