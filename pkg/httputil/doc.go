// Package httputil provides retry helpers shared by the HTTP clients.
//
// [Retry] re-runs an operation with exponential backoff while it fails with
// a [RetryableError]. Clients wrap transient failures (network errors, 5xx
// responses) with [Retryable]; everything else is returned immediately.
//
// The asset fetcher uses Retry for photo and emblem downloads. The lineup
// client deliberately does not: a lineup request is expensive on the
// service side and is never repeated automatically.
package httputil
