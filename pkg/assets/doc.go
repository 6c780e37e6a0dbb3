// Package assets downloads player photos and club emblems.
//
// [Fetcher.FetchAll] runs one task per player on a bounded pool. Every task
// obtains its own [Source], downloads the player's photo and emblem, and
// writes only its own slot of a pre-sized result slice; the results are
// gathered into a map after all tasks have joined. Nothing is shared between
// tasks except the optional cache and rate limiter, both safe for
// concurrent use. The pool size therefore changes timing, never results.
//
// # Failure policy
//
// Each download is bounded by a timeout and retried when the failure is
// transient (network errors, 5xx). What happens when a download still fails
// is chosen by [FailurePolicy]:
//
//   - [Degrade]: the failure stays local to the player. A missing photo
//     leaves the emblem-only rendering; a missing emblem is replaced by a
//     generated placeholder crest. The error is kept on [Assets].
//   - [FailFast]: the first failure aborts the whole fetch.
package assets
