// Package task runs per-file flashcard generation on a bounded worker pool.
// A batch of uploaded files becomes one task per file; each task succeeds or
// fails on its own, and the batch reports one outcome per file in input order.
package task
