// Package dispatch maps a detected selection to the actions offered for it and
// bridges a running batch job to the UI.
//
// BuildActions is a pure function of the selection and the classifier. The
// Bridge runs one job on its own goroutine and hands the UI a bounded stream
// of tagged messages: progress values, overwrite questions, and exactly one
// terminal marker. The worker never blocks on progress delivery; when the
// queue is full the oldest queued message is dropped.
package dispatch
