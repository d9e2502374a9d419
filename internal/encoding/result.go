package encoding

import (
	"fmt"
	"strings"

	"ctxmenu/internal/media"
)

// Outcome is the terminal state of one input file.
type Outcome int

const (
	OutcomeConverted Outcome = iota
	OutcomeSkipped
	OutcomeToolNotFound
	OutcomeProcessFailed
	OutcomeInvalid
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverted:
		return "converted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeToolNotFound:
		return "tool_not_found"
	case OutcomeProcessFailed:
		return "process_failed"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome counts against the batch.
func (o Outcome) Failed() bool {
	return o == OutcomeToolNotFound || o == OutcomeProcessFailed || o == OutcomeInvalid
}

// FileResult records what happened to one input.
type FileResult struct {
	Input      string
	Output     string
	Outcome    Outcome
	ExitCode   int
	StderrTail string
	Err        error
}

// Status summarises a whole batch.
type Status int

const (
	StatusDone Status = iota
	StatusPartial
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Counts tallies outcomes across a batch.
type Counts struct {
	Converted int
	Skipped   int
	Failed    int
	Cancelled int
}

// BatchResult is the ordered per-file record of one job run.
type BatchResult struct {
	JobID     string
	Operation Operation
	Encoder   media.Encoder
	Files     []FileResult
}

// Counts tallies the batch outcomes.
func (b BatchResult) Counts() Counts {
	var c Counts
	for _, f := range b.Files {
		switch {
		case f.Outcome == OutcomeConverted:
			c.Converted++
		case f.Outcome == OutcomeSkipped:
			c.Skipped++
		case f.Outcome == OutcomeCancelled:
			c.Cancelled++
		case f.Outcome.Failed():
			c.Failed++
		}
	}
	return c
}

// Status derives the batch status. Any cancellation wins; otherwise a batch
// with no failures is done even when every file was skipped.
func (b BatchResult) Status() Status {
	c := b.Counts()
	switch {
	case c.Cancelled > 0:
		return StatusCancelled
	case c.Failed == 0:
		return StatusDone
	case c.Converted == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Summary is a one-line human description of the batch.
func (b BatchResult) Summary() string {
	c := b.Counts()
	parts := []string{fmt.Sprintf("%d converted", c.Converted)}
	if c.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", c.Skipped))
	}
	if c.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", c.Failed))
	}
	if c.Cancelled > 0 {
		parts = append(parts, fmt.Sprintf("%d cancelled", c.Cancelled))
	}
	return fmt.Sprintf("%s: %s", b.Operation.Label(), strings.Join(parts, ", "))
}

// FailureReason describes the first failed file, or "" when none failed.
func (b BatchResult) FailureReason() string {
	c := b.Counts()
	for _, f := range b.Files {
		if !f.Outcome.Failed() {
			continue
		}
		reason := f.Outcome.String()
		if f.Err != nil {
			reason = f.Err.Error()
		}
		if c.Failed == 1 {
			return fmt.Sprintf("%s: %s", f.Input, reason)
		}
		return fmt.Sprintf("%d of %d files failed; first %s: %s", c.Failed, len(b.Files), f.Input, reason)
	}
	return ""
}
