package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ctxmenu/internal/encoding"
	"ctxmenu/internal/logging"
)

// MessageKind tags a bridge message.
type MessageKind int

const (
	MsgProgress MessageKind = iota
	MsgConfirm
	MsgDone
	MsgError
	MsgCancelled
)

func (k MessageKind) String() string {
	switch k {
	case MsgProgress:
		return "progress"
	case MsgConfirm:
		return "confirm"
	case MsgDone:
		return "done"
	case MsgError:
		return "error"
	case MsgCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the message ends the job stream.
func (k MessageKind) Terminal() bool {
	return k == MsgDone || k == MsgError || k == MsgCancelled
}

// Message is one item handed from the worker to the UI.
type Message struct {
	Kind    MessageKind
	Percent float64
	Path    string
	Reason  string
	Summary string
}

// ErrAlreadyLaunched is returned when Launch is called twice on one bridge.
var ErrAlreadyLaunched = errors.New("bridge already running a job")

// Bridge runs one job and queues its messages for the UI.
type Bridge struct {
	messages chan Message
	answers  chan bool
	done     chan struct{}
	logger   *slog.Logger

	sendMu sync.Mutex

	mu       sync.Mutex
	launched bool
	cancel   context.CancelFunc
	result   encoding.BatchResult
}

// NewBridge builds a bridge whose queue holds up to queueSize messages.
func NewBridge(queueSize int, logger *slog.Logger) *Bridge {
	if queueSize < 2 {
		queueSize = 2
	}
	return &Bridge{
		messages: make(chan Message, queueSize),
		answers:  make(chan bool, 1),
		done:     make(chan struct{}),
		logger:   logging.NewComponentLogger(logger, "dispatch"),
	}
}

// Launch starts job on a new goroutine. The job is cancelled when parent is
// or when Cancel is called.
func (b *Bridge) Launch(parent context.Context, job encoding.Job, files []string) error {
	b.mu.Lock()
	if b.launched {
		b.mu.Unlock()
		return ErrAlreadyLaunched
	}
	b.launched = true
	ctx, cancel := context.WithCancel(parent)
	b.cancel = cancel
	b.mu.Unlock()

	go b.run(ctx, job, files)
	return nil
}

func (b *Bridge) run(ctx context.Context, job encoding.Job, files []string) {
	defer close(b.done)
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(b.logger, "job panicked", "job_panic",
				logging.Any("panic", r),
				logging.String(logging.FieldErrorHint, "report this as a bug"),
				logging.String(logging.FieldImpact, "batch aborted"),
			)
			b.push(Message{Kind: MsgError, Reason: fmt.Sprintf("internal error: %v", r)})
		}
	}()

	result := job.Run(ctx, files, b)

	b.mu.Lock()
	b.result = result
	b.mu.Unlock()
	b.push(terminalMessage(result))
}

func terminalMessage(result encoding.BatchResult) Message {
	summary := result.Summary()
	switch result.Status() {
	case encoding.StatusCancelled:
		return Message{Kind: MsgCancelled, Summary: summary}
	case encoding.StatusPartial, encoding.StatusFailed:
		return Message{Kind: MsgError, Reason: result.FailureReason(), Summary: summary}
	default:
		return Message{Kind: MsgDone, Summary: summary}
	}
}

// Progress implements encoding.Sink. It never blocks.
func (b *Bridge) Progress(percent float64) {
	b.push(Message{Kind: MsgProgress, Percent: percent})
}

// ConfirmOverwrite implements encoding.Sink. It queues a question and waits
// for Answer or cancellation; cancellation declines.
func (b *Bridge) ConfirmOverwrite(ctx context.Context, path string) bool {
	b.push(Message{Kind: MsgConfirm, Path: path})
	select {
	case yes := <-b.answers:
		return yes
	case <-ctx.Done():
		return false
	}
}

// Answer replies to the pending overwrite question.
func (b *Bridge) Answer(yes bool) {
	select {
	case b.answers <- yes:
	default:
	}
}

// push enqueues m, dropping the oldest queued message while the queue is full.
func (b *Bridge) push(m Message) {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	for {
		select {
		case b.messages <- m:
			return
		default:
		}
		select {
		case dropped := <-b.messages:
			if dropped.Kind != MsgProgress {
				b.logger.Debug("dropped queued message", logging.String("kind", dropped.Kind.String()))
			}
		default:
		}
	}
}

// Poll drains every queued message without blocking.
func (b *Bridge) Poll() []Message {
	var out []Message
	for {
		select {
		case m := <-b.messages:
			out = append(out, m)
		default:
			return out
		}
	}
}

// Cancel requests cancellation of the running job. It does not wait.
func (b *Bridge) Cancel() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed once the job has returned.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the job returns and reports its result. It returns
// immediately with an empty result when nothing was launched.
func (b *Bridge) Wait() encoding.BatchResult {
	b.mu.Lock()
	launched := b.launched
	b.mu.Unlock()
	if !launched {
		return encoding.BatchResult{}
	}
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
	}
	return b.result
}
