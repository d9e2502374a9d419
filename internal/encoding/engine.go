package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"ctxmenu/internal/config"
	"ctxmenu/internal/logging"
	"ctxmenu/internal/media"
	"ctxmenu/internal/services"
)

// Sink receives a job's overall progress and answers overwrite questions.
// Progress must not block; ConfirmOverwrite may block until the user answers
// or ctx is cancelled.
type Sink interface {
	Progress(percent float64)
	ConfirmOverwrite(ctx context.Context, path string) bool
}

// Prober supplies media durations and the preferred video encoder.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, bool)
	PreferredEncoder(ctx context.Context) media.Encoder
}

// Job converts a batch of files.
type Job interface {
	Operation() Operation
	Run(ctx context.Context, files []string, sink Sink) BatchResult
}

// Engine builds jobs that share configuration, prober, and logger.
type Engine struct {
	cfg    *config.Config
	prober Prober
	logger *slog.Logger
	newID  func() string
}

// NewEngine constructs an engine. A nil prober uses media.NewProber.
func NewEngine(cfg *config.Config, prober Prober, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if prober == nil {
		prober = media.NewProber(cfg, logger)
	}
	return &Engine{
		cfg:    cfg,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "encoding"),
		newID:  uuid.NewString,
	}
}

// Job returns the job for op.
func (e *Engine) Job(op Operation) Job {
	if op == OpConvertImage {
		return &imageJob{engine: e}
	}
	return &videoJob{engine: e, op: op}
}

func (e *Engine) begin(ctx context.Context, op Operation) (context.Context, BatchResult, *slog.Logger) {
	jobID := e.newID()
	ctx = services.WithJobID(ctx, jobID)
	ctx = services.WithOperation(ctx, op.String())
	return ctx, BatchResult{JobID: jobID, Operation: op}, logging.WithContext(ctx, e.logger)
}

func (e *Engine) finish(ctx context.Context, logger *slog.Logger, result BatchResult, started time.Time, sink Sink, tracker *Tracker) {
	if ctx.Err() == nil {
		sink.Progress(tracker.Complete())
	}
	c := result.Counts()
	attrs := []logging.Attr{
		logging.String("status", result.Status().String()),
		logging.Int("converted", c.Converted),
		logging.Int("skipped", c.Skipped),
		logging.Int("failed", c.Failed),
		logging.Int("cancelled", c.Cancelled),
		logging.Duration("elapsed", time.Since(started)),
	}
	if result.Encoder != "" {
		attrs = append(attrs, logging.String("encoder", result.Encoder.String()))
	}
	logger.Info("batch finished", logging.Args(attrs...)...)
}

// checkInput validates the input and resolves an existing output. Outputs in
// claimed belong to an earlier file of the same batch and are confirmed like
// files on disk. It returns a terminal result when the file must not be
// converted.
func (e *Engine) checkInput(ctx context.Context, op Operation, input string, sink Sink, claimed map[string]struct{}) (string, *FileResult) {
	output := OutputPath(e.cfg, op, input)
	fr := FileResult{Input: input, Output: output}
	if samePath(input, output) {
		fr.Outcome = OutcomeInvalid
		fr.Err = services.Wrap(services.ErrValidation, "encoding", op.String(), "output would overwrite the input", nil)
		return output, &fr
	}
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		fr.Outcome = OutcomeInvalid
		if err == nil {
			err = errors.New("is a directory")
		}
		fr.Err = services.Wrap(services.ErrValidation, "encoding", op.String(), "input is not a readable file", err)
		return output, &fr
	}
	_, taken := claimed[output]
	if _, err := os.Stat(output); err == nil || taken {
		if !sink.ConfirmOverwrite(ctx, output) {
			fr.Outcome = OutcomeSkipped
			if ctx.Err() != nil {
				fr.Outcome = OutcomeCancelled
			}
			return output, &fr
		}
	}
	return output, nil
}

// convert runs ffmpeg for one file and classifies the result.
func (e *Engine) convert(ctx context.Context, op Operation, input, output string, args []string, onTime func(float64)) FileResult {
	fr := FileResult{Input: input, Output: output}
	before, _ := os.Stat(output)
	res := runFFmpeg(ctx, e.cfg.Tools.FFmpeg, args, e.cfg.StopGrace(), onTime)
	switch {
	case res.notFound:
		fr.Outcome = OutcomeToolNotFound
		fr.ExitCode = -1
		fr.Err = services.Wrap(services.ErrNotFound, "encoding", op.String(), "ffmpeg not found", res.err)
	case ctx.Err() != nil:
		removePartial(output, before)
		fr.Outcome = OutcomeCancelled
		fr.Err = ctx.Err()
	case res.err != nil:
		removePartial(output, before)
		fr.Outcome = OutcomeProcessFailed
		fr.ExitCode = res.exitCode
		fr.StderrTail = res.stderrTail
		message := fmt.Sprintf("ffmpeg exited with code %d", res.exitCode)
		if line := lastLine(res.stderrTail); line != "" {
			message += ": " + line
		}
		fr.Err = services.Wrap(services.ErrExternalTool, "encoding", op.String(), message, res.err)
	default:
		if _, err := os.Stat(output); err != nil {
			fr.Outcome = OutcomeProcessFailed
			fr.StderrTail = res.stderrTail
			fr.Err = services.Wrap(services.ErrExternalTool, "encoding", op.String(), "ffmpeg produced no output", err)
			break
		}
		fr.Outcome = OutcomeConverted
	}
	return fr
}

func (e *Engine) logFile(logger *slog.Logger, fr FileResult, elapsed time.Duration) {
	switch {
	case fr.Outcome == OutcomeConverted:
		logger.Info("file converted",
			logging.String("input", fr.Input),
			logging.String("output", fr.Output),
			logging.Duration("elapsed", elapsed),
		)
	case fr.Outcome == OutcomeSkipped:
		logger.Info("file skipped", logging.String("input", fr.Input), logging.String("output", fr.Output))
	case fr.Outcome.Failed():
		logging.WarnWithContext(logger, "file conversion failed", "conversion_failed",
			logging.String("input", fr.Input),
			logging.String("outcome", fr.Outcome.String()),
			logging.Int("exit_code", fr.ExitCode),
			logging.Error(fr.Err),
			logging.String(logging.FieldErrorHint, services.Hint(fr.Err)),
			logging.String(logging.FieldImpact, "file left unconverted; batch continues"),
		)
	}
}

// removePartial deletes output left by a failed run. A file that existed
// before the run is only removed when ffmpeg has since written to it.
func removePartial(path string, before os.FileInfo) {
	if path == "" {
		return
	}
	if before != nil {
		after, err := os.Stat(path)
		if err != nil || (after.Size() == before.Size() && after.ModTime().Equal(before.ModTime())) {
			return
		}
	}
	_ = os.Remove(path)
}

type videoJob struct {
	engine *Engine
	op     Operation
}

func (j *videoJob) Operation() Operation { return j.op }

func (j *videoJob) Run(ctx context.Context, files []string, sink Sink) BatchResult {
	e := j.engine
	started := time.Now()
	ctx, result, logger := e.begin(ctx, j.op)
	logger.Info("batch started", logging.Int("files", len(files)))

	result.Encoder = e.prober.PreferredEncoder(ctx)
	durations := make([]float64, len(files))
	for i, input := range files {
		if ctx.Err() != nil {
			break
		}
		if d, ok := e.prober.Duration(ctx, input); ok {
			durations[i] = d
		}
	}
	tracker := NewTracker(durations)
	sink.Progress(tracker.Current())

	sampler := logging.NewProgressSampler(float64(e.cfg.Encoding.ProgressLogPercent))
	for i, input := range files {
		if ctx.Err() != nil {
			result.Files = append(result.Files, FileResult{Input: input, Outcome: OutcomeCancelled, Err: ctx.Err()})
			continue
		}
		fileStarted := time.Now()
		output, early := e.checkInput(ctx, j.op, input, sink, nil)
		var fr FileResult
		if early != nil {
			fr = *early
		} else {
			args := videoArgs(e.cfg, j.op, result.Encoder, input, output)
			fr = e.convert(ctx, j.op, input, output, args, func(seconds float64) {
				percent := tracker.FileProgress(i, seconds)
				sink.Progress(percent)
				if sampler.ShouldLog(percent, input) {
					logger.Info("conversion progress",
						logging.Float64("percent", percent),
						logging.String("input", input),
					)
				}
			})
		}
		e.logFile(logger, fr, time.Since(fileStarted))
		result.Files = append(result.Files, fr)
		if fr.Outcome != OutcomeCancelled {
			sink.Progress(tracker.FileDone(i))
		}
	}

	e.finish(ctx, logger, result, started, sink, tracker)
	return result
}
