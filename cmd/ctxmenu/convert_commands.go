package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"ctxmenu/internal/config"
	"ctxmenu/internal/encoding"
	"ctxmenu/internal/logging"
	"ctxmenu/internal/notifications"
	"ctxmenu/internal/selection"
)

type overwritePolicy int

const (
	overwriteAsk overwritePolicy = iota
	overwriteAlways
	overwriteNever
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert media files with ffmpeg",
	}

	convertCmd.AddCommand(newConvertOpCommand(ctx, encoding.OpToMP4, "mp4", "Remux or transcode videos to MP4"))
	convertCmd.AddCommand(newConvertOpCommand(ctx, encoding.OpCompress, "compress", "Re-encode videos to a smaller MP4"))
	convertCmd.AddCommand(newConvertOpCommand(ctx, encoding.OpConvertImage, "image", "Convert images to the configured target format"))

	return convertCmd
}

func newConvertOpCommand(ctx *commandContext, op encoding.Operation, use, short string) *cobra.Command {
	var overwrite, noOverwrite, quiet bool

	cmd := &cobra.Command{
		Use:   use + " <file>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if overwrite && noOverwrite {
				return errors.New("--overwrite and --no-overwrite are mutually exclusive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}

			files, ignored := eligibleFiles(cfg, op, args)
			errOut := cmd.ErrOrStderr()
			for _, path := range ignored {
				fmt.Fprintf(errOut, "Ignoring %s (not eligible for %s)\n", path, op.Label())
			}
			if len(files) == 0 {
				return fmt.Errorf("no eligible files for %s", op.Label())
			}

			policy := overwriteAsk
			switch {
			case overwrite:
				policy = overwriteAlways
			case noOverwrite:
				policy = overwriteNever
			}
			sink := newCLISink(cmd, policy, !quiet)

			started := time.Now()
			job := encoding.NewEngine(cfg, nil, logger).Job(op)
			result := job.Run(cmd.Context(), files, sink)
			sink.finish()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, batchTable(result))
			fmt.Fprintln(out, result.Summary())

			notifier := notifications.NewService(cfg)
			if err := notifier.NotifyBatchCompleted(context.WithoutCancel(cmd.Context()), result, time.Since(started)); err != nil {
				logger.Warn("batch notification failed", logging.Error(err))
			}

			switch result.Status() {
			case encoding.StatusCancelled:
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				return context.Canceled
			case encoding.StatusPartial, encoding.StatusFailed:
				return errors.New(result.FailureReason())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "overwrite", "y", false, "Replace existing outputs without asking")
	cmd.Flags().BoolVarP(&noOverwrite, "no-overwrite", "n", false, "Skip inputs whose output already exists")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	return cmd
}

// eligibleFiles keeps the inputs the operation accepts, preserving order.
func eligibleFiles(cfg *config.Config, op encoding.Operation, args []string) (files, ignored []string) {
	classifier := selection.NewClassifier(cfg.Media)
	for _, arg := range args {
		path := arg
		if abs, err := filepath.Abs(arg); err == nil {
			path = abs
		}
		class := classifier.Classify(path)
		ok := false
		switch op {
		case encoding.OpConvertImage:
			ok = class == selection.ClassImage
		case encoding.OpToMP4:
			ok = class == selection.ClassVideo && !selection.IsMP4(path)
		case encoding.OpCompress:
			ok = class == selection.ClassVideo
		}
		if ok {
			files = append(files, path)
		} else {
			ignored = append(ignored, arg)
		}
	}
	return files, ignored
}

func batchTable(result encoding.BatchResult) string {
	rows := make([][]string, 0, len(result.Files))
	for _, fr := range result.Files {
		detail := fr.Output
		if fr.Err != nil {
			detail = fr.Err.Error()
		}
		rows = append(rows, []string{filepath.Base(fr.Input), fr.Outcome.String(), detail})
	}
	return renderTable([]string{"Input", "Result", "Output"}, rows)
}

// cliSink reports progress on stderr and resolves overwrite prompts from
// flags or the terminal.
type cliSink struct {
	mu       sync.Mutex
	errOut   io.Writer
	in       *bufio.Reader
	lines    chan string
	readOnce sync.Once
	prompt   bool
	policy   overwritePolicy
	progress bool
	last     int
	dirty    bool
}

func newCLISink(cmd *cobra.Command, policy overwritePolicy, showProgress bool) *cliSink {
	in := cmd.InOrStdin()
	// A reader injected with SetIn is always prompted.
	return &cliSink{
		errOut:   cmd.ErrOrStderr(),
		in:       bufio.NewReader(in),
		prompt:   isTerminal(in) || in != os.Stdin,
		policy:   policy,
		progress: showProgress,
		last:     -1,
	}
}

func (s *cliSink) Progress(percent float64) {
	if !s.progress {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	whole := int(percent)
	if whole == s.last {
		return
	}
	s.last = whole
	s.dirty = true
	fmt.Fprintf(s.errOut, "\rProgress: %3d%%", whole)
}

func (s *cliSink) ConfirmOverwrite(ctx context.Context, path string) bool {
	switch s.policy {
	case overwriteAlways:
		return true
	case overwriteNever:
		return false
	}
	if !s.prompt || ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	s.clearLine()
	fmt.Fprintf(s.errOut, "%s already exists. Overwrite? [y/N] ", path)
	s.mu.Unlock()

	s.readOnce.Do(s.startReader)
	select {
	case answer, ok := <-s.lines:
		if !ok {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	case <-ctx.Done():
		s.mu.Lock()
		fmt.Fprintln(s.errOut)
		s.mu.Unlock()
		return false
	}
}

// startReader feeds input lines to ConfirmOverwrite so a prompt can be
// abandoned on cancellation without losing the next answer.
func (s *cliSink) startReader() {
	s.lines = make(chan string)
	go func() {
		defer close(s.lines)
		for {
			line, err := s.in.ReadString('\n')
			if line != "" {
				s.lines <- line
			}
			if err != nil {
				return
			}
		}
	}()
}

func (s *cliSink) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLine()
}

func (s *cliSink) clearLine() {
	if s.dirty {
		fmt.Fprintln(s.errOut)
		s.dirty = false
	}
}
