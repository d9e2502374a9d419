package encoding_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ctxmenu/internal/config"
	"ctxmenu/internal/encoding"
	"ctxmenu/internal/testsupport"
)

type recordingSink struct {
	mu         sync.Mutex
	values     []float64
	asked      []string
	confirm    func(path string) bool
	onProgress func(percent float64)
}

func (s *recordingSink) Progress(percent float64) {
	s.mu.Lock()
	s.values = append(s.values, percent)
	hook := s.onProgress
	s.mu.Unlock()
	if hook != nil {
		hook(percent)
	}
}

func (s *recordingSink) ConfirmOverwrite(_ context.Context, path string) bool {
	s.mu.Lock()
	s.asked = append(s.asked, path)
	s.mu.Unlock()
	if s.confirm == nil {
		return true
	}
	return s.confirm(path)
}

func (s *recordingSink) snapshot() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.values...)
}

func assertMonotonic(t *testing.T, values []float64) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Fatalf("progress decreased at %d: %v", i, values)
		}
		if values[i] < 0 || values[i] > 100 {
			t.Fatalf("progress out of range: %v", values)
		}
	}
}

func containsApprox(values []float64, want float64) bool {
	for _, v := range values {
		if approx(v, want) {
			return true
		}
	}
	return false
}

type fixture struct {
	cfg *config.Config
	dir string
}

func newFixture(t *testing.T, stub testsupport.FFmpegStub, durations map[string]string) fixture {
	t.Helper()
	bin := t.TempDir()
	ffmpeg := testsupport.WriteFFmpegStub(t, bin, stub)
	ffprobe := testsupport.WriteFFprobeStub(t, bin, durations)
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpeg(ffmpeg, ffprobe), testsupport.WithSoftwareOnly())
	return fixture{cfg: cfg, dir: t.TempDir()}
}

func (f fixture) job(op encoding.Operation) encoding.Job {
	return encoding.NewEngine(f.cfg, nil, nil).Job(op)
}

func (f fixture) inputs(t *testing.T, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(f.dir, name)
		testsupport.WriteFile(t, path, 16)
		paths = append(paths, path)
	}
	return paths
}

func TestCompressReportsDurationWeightedProgress(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{Times: []string{"00:00:05.00"}},
		map[string]string{"a.mkv": "10", "b.mkv": "20", "c.mkv": "30"})
	files := f.inputs(t, "a.mkv", "b.mkv", "c.mkv")
	sink := &recordingSink{}

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpCompress).Run(context.Background(), files, sink)

	if result.Status() != encoding.StatusDone {
		t.Fatalf("status %s, files %+v", result.Status(), result.Files)
	}
	if result.JobID == "" {
		t.Fatal("expected job id")
	}
	for i, fr := range result.Files {
		if fr.Outcome != encoding.OutcomeConverted {
			t.Fatalf("file %d outcome %s: %v", i, fr.Outcome, fr.Err)
		}
		want := strings.TrimSuffix(files[i], ".mkv") + "_compressed.mp4"
		if fr.Output != want || !testsupport.Exists(want) {
			t.Fatalf("file %d output %q missing (want %q)", i, fr.Output, want)
		}
	}

	values := sink.snapshot()
	assertMonotonic(t, values)
	for _, want := range []float64{8.33, 16.67, 25, 50, 58.33, 100} {
		if !containsApprox(values, want) {
			t.Fatalf("expected progress %.2f in %v", want, values)
		}
	}
	if values[len(values)-1] != 100 {
		t.Fatalf("final progress %.2f want 100", values[len(values)-1])
	}
}

func TestCancelStopsInFlightFileAndMarksRest(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{HangOn: "b.mkv"},
		map[string]string{"a.mkv": "10", "b.mkv": "20", "c.mkv": "30"})
	files := f.inputs(t, "a.mkv", "b.mkv", "c.mkv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &recordingSink{}
	sink.onProgress = func(percent float64) {
		if percent > 17 {
			cancel()
		}
	}

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpToMP4).Run(ctx, files, sink)

	if result.Status() != encoding.StatusCancelled {
		t.Fatalf("status %s want cancelled", result.Status())
	}
	want := []encoding.Outcome{encoding.OutcomeConverted, encoding.OutcomeCancelled, encoding.OutcomeCancelled}
	for i, fr := range result.Files {
		if fr.Outcome != want[i] {
			t.Fatalf("file %d outcome %s want %s", i, fr.Outcome, want[i])
		}
	}
	if !testsupport.Exists(filepath.Join(f.dir, "a.mp4")) {
		t.Fatal("completed output should remain")
	}
	if testsupport.Exists(filepath.Join(f.dir, "b.mp4")) {
		t.Fatal("partial output should be removed")
	}
	if testsupport.Exists(filepath.Join(f.dir, "c.mp4")) {
		t.Fatal("unstarted file must not be converted")
	}
	values := sink.snapshot()
	assertMonotonic(t, values)
	if values[len(values)-1] == 100 {
		t.Fatalf("cancelled batch must not report 100: %v", values)
	}
}

func TestDeclinedOverwriteIsSkipped(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{}, map[string]string{"a.mkv": "10", "b.mkv": "10"})
	files := f.inputs(t, "a.mkv", "b.mkv")
	existing := filepath.Join(f.dir, "a.mp4")
	if err := os.WriteFile(existing, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{confirm: func(string) bool { return false }}

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpToMP4).Run(context.Background(), files, sink)

	if len(sink.asked) != 1 || sink.asked[0] != existing {
		t.Fatalf("expected one question about %q, got %v", existing, sink.asked)
	}
	if result.Files[0].Outcome != encoding.OutcomeSkipped || result.Files[1].Outcome != encoding.OutcomeConverted {
		t.Fatalf("unexpected outcomes %+v", result.Files)
	}
	if data, _ := os.ReadFile(existing); string(data) != "keep" {
		t.Fatalf("declined target was modified: %q", data)
	}
	if result.Status() != encoding.StatusDone {
		t.Fatalf("status %s want done", result.Status())
	}
}

func TestProcessFailureDoesNotStopBatch(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{FailOn: "b.mkv"},
		map[string]string{"a.mkv": "10", "b.mkv": "10", "c.mkv": "10"})
	files := f.inputs(t, "a.mkv", "b.mkv", "c.mkv")
	sink := &recordingSink{}

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpToMP4).Run(context.Background(), files, sink)

	failed := result.Files[1]
	if failed.Outcome != encoding.OutcomeProcessFailed || failed.ExitCode != 1 {
		t.Fatalf("unexpected failure record %+v", failed)
	}
	if !strings.Contains(failed.StderrTail, "Conversion failed!") {
		t.Fatalf("stderr tail missing ffmpeg message: %q", failed.StderrTail)
	}
	if testsupport.Exists(filepath.Join(f.dir, "b.mp4")) {
		t.Fatal("failed output should be removed")
	}
	if result.Files[2].Outcome != encoding.OutcomeConverted {
		t.Fatalf("batch stopped after failure: %+v", result.Files[2])
	}
	if result.Status() != encoding.StatusPartial {
		t.Fatalf("status %s want partial", result.Status())
	}
	if reason := result.FailureReason(); !strings.Contains(reason, "b.mkv") {
		t.Fatalf("failure reason %q should name the file", reason)
	}
	values := sink.snapshot()
	if values[len(values)-1] != 100 {
		t.Fatalf("final progress %v", values)
	}
}

func TestMissingFFmpegReportsToolNotFound(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{}, map[string]string{"a.mkv": "5"})
	f.cfg.Tools.FFmpeg = filepath.Join(t.TempDir(), "ffmpeg-missing")
	files := f.inputs(t, "a.mkv")

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpToMP4).Run(context.Background(), files, &recordingSink{})

	if result.Files[0].Outcome != encoding.OutcomeToolNotFound {
		t.Fatalf("outcome %s want tool_not_found (%v)", result.Files[0].Outcome, result.Files[0].Err)
	}
	if result.Status() != encoding.StatusFailed {
		t.Fatalf("status %s want failed", result.Status())
	}
}

func TestToMP4RejectsOutputEqualToInput(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{}, map[string]string{"a.mp4": "5"})
	files := f.inputs(t, "a.mp4")
	sink := &recordingSink{}

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpToMP4).Run(context.Background(), files, sink)

	if result.Files[0].Outcome != encoding.OutcomeInvalid {
		t.Fatalf("outcome %s want invalid", result.Files[0].Outcome)
	}
	if len(sink.asked) != 0 {
		t.Fatalf("invalid input must not prompt: %v", sink.asked)
	}
}

func TestUnknownDurationsFallBackToUnitWeights(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{}, map[string]string{"a.mkv": "", "b.mkv": "20"})
	files := f.inputs(t, "a.mkv", "b.mkv", "c.mkv")
	sink := &recordingSink{}

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpToMP4).Run(context.Background(), files, sink)

	if result.Status() != encoding.StatusDone {
		t.Fatalf("status %s: %+v", result.Status(), result.Files)
	}
	values := sink.snapshot()
	assertMonotonic(t, values)
	// a and c weigh 1 each against b's 20.
	if !containsApprox(values, 100.0/22) {
		t.Fatalf("expected unit-weighted first step in %v", values)
	}
}

func TestImageBatchResolvesConflictsFirst(t *testing.T) {
	bin := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "ffmpeg.log")
	ffmpeg := testsupport.WriteFFmpegStub(t, bin, testsupport.FFmpegStub{LogPath: logPath})
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpeg(ffmpeg, ""), testsupport.WithSoftwareOnly())
	cfg.Media.ImageWorkers = 2
	f := fixture{cfg: cfg, dir: t.TempDir()}
	files := f.inputs(t, "a.jpg", "b.gif", "c.png", "d.bmp", "e.webp")
	for _, name := range []string{"b.png", "d.png"} {
		if err := os.WriteFile(filepath.Join(f.dir, name), []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sink := &recordingSink{}
	sink.confirm = func(path string) bool {
		if testsupport.Exists(logPath) {
			t.Errorf("conversion started before conflict on %s was resolved", path)
		}
		return strings.HasSuffix(path, "d.png")
	}

	result := encoding.NewEngine(cfg, nil, nil).Job(encoding.OpConvertImage).Run(context.Background(), files, sink)

	wantAsked := []string{filepath.Join(f.dir, "b.png"), filepath.Join(f.dir, "d.png")}
	if strings.Join(sink.asked, ",") != strings.Join(wantAsked, ",") {
		t.Fatalf("asked %v want %v", sink.asked, wantAsked)
	}
	want := []encoding.Outcome{
		encoding.OutcomeConverted,
		encoding.OutcomeSkipped,
		encoding.OutcomeConverted,
		encoding.OutcomeConverted,
		encoding.OutcomeConverted,
	}
	for i, fr := range result.Files {
		if fr.Input != files[i] || fr.Outcome != want[i] {
			t.Fatalf("file %d: %+v want outcome %s", i, fr, want[i])
		}
	}
	if result.Files[2].Output != filepath.Join(f.dir, "c_converted.png") {
		t.Fatalf("png source output %q", result.Files[2].Output)
	}
	if data, _ := os.ReadFile(filepath.Join(f.dir, "b.png")); string(data) != "old" {
		t.Fatal("declined image target was overwritten")
	}
	values := sink.snapshot()
	assertMonotonic(t, values)
	if values[len(values)-1] != 100 {
		t.Fatalf("final progress %v", values)
	}
	if !containsApprox(values, 20) {
		t.Fatalf("expected count-weighted 20%% step in %v", values)
	}
}

func TestImageBatchSharedOutputIsConfirmedAndSerialized(t *testing.T) {
	bin := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "ffmpeg.log")
	ffmpeg := testsupport.WriteFFmpegStub(t, bin, testsupport.FFmpegStub{LogPath: logPath})
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpeg(ffmpeg, ""), testsupport.WithSoftwareOnly())
	cfg.Media.ImageWorkers = 4
	f := fixture{cfg: cfg, dir: t.TempDir()}
	files := f.inputs(t, "a.jpg", "a.gif", "b.jpg")
	shared := filepath.Join(f.dir, "a.png")

	sink := &recordingSink{}
	result := encoding.NewEngine(cfg, nil, nil).Job(encoding.OpConvertImage).Run(context.Background(), files, sink)

	if strings.Join(sink.asked, ",") != shared {
		t.Fatalf("asked %v want [%s]", sink.asked, shared)
	}
	for i, fr := range result.Files {
		if fr.Outcome != encoding.OutcomeConverted {
			t.Fatalf("file %d: %+v", i, fr)
		}
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.Contains(line, shared) {
			order = append(order, line)
		}
	}
	if len(order) != 2 || !strings.Contains(order[0], files[0]) || !strings.Contains(order[1], files[1]) {
		t.Fatalf("shared output runs %q", order)
	}
}

func TestImageBatchSharedOutputDeclined(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{}, nil)
	files := f.inputs(t, "a.jpg", "a.gif")

	sink := &recordingSink{confirm: func(string) bool { return false }}
	result := f.job(encoding.OpConvertImage).Run(context.Background(), files, sink)

	if len(sink.asked) != 1 {
		t.Fatalf("asked %v", sink.asked)
	}
	if result.Files[0].Outcome != encoding.OutcomeConverted || result.Files[1].Outcome != encoding.OutcomeSkipped {
		t.Fatalf("outcomes %s, %s", result.Files[0].Outcome, result.Files[1].Outcome)
	}
	if result.Status() != encoding.StatusDone {
		t.Fatalf("status %s", result.Status())
	}
}

func TestFailureBeforeWriteKeepsConfirmedOutput(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{RejectOn: "a.jpg"}, nil)
	files := f.inputs(t, "a.jpg")
	target := filepath.Join(f.dir, "a.png")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := f.job(encoding.OpConvertImage).Run(context.Background(), files, &recordingSink{})

	if result.Files[0].Outcome != encoding.OutcomeProcessFailed {
		t.Fatalf("outcome %+v", result.Files[0])
	}
	if data, err := os.ReadFile(target); err != nil || string(data) != "old" {
		t.Fatalf("existing output changed: %q %v", data, err)
	}
}

func TestFailureAfterWriteRemovesConfirmedOutput(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{FailOn: "a.jpg"}, nil)
	files := f.inputs(t, "a.jpg")
	target := filepath.Join(f.dir, "a.png")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	f.job(encoding.OpConvertImage).Run(context.Background(), files, &recordingSink{})

	if testsupport.Exists(target) {
		t.Fatal("partially written output was kept")
	}
}

func TestImageBatchCancelledBeforeStart(t *testing.T) {
	f := newFixture(t, testsupport.FFmpegStub{}, nil)
	files := f.inputs(t, "a.jpg", "b.jpg")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := encoding.NewEngine(f.cfg, nil, nil).Job(encoding.OpConvertImage).Run(ctx, files, &recordingSink{})

	if result.Status() != encoding.StatusCancelled {
		t.Fatalf("status %s want cancelled", result.Status())
	}
	for _, fr := range result.Files {
		if fr.Outcome != encoding.OutcomeCancelled {
			t.Fatalf("unexpected outcome %+v", fr)
		}
	}
	if testsupport.Exists(filepath.Join(f.dir, "a.png")) {
		t.Fatal("cancelled batch produced output")
	}
}
