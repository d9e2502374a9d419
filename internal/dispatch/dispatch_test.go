package dispatch_test

import (
	"context"
	"testing"
	"time"

	"ctxmenu/internal/config"
	"ctxmenu/internal/dispatch"
	"ctxmenu/internal/encoding"
	"ctxmenu/internal/selection"
	"ctxmenu/internal/textaction"
)

func labels(actions []dispatch.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Label)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuildActionsForText(t *testing.T) {
	cfg := config.Default()
	actions := dispatch.BuildActions(selection.Text("hello"), selection.NewClassifier(cfg.Media))
	want := []string{"To Uppercase", "To Lowercase", "Reverse", "Translate"}
	if got := labels(actions); !equal(got, want) {
		t.Fatalf("labels %v want %v", got, want)
	}
	if actions[3].Text != textaction.ActionTranslate || actions[3].IsBatch() {
		t.Fatalf("unexpected translate action %+v", actions[3])
	}
}

func TestBuildActionsForFiles(t *testing.T) {
	cfg := config.Default()
	classifier := selection.NewClassifier(cfg.Media)
	sel := selection.Files([]string{"/a/x.PNG", "/a/y.mkv", "/a/z.mp4", "/a/notes.txt", "/a/w.jpg"})

	actions := dispatch.BuildActions(sel, classifier)

	want := []string{"Convert 2 Image(s)", "Convert 1 to MP4", "Compress 2 Video(s)"}
	if got := labels(actions); !equal(got, want) {
		t.Fatalf("labels %v want %v", got, want)
	}
	if !equal(actions[0].Files, []string{"/a/x.PNG", "/a/w.jpg"}) || actions[0].Operation != encoding.OpConvertImage {
		t.Fatalf("image action %+v", actions[0])
	}
	if !equal(actions[1].Files, []string{"/a/y.mkv"}) || actions[1].Operation != encoding.OpToMP4 {
		t.Fatalf("mp4 action %+v", actions[1])
	}
	if !equal(actions[2].Files, []string{"/a/y.mkv", "/a/z.mp4"}) || actions[2].Operation != encoding.OpCompress {
		t.Fatalf("compress action %+v", actions[2])
	}
}

func TestBuildActionsOmitsMP4ConversionForMP4Only(t *testing.T) {
	cfg := config.Default()
	actions := dispatch.BuildActions(selection.Files([]string{"/v/a.mp4"}), selection.NewClassifier(cfg.Media))
	if got := labels(actions); !equal(got, []string{"Compress 1 Video(s)"}) {
		t.Fatalf("labels %v", got)
	}
}

func TestBuildActionsNoneAndOtherOnly(t *testing.T) {
	cfg := config.Default()
	classifier := selection.NewClassifier(cfg.Media)
	if actions := dispatch.BuildActions(selection.None(), classifier); len(actions) != 0 {
		t.Fatalf("expected no actions, got %v", labels(actions))
	}
	if actions := dispatch.BuildActions(selection.Files([]string{"/a/readme.txt"}), classifier); len(actions) != 0 {
		t.Fatalf("expected no actions for other files, got %v", labels(actions))
	}
}

// scriptedJob drives a sink through a fixed sequence.
type scriptedJob struct {
	progress []float64
	confirm  string
	answer   chan bool
	block    bool
	status   encoding.Outcome
}

func (j *scriptedJob) Operation() encoding.Operation { return encoding.OpCompress }

func (j *scriptedJob) Run(ctx context.Context, files []string, sink encoding.Sink) encoding.BatchResult {
	result := encoding.BatchResult{Operation: encoding.OpCompress}
	for _, p := range j.progress {
		sink.Progress(p)
	}
	if j.confirm != "" {
		j.answer <- sink.ConfirmOverwrite(ctx, j.confirm)
	}
	if j.block {
		<-ctx.Done()
		result.Files = append(result.Files, encoding.FileResult{Input: files[0], Outcome: encoding.OutcomeCancelled})
		return result
	}
	result.Files = append(result.Files, encoding.FileResult{Input: files[0], Outcome: j.status})
	return result
}

func collect(t *testing.T, b *dispatch.Bridge) []dispatch.Message {
	t.Helper()
	var out []dispatch.Message
	deadline := time.After(5 * time.Second)
	for {
		for _, m := range b.Poll() {
			out = append(out, m)
			if m.Kind.Terminal() {
				return out
			}
		}
		select {
		case <-deadline:
			t.Fatalf("no terminal message; got %+v", out)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestBridgeDeliversProgressThenDone(t *testing.T) {
	b := dispatch.NewBridge(16, nil)
	job := &scriptedJob{progress: []float64{0, 25, 50, 100}, status: encoding.OutcomeConverted}
	if err := b.Launch(context.Background(), job, []string{"a.mkv"}); err != nil {
		t.Fatal(err)
	}
	result := b.Wait()
	msgs := collect(t, b)

	last := msgs[len(msgs)-1]
	if last.Kind != dispatch.MsgDone {
		t.Fatalf("terminal %s want done", last.Kind)
	}
	prev := -1.0
	terminals := 0
	for _, m := range msgs {
		if m.Kind.Terminal() {
			terminals++
		}
		if m.Kind == dispatch.MsgProgress {
			if m.Percent < prev {
				t.Fatalf("progress out of order: %+v", msgs)
			}
			prev = m.Percent
		}
	}
	if terminals != 1 || prev != 100 {
		t.Fatalf("terminals=%d last progress=%v", terminals, prev)
	}
	if result.Status() != encoding.StatusDone {
		t.Fatalf("result status %s", result.Status())
	}
	if err := b.Launch(context.Background(), job, []string{"a.mkv"}); err != dispatch.ErrAlreadyLaunched {
		t.Fatalf("second launch err=%v", err)
	}
}

func TestBridgeDropsOldestWhenFull(t *testing.T) {
	b := dispatch.NewBridge(4, nil)
	progress := make([]float64, 0, 50)
	for i := range 50 {
		progress = append(progress, float64(i*2))
	}
	job := &scriptedJob{progress: progress, status: encoding.OutcomeConverted}
	if err := b.Launch(context.Background(), job, []string{"a.mkv"}); err != nil {
		t.Fatal(err)
	}
	b.Wait()

	msgs := b.Poll()
	if len(msgs) > 4 {
		t.Fatalf("queue exceeded bound: %d", len(msgs))
	}
	if msgs[len(msgs)-1].Kind != dispatch.MsgDone {
		t.Fatalf("terminal message lost: %+v", msgs)
	}
	prev := -1.0
	for _, m := range msgs[:len(msgs)-1] {
		if m.Percent <= prev {
			t.Fatalf("order not preserved: %+v", msgs)
		}
		prev = m.Percent
	}
	if prev != 98 {
		t.Fatalf("newest progress should survive, got %v", prev)
	}
}

func TestBridgeConfirmRoundTrip(t *testing.T) {
	b := dispatch.NewBridge(8, nil)
	job := &scriptedJob{confirm: "/v/a.mp4", answer: make(chan bool, 1), status: encoding.OutcomeSkipped}
	if err := b.Launch(context.Background(), job, []string{"a.mkv"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for asked := false; !asked; {
		for _, m := range b.Poll() {
			if m.Kind == dispatch.MsgConfirm && m.Path == "/v/a.mp4" {
				asked = true
			}
		}
		select {
		case <-deadline:
			t.Fatal("confirm message not delivered")
		case <-time.After(5 * time.Millisecond):
		}
	}
	b.Answer(false)

	if got := <-job.answer; got {
		t.Fatal("expected declined answer to reach the job")
	}
	if last := collect(t, b); last[len(last)-1].Kind != dispatch.MsgDone {
		t.Fatalf("skipped-only batch should be done: %+v", last)
	}
}

func TestBridgeCancel(t *testing.T) {
	b := dispatch.NewBridge(8, nil)
	if err := b.Launch(context.Background(), &scriptedJob{block: true}, []string{"a.mkv"}); err != nil {
		t.Fatal(err)
	}
	b.Cancel()
	result := b.Wait()
	if result.Status() != encoding.StatusCancelled {
		t.Fatalf("status %s want cancelled", result.Status())
	}
	msgs := collect(t, b)
	if msgs[len(msgs)-1].Kind != dispatch.MsgCancelled {
		t.Fatalf("terminal %s want cancelled", msgs[len(msgs)-1].Kind)
	}
}

func TestBridgeFailureBecomesError(t *testing.T) {
	b := dispatch.NewBridge(8, nil)
	if err := b.Launch(context.Background(), &scriptedJob{status: encoding.OutcomeProcessFailed}, []string{"a.mkv"}); err != nil {
		t.Fatal(err)
	}
	b.Wait()
	msgs := collect(t, b)
	last := msgs[len(msgs)-1]
	if last.Kind != dispatch.MsgError || last.Reason == "" {
		t.Fatalf("expected error with reason, got %+v", last)
	}
}

func TestWaitWithoutLaunch(t *testing.T) {
	b := dispatch.NewBridge(4, nil)
	if res := b.Wait(); len(res.Files) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}
