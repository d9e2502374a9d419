package encoding

import (
	"context"
	"sync"
	"time"

	"ctxmenu/internal/logging"
)

type imageTask struct {
	index  int
	input  string
	output string
}

type imageJob struct {
	engine *Engine
}

func (j *imageJob) Operation() Operation { return OpConvertImage }

// Run resolves every overwrite conflict in input order before any conversion
// starts, then converts the remaining files on a bounded worker pool. Files
// that share an output run one after another on the same worker. Images are
// weighted equally.
func (j *imageJob) Run(ctx context.Context, files []string, sink Sink) BatchResult {
	e := j.engine
	started := time.Now()
	ctx, result, logger := e.begin(ctx, OpConvertImage)
	logger.Info("batch started",
		logging.Int("files", len(files)),
		logging.String("format", e.cfg.Media.ImageTargetFormat),
	)

	tracker := NewTracker(make([]float64, len(files)))
	sink.Progress(tracker.Current())
	results := make([]FileResult, len(files))

	var chains [][]imageTask
	chainOf := make(map[string]int)
	claimed := make(map[string]struct{})
	for i, input := range files {
		if ctx.Err() != nil {
			results[i] = FileResult{Input: input, Outcome: OutcomeCancelled, Err: ctx.Err()}
			continue
		}
		output, early := e.checkInput(ctx, OpConvertImage, input, sink, claimed)
		if early != nil {
			results[i] = *early
			e.logFile(logger, *early, 0)
			if early.Outcome != OutcomeCancelled {
				sink.Progress(tracker.FileDone(i))
			}
			continue
		}
		task := imageTask{index: i, input: input, output: output}
		if n, ok := chainOf[output]; ok {
			chains[n] = append(chains[n], task)
			continue
		}
		claimed[output] = struct{}{}
		chainOf[output] = len(chains)
		chains = append(chains, []imageTask{task})
	}

	var mu sync.Mutex
	cancelled := func(task imageTask) {
		mu.Lock()
		results[task.index] = FileResult{Input: task.input, Output: task.output, Outcome: OutcomeCancelled, Err: ctx.Err()}
		mu.Unlock()
	}

	work := make(chan []imageTask)
	var wg sync.WaitGroup
	workers := min(e.cfg.Media.ImageWorkers, len(chains))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chain := range work {
				for _, task := range chain {
					if ctx.Err() != nil {
						cancelled(task)
						continue
					}
					fileStarted := time.Now()
					fr := e.convert(ctx, OpConvertImage, task.input, task.output, imageArgs(task.input, task.output), nil)
					e.logFile(logger, fr, time.Since(fileStarted))

					mu.Lock()
					results[task.index] = fr
					if fr.Outcome != OutcomeCancelled {
						sink.Progress(tracker.FileDone(task.index))
					}
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for n, chain := range chains {
		select {
		case work <- chain:
		case <-ctx.Done():
			for _, rest := range chains[n:] {
				for _, task := range rest {
					cancelled(task)
				}
			}
			break feed
		}
	}
	close(work)
	wg.Wait()

	result.Files = results
	e.finish(ctx, logger, result, started, sink, tracker)
	return result
}
