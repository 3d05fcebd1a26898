package compressor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"parallel-compress-go/internal/codec"

	"github.com/sirupsen/logrus"
)

// DefaultCompressor is the default implementation of the Compressor interface.
type DefaultCompressor struct {
	log        *logrus.Logger
	progress   ProgressFunc
	progressMu sync.Mutex

	// run executes a single job; replaced in tests to instrument the pool.
	run func(Job) Outcome
}

// NewDefaultCompressor creates a new DefaultCompressor instance.
func NewDefaultCompressor(log *logrus.Logger) *DefaultCompressor {
	c := &DefaultCompressor{log: log}
	c.run = c.compressOne
	return c
}

// OnProgress registers a callback invoked once per finished job. Calls are
// serialized even though jobs complete concurrently.
func (c *DefaultCompressor) OnProgress(fn ProgressFunc) {
	c.progress = fn
}

// Run compresses all jobs with a fixed-size worker pool and returns exactly
// one Outcome per job, in submission order. maxWorkers <= 0 selects
// min(NumCPU, len(jobs)); the pool never exceeds the number of jobs. An
// empty batch returns immediately without spawning workers.
func (c *DefaultCompressor) Run(ctx context.Context, jobs []Job, maxWorkers int) []Outcome {
	if len(jobs) == 0 {
		return nil
	}

	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if workers < 1 {
		workers = 1
	}

	type task struct {
		index int
		job   Job
	}
	type slot struct {
		index int
		out   Outcome
	}

	tasks := make(chan task, len(jobs))
	results := make(chan slot, len(jobs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for t := range tasks {
				var out Outcome
				select {
				case <-ctx.Done():
					out = Outcome{
						InputPath: t.job.InputPath,
						Algorithm: t.job.Algorithm,
						Message:   "canceled before compression started",
						Err:       ctx.Err(),
					}
				default:
					out = c.runJob(t.job)
				}
				c.emit(out)
				results <- slot{index: t.index, out: out}
			}
		}()
	}

	for i, job := range jobs {
		tasks <- task{index: i, job: job}
	}
	close(tasks)

	wg.Wait()
	close(results)

	outcomes := make([]Outcome, len(jobs))
	for s := range results {
		outcomes[s.index] = s.out
	}
	return outcomes
}

// runJob executes one job, converting a panic into a Failure outcome so a
// pool-level fault never aborts the batch.
func (c *DefaultCompressor) runJob(job Job) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			out = Outcome{
				InputPath: job.InputPath,
				Algorithm: job.Algorithm,
				Message:   err.Error(),
				Err:       err,
			}
			c.log.WithFields(logrus.Fields{
				"job":  job.ID,
				"file": job.InputPath,
			}).Errorf("worker recovered from panic: %v", r)
		}
	}()

	out = c.run(job)

	entry := c.log.WithFields(logrus.Fields{
		"job":       job.ID,
		"file":      job.InputPath,
		"algorithm": job.Algorithm.String(),
	})
	if out.Success {
		entry.WithFields(logrus.Fields{
			"output":          out.OutputPath,
			"original_size":   out.OriginalSize,
			"compressed_size": out.CompressedSize,
			"elapsed":         out.Elapsed.String(),
		}).Info("file compressed")
	} else {
		entry.Errorf("compression failed: %s", out.Message)
	}
	return out
}

func (c *DefaultCompressor) emit(out Outcome) {
	if c.progress == nil {
		return
	}
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	c.progress(out)
}

// compressOne compresses a single file and returns its Outcome. Every
// failure is reported through the Outcome; the input file is never modified
// or removed. Re-running into the same output path overwrites it.
func (c *DefaultCompressor) compressOne(job Job) Outcome {
	start := time.Now()
	out := Outcome{
		InputPath: job.InputPath,
		Algorithm: job.Algorithm,
	}
	fail := func(message string, err error) Outcome {
		out.Message = message
		out.Err = err
		out.Elapsed = time.Since(start)
		return out
	}

	info, err := os.Stat(job.InputPath)
	if err != nil {
		return fail(fmt.Sprintf("%s does not exist", job.InputPath), err)
	}
	if info.IsDir() {
		return fail(fmt.Sprintf("%s is a directory, not a regular file", job.InputPath), fmt.Errorf("not a regular file: %s", job.InputPath))
	}
	// Captured before compression so the recorded size matches what was read.
	out.OriginalSize = info.Size()

	if !job.Algorithm.ValidLevel(job.Level) {
		err := fmt.Errorf("invalid %s compression level: %d", job.Algorithm, job.Level)
		return fail(err.Error(), err)
	}

	outputPath := job.Algorithm.OutputPath(job.InputPath, job.OutputDir)
	out.OutputPath = outputPath

	in, err := os.Open(job.InputPath)
	if err != nil {
		return fail(fmt.Sprintf("cannot open %s: %v", job.InputPath, err), err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fail(fmt.Sprintf("cannot create output directory: %v", err), err)
	}

	dst, err := os.Create(outputPath)
	if err != nil {
		return fail(fmt.Sprintf("cannot create %s: %v", outputPath, err), err)
	}

	w, err := codec.NewWriter(job.Algorithm, dst, job.Level)
	if err != nil {
		dst.Close()
		os.Remove(outputPath)
		return fail(err.Error(), err)
	}

	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		dst.Close()
		os.Remove(outputPath)
		return fail(fmt.Sprintf("compression failed: %v", err), err)
	}
	if err := w.Close(); err != nil {
		dst.Close()
		os.Remove(outputPath)
		return fail(fmt.Sprintf("compression failed: %v", err), err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(outputPath)
		return fail(fmt.Sprintf("write failed: %v", err), err)
	}

	compressed, err := os.Stat(outputPath)
	if err != nil {
		return fail(fmt.Sprintf("cannot stat %s: %v", outputPath, err), err)
	}
	out.CompressedSize = compressed.Size()
	out.Elapsed = time.Since(start)
	out.Success = true
	out.Message = "compressed"
	return out
}
