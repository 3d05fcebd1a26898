package compressor

import (
	"context"
	"time"

	"parallel-compress-go/internal/codec"

	"github.com/google/uuid"
)

// Job describes one file-compression task. A Job is immutable once
// submitted and produces exactly one Outcome.
type Job struct {
	ID        string
	InputPath string
	OutputDir string
	Algorithm codec.Algorithm
	Level     int
}

// NewJob builds a Job for a single input file with a fresh ID.
func NewJob(inputPath, outputDir string, algorithm codec.Algorithm, level int) Job {
	return Job{
		ID:        uuid.NewString(),
		InputPath: inputPath,
		OutputDir: outputDir,
		Algorithm: algorithm,
		Level:     level,
	}
}

// Outcome describes the result of compressing a single file. Success
// outcomes carry the output path, both sizes and the elapsed time; failures
// carry the error and a user-facing message. InputPath is always set so
// downstream summarization is order-independent.
type Outcome struct {
	InputPath      string
	OutputPath     string
	OriginalSize   int64
	CompressedSize int64
	Elapsed        time.Duration
	Algorithm      codec.Algorithm
	Success        bool
	Message        string
	Err            error
}

// Ratio returns the percentage saved by compression. Failures and
// zero-byte inputs report 0.
func (o Outcome) Ratio() float64 {
	if !o.Success || o.OriginalSize == 0 {
		return 0
	}
	return (1 - float64(o.CompressedSize)/float64(o.OriginalSize)) * 100
}

// ProgressFunc is invoked once per finished job, in completion order.
type ProgressFunc func(Outcome)

// Compressor runs a batch of compression jobs over a bounded worker pool.
type Compressor interface {
	// Run compresses all jobs with at most maxWorkers running concurrently
	// and returns exactly one Outcome per job, in submission order.
	Run(ctx context.Context, jobs []Job, maxWorkers int) []Outcome
}
