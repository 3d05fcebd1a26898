package statistics

import (
	"fmt"
	"time"

	"parallel-compress-go/internal/compressor"
)

// BatchSummary aggregates the outcomes of one batch invocation. It is
// derived from the outcome list and never stored across runs.
type BatchSummary struct {
	TotalJobs int
	Successes int
	Failures  int

	TotalOriginalSize   int64
	TotalCompressedSize int64

	// Ratio is the aggregate percentage saved across all successful jobs.
	// Defined as 0 when the total original size is 0.
	Ratio float64

	TotalElapsed time.Duration
	MeanElapsed  time.Duration
}

// Summarize reduces a slice of outcomes into a BatchSummary. It tolerates
// an empty or all-failure batch.
func Summarize(outcomes []compressor.Outcome) BatchSummary {
	s := BatchSummary{TotalJobs: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			s.Successes++
			s.TotalOriginalSize += o.OriginalSize
			s.TotalCompressedSize += o.CompressedSize
		} else {
			s.Failures++
		}
		s.TotalElapsed += o.Elapsed
	}
	if s.TotalOriginalSize > 0 {
		s.Ratio = (1 - float64(s.TotalCompressedSize)/float64(s.TotalOriginalSize)) * 100
	}
	if s.TotalJobs > 0 {
		s.MeanElapsed = s.TotalElapsed / time.Duration(s.TotalJobs)
	}
	return s
}

// Render returns a formatted summary block for the batch.
func (s BatchSummary) Render() string {
	return fmt.Sprintf(`==================================================
COMPRESSION SUMMARY
==================================================
Files processed: %d/%d
Failures: %d
Total original size: %s
Total compressed size: %s
Average compression ratio: %.1f%%
Total time: %.2f seconds
Average time per file: %.2f seconds`,
		s.Successes,
		s.TotalJobs,
		s.Failures,
		FormatBytes(s.TotalOriginalSize),
		FormatBytes(s.TotalCompressedSize),
		s.Ratio,
		s.TotalElapsed.Seconds(),
		s.MeanElapsed.Seconds())
}

// FormatBytes returns a human-readable string for a byte count.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
