package compressor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"parallel-compress-go/internal/codec"

	"github.com/sirupsen/logrus"
)

func newTestCompressor() *DefaultCompressor {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return NewDefaultCompressor(log)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func TestCompressTextFile(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("a", 10*1024)
	input := writeTestFile(t, dir, "repeated.txt", content)

	comp := newTestCompressor()
	jobs := []Job{NewJob(input, "", codec.Gzip, 6)}
	outcomes := comp.Run(context.Background(), jobs, 1)

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	out := outcomes[0]
	if !out.Success {
		t.Fatalf("expected success, got failure: %s", out.Message)
	}
	if out.OutputPath != input+".gz" {
		t.Errorf("output path = %q, want %q", out.OutputPath, input+".gz")
	}
	if out.OriginalSize != int64(len(content)) {
		t.Errorf("original size = %d, want %d", out.OriginalSize, len(content))
	}

	info, err := os.Stat(out.OutputPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() != out.CompressedSize {
		t.Errorf("compressed size = %d, on disk = %d", out.CompressedSize, info.Size())
	}
	if out.CompressedSize >= out.OriginalSize {
		t.Errorf("expected reduction: %d -> %d", out.OriginalSize, out.CompressedSize)
	}
	if out.Ratio() <= 0 {
		t.Errorf("ratio = %f, expected > 0", out.Ratio())
	}

	// Input must be untouched.
	original, err := os.ReadFile(input)
	if err != nil || string(original) != content {
		t.Error("input file was modified")
	}
}

func TestCompressMissingFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.txt")

	comp := newTestCompressor()
	outcomes := comp.Run(context.Background(), []Job{NewJob(missing, "", codec.Gzip, 6)}, 1)

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	out := outcomes[0]
	if out.Success {
		t.Fatal("expected failure for missing file")
	}
	if !strings.Contains(out.Message, missing) {
		t.Errorf("failure message %q does not name the path", out.Message)
	}
	if out.Err == nil {
		t.Error("failure outcome should carry an error")
	}
	if _, err := os.Stat(missing + ".gz"); !os.IsNotExist(err) {
		t.Error("no output file should be created for a missing input")
	}
}

func TestCompressInvalidLevel(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "file.txt", "content")

	comp := newTestCompressor()
	outcomes := comp.Run(context.Background(), []Job{NewJob(input, "", codec.Gzip, 42)}, 1)

	out := outcomes[0]
	if out.Success {
		t.Fatal("expected failure for out-of-range level")
	}
	if !strings.Contains(out.Message, "level") {
		t.Errorf("failure message %q should mention the level", out.Message)
	}
	if _, err := os.Stat(input + ".gz"); !os.IsNotExist(err) {
		t.Error("no output file should be created for an invalid level")
	}
}

func TestCompressIntoOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "doc.txt", strings.Repeat("b", 4096))
	outDir := filepath.Join(dir, "out", "nested")

	comp := newTestCompressor()
	outcomes := comp.Run(context.Background(), []Job{NewJob(input, outDir, codec.XZ, 6)}, 1)

	out := outcomes[0]
	if !out.Success {
		t.Fatalf("expected success, got: %s", out.Message)
	}
	want := filepath.Join(outDir, "doc.txt.xz")
	if out.OutputPath != want {
		t.Errorf("output path = %q, want %q", out.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("output should land in the created directory: %v", err)
	}
}

func TestRerunOverwritesOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "again.txt", strings.Repeat("c", 2048))

	comp := newTestCompressor()
	job := NewJob(input, "", codec.Bzip2, 9)

	first := comp.Run(context.Background(), []Job{job}, 1)[0]
	if !first.Success {
		t.Fatalf("first run failed: %s", first.Message)
	}
	second := comp.Run(context.Background(), []Job{job}, 1)[0]
	if !second.Success {
		t.Fatalf("second run failed: %s", second.Message)
	}
	if second.CompressedSize != first.CompressedSize {
		t.Errorf("rerun sizes differ: %d vs %d", first.CompressedSize, second.CompressedSize)
	}
}

func TestOneOutcomePerJob(t *testing.T) {
	dir := t.TempDir()
	jobs := make([]Job, 0, 6)
	for i := 0; i < 5; i++ {
		input := writeTestFile(t, dir, fmt.Sprintf("file%d.txt", i), strings.Repeat("x", 1024))
		jobs = append(jobs, NewJob(input, "", codec.Gzip, 6))
	}
	// One missing file mixed into the batch must not abort it.
	jobs = append(jobs, NewJob(filepath.Join(dir, "missing.txt"), "", codec.Gzip, 6))

	comp := newTestCompressor()
	outcomes := comp.Run(context.Background(), jobs, 3)

	if len(outcomes) != len(jobs) {
		t.Fatalf("expected %d outcomes, got %d", len(jobs), len(outcomes))
	}
	for i, out := range outcomes {
		if out.InputPath != jobs[i].InputPath {
			t.Errorf("outcome %d: input path %q, want %q", i, out.InputPath, jobs[i].InputPath)
		}
	}
	failures := 0
	for _, out := range outcomes {
		if !out.Success {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly 1 failure, got %d", failures)
	}
}

func TestEmptyBatch(t *testing.T) {
	comp := newTestCompressor()
	called := false
	comp.run = func(Job) Outcome {
		called = true
		return Outcome{}
	}

	outcomes := comp.Run(context.Background(), nil, 4)
	if len(outcomes) != 0 {
		t.Errorf("expected empty outcome list, got %d", len(outcomes))
	}
	if called {
		t.Error("no worker should run for an empty batch")
	}
}

func TestBoundedConcurrency(t *testing.T) {
	comp := newTestCompressor()

	var mu sync.Mutex
	var active, maxActive int
	comp.run = func(job Job) Outcome {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return Outcome{InputPath: job.InputPath, Success: true}
	}

	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = NewJob("file"+string(rune('0'+i)), "", codec.Gzip, 6)
	}

	outcomes := comp.Run(context.Background(), jobs, 2)
	if len(outcomes) != 5 {
		t.Fatalf("expected 5 outcomes, got %d", len(outcomes))
	}
	if maxActive > 2 {
		t.Errorf("max concurrent jobs = %d, want <= 2", maxActive)
	}
	if maxActive < 1 {
		t.Error("no jobs ran")
	}
}

func TestWorkerPanicBecomesFailure(t *testing.T) {
	comp := newTestCompressor()
	comp.run = func(job Job) Outcome {
		if strings.Contains(job.InputPath, "bad") {
			panic("pool fault")
		}
		return Outcome{InputPath: job.InputPath, Success: true}
	}

	jobs := []Job{
		NewJob("good1", "", codec.Gzip, 6),
		NewJob("bad", "", codec.Gzip, 6),
		NewJob("good2", "", codec.Gzip, 6),
	}
	outcomes := comp.Run(context.Background(), jobs, 2)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[1].Success {
		t.Error("panicked job should be a failure")
	}
	if outcomes[1].InputPath != "bad" {
		t.Errorf("failure attributed to %q, want bad", outcomes[1].InputPath)
	}
	if !strings.Contains(outcomes[1].Message, "internal error") {
		t.Errorf("failure message %q should mention an internal error", outcomes[1].Message)
	}
	if !outcomes[0].Success || !outcomes[2].Success {
		t.Error("other jobs must complete despite the panic")
	}
}

func TestProgressCallback(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "p.txt", strings.Repeat("p", 512))

	comp := newTestCompressor()
	var seen []Outcome
	comp.OnProgress(func(out Outcome) {
		seen = append(seen, out)
	})

	jobs := []Job{
		NewJob(input, "", codec.Gzip, 6),
		NewJob(filepath.Join(dir, "missing.txt"), "", codec.Gzip, 6),
	}
	comp.Run(context.Background(), jobs, 2)

	if len(seen) != 2 {
		t.Fatalf("progress fired %d times, want 2", len(seen))
	}
}

func TestZeroByteInput(t *testing.T) {
	dir := t.TempDir()
	input := writeTestFile(t, dir, "empty.txt", "")

	comp := newTestCompressor()
	out := comp.Run(context.Background(), []Job{NewJob(input, "", codec.Gzip, 6)}, 1)[0]

	if !out.Success {
		t.Fatalf("compressing an empty file should succeed: %s", out.Message)
	}
	if out.OriginalSize != 0 {
		t.Errorf("original size = %d, want 0", out.OriginalSize)
	}
	if out.Ratio() != 0 {
		t.Errorf("ratio for empty input = %f, want 0", out.Ratio())
	}
}
