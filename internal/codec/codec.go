package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Algorithm identifies one of the supported compression codecs.
type Algorithm string

const (
	Gzip  Algorithm = "gzip"
	Bzip2 Algorithm = "bzip2"
	XZ    Algorithm = "xz"
)

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{Gzip, Bzip2, XZ}
}

// ParseAlgorithm parses a string into an Algorithm. The match is
// case-insensitive; unrecognized names are an error.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(s))
	if !a.IsValid() {
		return "", fmt.Errorf("unsupported algorithm: %q (valid: gzip, bzip2, xz)", s)
	}
	return a, nil
}

// IsValid returns true if the algorithm is recognized.
func (a Algorithm) IsValid() bool {
	switch a {
	case Gzip, Bzip2, XZ:
		return true
	default:
		return false
	}
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// Extension returns the file extension appended to compressed output.
func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// DefaultLevel returns the compression level used when none is given,
// matching the command-line defaults of gzip, bzip2 and xz.
func (a Algorithm) DefaultLevel() int {
	switch a {
	case Bzip2:
		return 9
	default:
		return 6
	}
}

// ValidLevel reports whether level is accepted by the algorithm.
// Out-of-range levels are rejected, never clamped.
func (a Algorithm) ValidLevel(level int) bool {
	if a == XZ {
		return level >= 0 && level <= 9
	}
	return level >= 1 && level <= 9
}

// OutputPath returns the path the compressed file is written to. With an
// output directory the result is outputDir/<basename>.<ext>; otherwise the
// extension is appended to the input path. The policy is identical across
// all algorithms.
func (a Algorithm) OutputPath(inputPath, outputDir string) string {
	if outputDir != "" {
		return filepath.Join(outputDir, filepath.Base(inputPath)+a.Extension())
	}
	return inputPath + a.Extension()
}

// xzDictCaps maps xz presets 0-9 to LZMA2 dictionary capacities, following
// the dictionary sizes of the xz command-line presets.
var xzDictCaps = [10]int{
	0: 256 << 10,
	1: 1 << 20,
	2: 2 << 20,
	3: 4 << 20,
	4: 4 << 20,
	5: 8 << 20,
	6: 8 << 20,
	7: 16 << 20,
	8: 32 << 20,
	9: 64 << 20,
}

// NewWriter returns a WriteCloser that compresses into w at the given
// level. Closing the returned writer flushes the codec trailer; it does not
// close w.
func NewWriter(a Algorithm, w io.Writer, level int) (io.WriteCloser, error) {
	if !a.ValidLevel(level) {
		return nil, fmt.Errorf("invalid %s compression level: %d", a, level)
	}
	switch a {
	case Gzip:
		return gzip.NewWriterLevel(w, level)
	case Bzip2:
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: level})
	case XZ:
		cfg := xz.WriterConfig{DictCap: xzDictCaps[level]}
		return cfg.NewWriter(w)
	default:
		return nil, fmt.Errorf("unsupported algorithm: %q", a)
	}
}
