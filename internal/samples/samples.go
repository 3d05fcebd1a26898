package samples

import (
	"fmt"
	"os"
	"path/filepath"
)

// patterns are the text bodies cycled across generated files. Repetitive
// content keeps the samples highly compressible.
var patterns = []string{
	"This is a sample text file with repeated content. ",
	"Lorem ipsum dolor sit amet, consectetur adipiscing elit. ",
	"The quick brown fox jumps over the lazy dog. ",
	"Go is a practical language for building concurrent tools. ",
	"Compression algorithms reduce file size by removing redundancy. ",
}

// Create writes count sample text files of approximately sizeKB kilobytes
// into dir, creating the directory if needed. It returns the paths of the
// created files.
func Create(dir string, count, sizeKB int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("sample count must be positive: %d", count)
	}
	if sizeKB <= 0 {
		return nil, fmt.Errorf("sample size must be positive: %d KB", sizeKB)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sample directory: %w", err)
	}

	created := make([]string, 0, count)
	for i := 0; i < count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("sample_%d.txt", i+1))
		content := repeatToSize(patterns[i%len(patterns)], sizeKB*1024)
		if err := os.WriteFile(path, content, 0644); err != nil {
			return created, fmt.Errorf("write %s: %w", path, err)
		}
		created = append(created, path)
	}
	return created, nil
}

// repeatToSize repeats pattern until the content reaches target bytes, then
// truncates to exactly target.
func repeatToSize(pattern string, target int) []byte {
	content := make([]byte, 0, target+len(pattern))
	for len(content) < target {
		content = append(content, pattern...)
	}
	return content[:target]
}
