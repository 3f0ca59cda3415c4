package storage

import (
	"fmt"
	"os"
	"strings"
)

// WriteLinks writes the run's monetized product links to a plain text file,
// one URL per line, replacing any previous run's output.
func WriteLinks(filename string, urls []string) error {
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write links file: %w", err)
	}
	return nil
}
