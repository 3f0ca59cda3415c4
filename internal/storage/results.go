package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/akikodev/deals-scraper/internal/models"
)

// ResultsLog appends one JSON object per processed image unit to a local
// file, for offline audit of each batch run.
type ResultsLog struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func OpenResultsLog(filename string) (*ResultsLog, error) {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open results log: %w", err)
	}
	return &ResultsLog{file: f, enc: json.NewEncoder(f)}, nil
}

func (l *ResultsLog) Append(results []models.UploadResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range results {
		if err := l.enc.Encode(r); err != nil {
			return fmt.Errorf("failed to append result for %s: %w", r.ASIN, err)
		}
	}
	return nil
}

func (l *ResultsLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
