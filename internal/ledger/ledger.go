package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jb-miles/castscout/internal/domain"
)

var columns = []string{"performer", "status", "matched_url", "matched_name", "searched_at"}

// Ledger is the append-only result file shared by all workers. Each row is
// written and flushed as a complete line, so a crash mid-run always leaves a
// valid prefix. Rows are never rewritten or seeked over.
type Ledger struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// Open opens path in append mode, writing the header first if the file is
// new or empty.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	l := &Ledger{f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.w.Write(columns); err != nil {
			f.Close()
			return nil, err
		}
		l.w.Flush()
		if err := l.w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

// Append records one lookup outcome as a single flushed CSV line. Safe for
// concurrent use by all workers.
func (l *Ledger) Append(res domain.LookupResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := []string{
		res.Performer,
		string(res.Status),
		res.MatchedURL,
		res.MatchedName,
		res.SearchedAt.UTC().Format(time.RFC3339),
	}
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("appending ledger row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("flushing ledger row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	flushErr := l.w.Error()
	closeErr := l.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// CompletedSet parses an existing ledger and returns the performers already
// recorded, quote-aware. Error rows count as completed: a resumed run does
// not retry names that previously errored. A missing file yields an empty
// set.
func CompletedSet(path string) (map[string]struct{}, error) {
	done := make(map[string]struct{})

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return done, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing ledger %s: %w", path, err)
		}
		if first {
			first = false
			continue
		}
		if len(record) > 0 && record[0] != "" {
			done[record[0]] = struct{}{}
		}
	}
	return done, nil
}
