package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofrs/flock"

	"github.com/osi4iot/hookkit/pkg/transcript"
)

const lockRetryDelay = 10 * time.Millisecond

// FileSink appends records as JSON lines. Concurrent hook processes are
// serialized with an flock on <path>.lock.
type FileSink struct {
	path string
	lock *flock.Flock
}

// NewFileSink creates a sink appending to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the log file path
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(ctx context.Context, rec Record) error {
	line, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	line = append(line, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", s.lock.Path())
	}
	defer s.lock.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("writing log file: %w", err)
	}
	return f.Close()
}

func (s *FileSink) Close() error { return nil }

// ReadFile loads every record from a JSONL log
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	for i, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec Record
		if err := sonic.Unmarshal(line, &rec); err != nil {
			return records, fmt.Errorf("decoding record at line %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CopyTranscript parses the transcript at src and writes each entry as one
// JSON line to dst, replacing it. Lines that fail to parse are left out and
// reported in the returned result.
func CopyTranscript(src, dst string) (*transcript.Result, error) {
	res, err := transcript.ParseFile(src)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating transcript copy: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, entry := range res.Entries {
		line, err := sonic.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("encoding transcript entry: %w", err)
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("writing transcript copy: %w", err)
	}
	return res, nil
}
