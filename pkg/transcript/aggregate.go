package transcript

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
)

// Result is a parsed transcript snapshot. Entries and Errors are each in line order.
type Result struct {
	Entries []Entry
	Errors  []LineError
}

// OK reports whether every non-blank line parsed
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Counts tallies entries by type
func (r *Result) Counts() map[EntryType]int {
	counts := make(map[EntryType]int)
	for _, e := range r.Entries {
		counts[e.Type()]++
	}
	return counts
}

// Outcomes yields one Outcome per non-blank line of data, in order. The
// sequence is lazy and can be ranged over any number of times.
func Outcomes(data []byte) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		rest := data
		for lineNumber := 1; len(rest) > 0; lineNumber++ {
			var line []byte
			terminated := true
			if i := bytes.IndexByte(rest, '\n'); i >= 0 {
				line, rest = rest[:i], rest[i+1:]
			} else {
				line, rest = rest, nil
				terminated = false
			}
			line = bytes.TrimSuffix(line, []byte{'\r'})

			out, ok := ParseLine(lineNumber, string(line))
			if !ok {
				continue
			}
			if out.Err != nil && !terminated {
				out.Err.Truncated = true
			}
			if !yield(out) {
				return
			}
		}
	}
}

// ParseBytes folds every line of data into a Result
func ParseBytes(data []byte) *Result {
	res := &Result{}
	for out := range Outcomes(data) {
		if out.Err != nil {
			res.Errors = append(res.Errors, *out.Err)
			continue
		}
		res.Entries = append(res.Entries, out.Entry)
	}
	return res
}

// Parse reads r to EOF and parses the snapshot. The error is only for read
// failures; line failures are collected in Result.Errors.
func Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return ParseBytes(data), nil
}

// ParseFile parses the transcript at path
func ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return ParseBytes(data), nil
}

// Verify checks that every line parses without keeping any entries. It
// returns the first failing line, or nil when the transcript is clean.
func Verify(r io.Reader) (*LineError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	for out := range Outcomes(data) {
		if out.Err != nil {
			return out.Err, nil
		}
	}
	return nil, nil
}

// VerifyFile runs Verify on the transcript at path
func VerifyFile(path string) (*LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	defer f.Close()
	return Verify(f)
}
