// Package eventlog records hook events delivered on stdin to a JSONL file
// and/or a NATS subject.
package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/osi4iot/hookkit/internal/logging"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// Record is one logged hook event
type Record struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`     // short event name, e.g. "pretool"
	Timestamp int64           `json:"timestamp"` // unix seconds
	Data      json.RawMessage `json:"data"`
}

// NewRecord wraps a decoded hook input
func NewRecord(input hooks.Input) (Record, error) {
	data, err := sonic.Marshal(input)
	if err != nil {
		return Record{}, fmt.Errorf("encoding event data: %w", err)
	}
	return Record{
		ID:        uuid.NewString(),
		Event:     input.Event().ShortName(),
		Timestamp: time.Now().Unix(),
		Data:      data,
	}, nil
}

// Sink stores records
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// MultiSink writes every record to all of its sinks
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options controls Handle
type Options struct {
	// TranscriptOut, when set, receives a re-encoded copy of the session transcript
	TranscriptOut string
}

// Handle runs one hook invocation in log mode: it decodes the event from
// stdin, records it, optionally copies the transcript, and answers with a
// passthrough response so the agent carries on unaffected.
func Handle(ctx context.Context, kind hooks.HookEvent, stdin io.Reader, stdout io.Writer, sink Sink, opts Options) error {
	input, err := hooks.ReadInput(stdin, kind)
	if err != nil {
		return err
	}

	rec, err := NewRecord(input)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, rec); err != nil {
		return fmt.Errorf("logging %s event: %w", rec.Event, err)
	}
	logging.Logger.Debug("event logged", "id", rec.ID, "event", rec.Event, "session", input.Common().SessionID)

	if opts.TranscriptOut != "" {
		res, err := CopyTranscript(input.Common().TranscriptPath, opts.TranscriptOut)
		if err != nil {
			return err
		}
		for _, lineErr := range res.Errors {
			logging.Logger.Warn("transcript line skipped", "line", lineErr.LineNumber, "error", lineErr.Err)
		}
	}

	return hooks.Respond(stdout, kind, hooks.Passthrough())
}
