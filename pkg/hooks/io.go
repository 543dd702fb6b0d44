package hooks

import (
	"fmt"
	"io"
)

// ReadInput reads r to EOF and decodes it for kind
func ReadInput(r io.Reader, kind HookEvent) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read hook input: %w", err)
	}
	return Decode(kind, data)
}

// Respond writes the JSON response for d followed by a newline. Nothing is
// written when d is not legal for kind.
func Respond(w io.Writer, kind HookEvent, d Decision) error {
	data, err := Encode(kind, d)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
