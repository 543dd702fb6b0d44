package ui

import (
	"fmt"

	"github.com/osi4iot/hookkit/pkg/transcript"
)

// TranscriptOptions controls RenderTranscript
type TranscriptOptions struct {
	Markdown bool // render message text through glamour instead of dumping entry JSON
}

// RenderTranscript prints a parse summary followed by every entry and every
// failed line, in line order.
func RenderTranscript(o *Output, path string, data []byte, opts TranscriptOptions) *transcript.Result {
	res := &transcript.Result{}

	o.Entry(path)
	o.Write(o.st.heading.Render("=== TRANSCRIPT PARSING SUMMARY ===") + "\n")

	index := 0
	usage := NewUsageTracker()
	var body []func()
	for out := range transcript.Outcomes(data) {
		if out.Err != nil {
			res.Errors = append(res.Errors, *out.Err)
			lineErr := out.Err
			body = append(body, func() { renderLineErrorBrief(o, lineErr) })
			continue
		}
		res.Entries = append(res.Entries, out.Entry)
		usage.Add(out.Entry)
		index++
		n, entry := index, out.Entry
		body = append(body, func() { renderEntry(o, n, entry, opts) })
	}

	o.Label("Total lines", fmt.Sprint(countLines(data)))
	o.Label("Successfully parsed entries", fmt.Sprint(len(res.Entries)))
	if len(res.Errors) > 0 {
		o.Label("Failed lines", fmt.Sprint(len(res.Errors)))
	}
	if info := usage.RenderUsageInfo(); info != "" {
		o.Label("Tokens", info)
	}
	for _, render := range body {
		o.Newline()
		render()
	}
	return res
}

func renderEntry(o *Output, n int, entry transcript.Entry, opts TranscriptOptions) {
	o.Entry(fmt.Sprintf("Entry %d: %s", n, entry.Description()))
	if opts.Markdown {
		if text := EntryText(entry); text != "" {
			o.Markdown(text)
		}
		return
	}
	debug, err := transcript.DebugJSON(entry)
	if err != nil {
		o.Error(err.Error())
		o.Newline()
		return
	}
	o.JSON([]byte(debug))
}

func renderLineErrorBrief(o *Output, lineErr *transcript.LineError) {
	o.Error(fmt.Sprintf("Error at line %d: %v", lineErr.LineNumber, lineErr.Err))
	o.Newline()
	o.Dimmed(lineErr.RawText)
}

// RenderLineError prints a failing line in detail: error, raw text and, when
// the line is valid JSON, an indented copy for debugging.
func RenderLineError(o *Output, lineErr *transcript.LineError) {
	o.Error(lineErr.Error())
	o.Newline()

	o.Write("\nRaw line content:\n")
	o.Dimmed(lineErr.RawText)

	o.Write("\nFormatted for debugging:\n")
	o.JSON([]byte(lineErr.RawText))
}

// EntryText returns the readable text of an entry, if it has any
func EntryText(entry transcript.Entry) string {
	switch e := entry.(type) {
	case transcript.UserEntry:
		return e.Message.Content.Text()
	case transcript.AssistantEntry:
		return e.Message.Content.Text()
	case transcript.ResultEntry:
		return e.FinalMessage
	case transcript.SummaryEntry:
		return e.Summary
	case transcript.SystemEntry:
		return e.Content
	}
	return ""
}

func countLines(data []byte) int {
	n := 0
	for i, b := range data {
		if b == '\n' || i == len(data)-1 {
			n++
		}
	}
	return n
}
