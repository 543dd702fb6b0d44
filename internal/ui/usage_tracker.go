package ui

import (
	"fmt"

	"github.com/osi4iot/hookkit/pkg/transcript"
)

// SessionStats is the cumulative token usage of a transcript
type SessionStats struct {
	TotalInputTokens      int64
	TotalOutputTokens     int64
	TotalCacheReadTokens  int64
	TotalCacheWriteTokens int64
	RequestCount          int
}

// UsageTracker sums the usage blocks of assistant messages. A run result's
// usage, when present, replaces the running total.
type UsageTracker struct {
	sessionStats SessionStats
	runTotal     *transcript.Usage
}

// NewUsageTracker creates an empty tracker
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Add records the usage carried by entry, if any
func (ut *UsageTracker) Add(entry transcript.Entry) {
	switch e := entry.(type) {
	case transcript.AssistantEntry:
		if e.Message.Usage != nil {
			ut.UpdateUsage(*e.Message.Usage)
		}
	case transcript.ResultEntry:
		if u := e.Tokens(); u != nil {
			ut.runTotal = u
		}
	}
}

// UpdateUsage adds one request's usage
func (ut *UsageTracker) UpdateUsage(u transcript.Usage) {
	ut.sessionStats.TotalInputTokens += u.InputTokens
	ut.sessionStats.TotalOutputTokens += u.OutputTokens
	ut.sessionStats.TotalCacheReadTokens += u.CacheReadInputTokens
	ut.sessionStats.TotalCacheWriteTokens += u.CacheCreationInputTokens
	ut.sessionStats.RequestCount++
}

// GetSessionStats returns the totals, preferring a run result's usage
func (ut *UsageTracker) GetSessionStats() SessionStats {
	stats := ut.sessionStats
	if ut.runTotal != nil {
		stats.TotalInputTokens = ut.runTotal.InputTokens
		stats.TotalOutputTokens = ut.runTotal.OutputTokens
		stats.TotalCacheReadTokens = ut.runTotal.CacheReadInputTokens
		stats.TotalCacheWriteTokens = ut.runTotal.CacheCreationInputTokens
	}
	return stats
}

// RenderUsageInfo renders "Tokens: 1.2K (in 1.0K, out 200) | Requests: 3",
// or "" when the transcript carried no usage.
func (ut *UsageTracker) RenderUsageInfo() string {
	stats := ut.GetSessionStats()
	total := stats.TotalInputTokens + stats.TotalOutputTokens
	if stats.RequestCount == 0 && total == 0 {
		return ""
	}

	detail := fmt.Sprintf("in %s, out %s", formatTokens(stats.TotalInputTokens), formatTokens(stats.TotalOutputTokens))
	if stats.TotalCacheReadTokens > 0 || stats.TotalCacheWriteTokens > 0 {
		detail += fmt.Sprintf(", cache read %s, cache write %s",
			formatTokens(stats.TotalCacheReadTokens), formatTokens(stats.TotalCacheWriteTokens))
	}
	return fmt.Sprintf("%s (%s) | Requests: %d", formatTokens(total), detail, stats.RequestCount)
}

// formatTokens formats counts with a K/M suffix
func formatTokens(n int64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}
