package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Metrics holds objective measures of one minification run.
type Metrics struct {
	InputSizeBytes   int           `json:"inputSize"`
	SizeBytes        int           `json:"outputSize"`
	CompressionRatio float64       `json:"ratio"` // output/input size (<1 = smaller)
	InputLines       int           `json:"inputLines"`
	LineCount        int           `json:"outputLines"`
	Tokens           int           `json:"tokens"`
	CommentsRemoved  int           `json:"commentsRemoved"`
	VariablesRenamed int           `json:"variablesRenamed"`
	VariablesKept    int           `json:"variablesKept"`
	Duration         time.Duration `json:"duration,omitempty"`
}

// finish fills in the size-derived fields.
func (m *Metrics) finish(input, output string) {
	m.InputSizeBytes = len(input)
	m.SizeBytes = len(output)
	m.InputLines = countLines(input)
	m.LineCount = countLines(output)
	if m.InputSizeBytes > 0 {
		m.CompressionRatio = float64(m.SizeBytes) / float64(m.InputSizeBytes)
	}
}

// Saved returns how many bytes minification removed (negative when it grew).
func (m Metrics) Saved() int {
	return m.InputSizeBytes - m.SizeBytes
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// LogValue renders the metrics as a structured log group.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("input", humanize.Bytes(uint64(m.InputSizeBytes))),
		slog.String("output", humanize.Bytes(uint64(m.SizeBytes))),
		slog.Float64("ratio", m.CompressionRatio),
		slog.Int("comments_removed", m.CommentsRemoved),
		slog.Int("variables_renamed", m.VariablesRenamed),
	)
}
