package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
)

// Report holds minification session data for reporting.
type Report struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Settings    ReportOptions `json:"options"`
	Files       []FileReport  `json:"files"`
	Totals      Metrics       `json:"totals"`
	Failed      int           `json:"failed"`
	Cached      int           `json:"cached"`
}

// ReportOptions records the effective options of the run.
type ReportOptions struct {
	ReplaceVariables bool     `json:"replaceVariables"`
	RemoveWhitespace bool     `json:"removeWhitespace"`
	RemoveComments   bool     `json:"removeComments"`
	Names            string   `json:"names"`
	Seed             int64    `json:"seed,omitempty"`
	Excludes         []string `json:"excludes,omitempty"`
}

type FileReport struct {
	Path       string  `json:"path"`
	OutputPath string  `json:"outputPath,omitempty"`
	Metrics    Metrics `json:"metrics"`
	Cached     bool    `json:"cached,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// NewReport summarises batch results.
func NewReport(results []FileResult, opts *Options) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		Files:       make([]FileReport, 0, len(results)),
	}
	if opts != nil {
		r.Settings = ReportOptions{
			ReplaceVariables: opts.ShouldReplaceVariables(),
			RemoveWhitespace: opts.ShouldRemoveWhitespace(),
			RemoveComments:   opts.ShouldRemoveComments(),
			Names:            opts.nameStyle(),
			Seed:             opts.Seed,
			Excludes:         opts.Excludes,
		}
	}
	for _, res := range results {
		fr := FileReport{Path: res.Path, Metrics: res.Metrics, Cached: res.Cached}
		if res.Err != nil {
			fr.Error = res.Err.Error()
			r.Failed++
		} else {
			fr.OutputPath = res.OutputPath
			r.Totals.add(res.Metrics)
		}
		if res.Cached {
			r.Cached++
		}
		r.Files = append(r.Files, fr)
	}
	if r.Totals.InputSizeBytes > 0 {
		r.Totals.CompressionRatio = float64(r.Totals.SizeBytes) / float64(r.Totals.InputSizeBytes)
	}
	return r
}

func (m *Metrics) add(o Metrics) {
	m.InputSizeBytes += o.InputSizeBytes
	m.SizeBytes += o.SizeBytes
	m.InputLines += o.InputLines
	m.LineCount += o.LineCount
	m.Tokens += o.Tokens
	m.CommentsRemoved += o.CommentsRemoved
	m.VariablesRenamed += o.VariablesRenamed
	m.VariablesKept += o.VariablesKept
	m.Duration += o.Duration
}

// ToJSON returns the report as indented JSON (for CI/CD integration).
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteMarkdown renders the report as GitHub-flavoured Markdown.
func (r *Report) WriteMarkdown(w io.Writer) error {
	md := markdown.NewMarkdown(w)
	md.H1("UglifyPHP Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Files", strconv.Itoa(len(r.Files))},
			{"Failed", strconv.Itoa(r.Failed)},
			{"Cached", strconv.Itoa(r.Cached)},
			{"Input", humanize.Bytes(uint64(r.Totals.InputSizeBytes))},
			{"Output", humanize.Bytes(uint64(r.Totals.SizeBytes))},
			{"Saved", savedText(r.Totals)},
		},
	})
	md.PlainText("")

	md.H2("Options")
	md.PlainText("")
	excludes := "-"
	if len(r.Settings.Excludes) > 0 {
		excludes = "`" + strings.Join(r.Settings.Excludes, "`, `") + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Option", "Value"},
		Rows: [][]string{
			{"replace_variables", strconv.FormatBool(r.Settings.ReplaceVariables)},
			{"remove_whitespace", strconv.FormatBool(r.Settings.RemoveWhitespace)},
			{"remove_comments", strconv.FormatBool(r.Settings.RemoveComments)},
			{"names", r.Settings.Names},
			{"excludes", excludes},
		},
	})
	md.PlainText("")

	md.H2("Files")
	md.PlainText("")
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		status := "✅"
		if f.Error != "" {
			status = "❌ " + f.Error
		} else if f.Cached {
			status = "✅ cached"
		}
		rows = append(rows, []string{
			"`" + f.Path + "`",
			humanize.Bytes(uint64(f.Metrics.InputSizeBytes)),
			humanize.Bytes(uint64(f.Metrics.SizeBytes)),
			fmt.Sprintf("%.2f", f.Metrics.CompressionRatio),
			strconv.Itoa(f.Metrics.VariablesRenamed),
			status,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Input", "Output", "Ratio", "Renamed", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
	if r.Failed > 0 {
		md.Warningf("%d file(s) could not be minified.", r.Failed)
		md.PlainText("")
	}
	return md.Build()
}

func savedText(m Metrics) string {
	saved := m.Saved()
	if saved < 0 {
		return "-" + humanize.Bytes(uint64(-saved))
	}
	if m.InputSizeBytes == 0 {
		return humanize.Bytes(uint64(saved))
	}
	return fmt.Sprintf("%s (%.1f%%)", humanize.Bytes(uint64(saved)), 100*float64(saved)/float64(m.InputSizeBytes))
}

// PrintSummary writes a short human-readable summary of r to w.
func PrintSummary(w io.Writer, r *Report) {
	c := paletteFor(w)
	fmt.Fprintf(w, "%s%s=== UglifyPHP ===%s\n", c.Bold, c.Cyan, c.Reset)
	fmt.Fprintf(w, "%sFiles:%s    %d (%d cached, %d failed)\n", c.Yellow, c.Reset, len(r.Files), r.Cached, r.Failed)
	fmt.Fprintf(w, "%sInput:%s    %s\n", c.Yellow, c.Reset, humanize.Bytes(uint64(r.Totals.InputSizeBytes)))
	fmt.Fprintf(w, "%sOutput:%s   %s %s(%.2fx)%s\n", c.Yellow, c.Reset,
		humanize.Bytes(uint64(r.Totals.SizeBytes)), c.Gray, r.Totals.CompressionRatio, c.Reset)
	fmt.Fprintf(w, "%sSaved:%s    %s%s%s\n", c.Yellow, c.Reset, c.Green, savedText(r.Totals), c.Reset)
	fmt.Fprintf(w, "%sRenamed:%s  %d variables, %d kept\n", c.Yellow, c.Reset, r.Totals.VariablesRenamed, r.Totals.VariablesKept)
	fmt.Fprintf(w, "%sComments:%s %d removed\n", c.Yellow, c.Reset, r.Totals.CommentsRemoved)
	for _, f := range r.Files {
		if f.Error != "" {
			fmt.Fprintf(w, "%s  - %s: %s%s\n", c.Red, f.Path, f.Error, c.Reset)
		}
	}
}
