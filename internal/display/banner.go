package display

import (
	"fmt"
	"strings"
	"time"
)

// ANSI color codes
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	white  = "\033[37m"

	brightRed    = "\033[91m"
	brightGreen  = "\033[92m"
	brightYellow = "\033[93m"
	brightBlue   = "\033[94m"
	brightCyan   = "\033[96m"
	brightWhite  = "\033[97m"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// DocumentSummary is the outcome of one document in an extract run.
type DocumentSummary struct {
	Name     string
	Format   string
	Records  int
	ImportID string
	Err      error
}

// RunSummary holds everything printed at the end of an extract run.
type RunSummary struct {
	Institution string
	Year        int
	Location    string
	Output      string
	SQLitePath  string
	Documents   []DocumentSummary
	Elapsed     time.Duration
}

// Total returns the record count over all documents.
func (s RunSummary) Total() int {
	n := 0
	for _, d := range s.Documents {
		n += d.Records
	}
	return n
}

// Failed returns how many documents ended with an error.
func (s RunSummary) Failed() int {
	n := 0
	for _, d := range s.Documents {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// PrintSummary prints the colored end-of-run report.
func PrintSummary(s RunSummary) {
	printf("\n  %s%s📋 Extraction Summary%s\n", bold, brightCyan, reset)
	printf("  %s%s%s%s\n\n", dim, cyan, rule, reset)

	printSectionHeader("⚙️  Run")
	printKV("Institution", s.Institution, brightWhite)
	if s.Year != 0 {
		printKV("Year", fmt.Sprintf("%d", s.Year), white)
	}
	printKV("Location", s.Location, white)
	printKV("Output", orDefault(s.Output, "stdout"), dim+white)
	if s.SQLitePath != "" {
		printKV("SQLite", s.SQLitePath, dim+white)
	}
	printf("\n")

	printSectionHeader("📄 Documents")
	for _, d := range s.Documents {
		switch {
		case d.Err != nil:
			printKVColored(d.Name, "✗ "+d.Err.Error(), brightRed)
		case d.Records == 0:
			printKVColored(d.Name, "0 records", brightYellow)
		default:
			printKVColored(d.Name, formatCount(d.Records)+" records", brightGreen)
		}
	}
	printf("\n")

	printf("  %s%s%s%s\n", dim, cyan, rule, reset)
	printf("  %s%s%d record(s) from %d document(s), %d failed, in %s%s\n",
		bold, brightGreen, s.Total(), len(s.Documents), s.Failed(), FormatDuration(s.Elapsed), reset)
}

func printSectionHeader(title string) {
	printf("  %s%s%s%s\n", bold, brightYellow, title, reset)
}

func printKV(key, value, valueColor string) {
	printf("    %s%s%s  %s%s%s\n", dim, padRight(key, 18), reset, valueColor, value, reset)
}

func printKVColored(key, value, valueColor string) {
	printf("    %s%s%s  %s%s%s%s\n", dim, padRight(key, 18), reset, bold, valueColor, value, reset)
}

func padRight(s string, n int) string {
	if l := len([]rune(s)); l < n {
		return s + strings.Repeat(" ", n-l)
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func formatCount(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%d (%0.1fM)", n, float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%d (%0.1fK)", n, float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}
