package display

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ────────────────────────────────────────────────────────────
// Exported color constants for use outside the display package
// ────────────────────────────────────────────────────────────

const (
	Reset = reset
	Bold  = bold
	Dim   = dim

	Red    = red
	Green  = green
	Yellow = yellow
	Cyan   = cyan
	White  = white

	BrightGreen  = brightGreen
	BrightYellow = brightYellow
	BrightCyan   = brightCyan
	BrightWhite  = brightWhite
)

// Progress goes to stderr so records written to stdout stay clean.
var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	errOut io.Writer = os.Stderr
	quiet  bool
)

// SetOutput redirects progress and error output. Nil restores stderr.
func SetOutput(progress, errs io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if progress == nil {
		progress = os.Stderr
	}
	if errs == nil {
		errs = os.Stderr
	}
	out, errOut = progress, errs
}

// SetQuiet suppresses everything but warnings and errors.
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

func printf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if quiet {
		return
	}
	fmt.Fprintf(out, format, args...)
}

func warnf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(errOut, format, args...)
}

// ────────────────────────────────────────────────────────────
// Log-level helpers (colored prefixes for CLI output)
// ────────────────────────────────────────────────────────────

// Step prints a pipeline step like "  [1/3] Loading documents..."
func Step(step, total int, msg string) {
	printf("  %s%s[%d/%d]%s %s%s%s\n",
		bold, brightCyan, step, total, reset,
		white, msg, reset,
	)
}

// StepDetail prints an indented detail line under a step.
func StepDetail(msg string) {
	printf("        %s%s%s\n", dim+white, msg, reset)
}

// StepResult prints a success result for a step with a highlighted value.
func StepResult(label string, value interface{}) {
	printf("        %s%s%s %s%v%s\n",
		dim, label, reset,
		bold+brightGreen, value, reset,
	)
}

// StepWarn prints a warning detail under a step.
func StepWarn(msg string) {
	warnf("        %s%s⚠ %s%s\n", yellow, bold, msg, reset)
}

// Info prints a general info message.
func Info(msg string) {
	printf("  %s%sℹ%s %s\n", brightBlue, bold, reset, msg)
}

// Success prints a green success message.
func Success(msg string) {
	printf("  %s%s✓%s %s\n", brightGreen, bold, reset, msg)
}

// Warn prints a yellow warning message.
func Warn(msg string) {
	warnf("  %s%s⚠%s %s%s%s\n", brightYellow, bold, reset, yellow, msg, reset)
}

// ErrorMsg prints a red error message.
func ErrorMsg(msg string) {
	warnf("  %s%s✗%s %s%s%s\n", brightRed, bold, reset, red, msg, reset)
}

// Header prints a section header line.
func Header(msg string) {
	printf("\n  %s%s%s%s\n", bold, brightCyan, msg, reset)
	printf("  %s%s%s%s\n", dim, cyan, rule, reset)
}

// KeyValue prints a labeled value.
func KeyValue(key string, value interface{}, valueColor string) {
	printf("    %s%s%s  %s%v%s\n", dim, padRight(key, 18), reset, valueColor, value, reset)
}

// FileCreated prints a file creation notice.
func FileCreated(path string) {
	printf("    %s%s✓%s %s%s%s\n", brightGreen, bold, reset, dim+white, path, reset)
}

// FormatDuration renders d compactly for progress lines.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dμs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
