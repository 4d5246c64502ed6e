package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
)

// SetColor forces colored output on or off, overriding terminal detection.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// PrintBanner renders the report title followed by a rule of the same width.
func PrintBanner(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n", BoldCyan(title))
	rule := make([]rune, len([]rune(title)))
	for i := range rule {
		rule[i] = '═'
	}
	fmt.Fprintln(w, Cyan(string(rule)))
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskID returns a task id colored consistently across every view.
// Critical tasks are always bold yellow.
func TaskID(taskID string, critical bool) string {
	if critical {
		return BoldYellow(taskID)
	}
	return taskColors[taskColorIndex(taskID)](taskID)
}

// CriticalMark returns the marker shown next to zero-slack tasks.
func CriticalMark(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Slack returns a colored slack value: red when zero, green otherwise.
func Slack(text string, critical bool) string {
	if critical {
		return BoldRed(text)
	}
	return Green(text)
}
