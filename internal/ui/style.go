package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetEnabled turns colored output on or off globally.
func SetEnabled(enabled bool) {
	color.NoColor = !enabled
}

// programColors is a palette of distinct bold colors for differentiating programs.
var programColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// programColorIndex hashes a program name to a palette index.
func programColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(programColors)))
}

// ProgramPrefix returns a colored [name] prefix string.
// Each program name gets a stable color from the palette.
func ProgramPrefix(name string) string {
	c := programColors[programColorIndex(name)]
	return Dim("[") + c(name) + Dim("]")
}

// FloatIcon returns a colored marker for an activity's total float.
func FloatIcon(totalFloat int) string {
	switch {
	case totalFloat < 0:
		return Red("✗")
	case totalFloat == 0:
		return BoldYellow("⚡")
	default:
		return Dim("·")
	}
}

// Float renders a float value, red when negative.
func Float(v int) string {
	s := fmt.Sprintf("%d", v)
	switch {
	case v < 0:
		return BoldRed(s)
	case v == 0:
		return Yellow(s)
	}
	return s
}

// Pad left-aligns s in width columns before styling, so escape codes do not
// break alignment.
func Pad(style func(a ...interface{}) string, s string, width int) string {
	return style(fmt.Sprintf("%-*s", width, s))
}
