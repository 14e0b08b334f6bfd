package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"vogsdemo/internal/fusion"
	"vogsdemo/internal/preflight"
	"vogsdemo/internal/sceneasset"
)

// statusKind selects the tag and color of a status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusPending
	statusOK
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:    {"INFO", "\x1b[34m"},
	statusPending: {"..", "\x1b[33m"},
	statusOK:      {"OK", "\x1b[32m"},
	statusError:   {"ERROR", "\x1b[31m"},
}

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := "[" + statusStyles[kind].tag + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag)
	if colorize {
		return statusStyles[kind].color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		blue := statusStyles[statusInfo].color
		return []string{blue + line + ansiReset, blue + rule + ansiReset}
	}
	return []string{line, rule}
}

func statusForLoad(status fusion.LoadStatus) statusKind {
	switch status {
	case fusion.LoadReady:
		return statusOK
	case fusion.LoadFailed:
		return statusError
	case fusion.LoadLoading:
		return statusPending
	default:
		return statusInfo
	}
}

func statusForEvent(kind sceneasset.EventKind) statusKind {
	switch kind {
	case sceneasset.EventReady:
		return statusOK
	case sceneasset.EventFailed:
		return statusError
	default:
		return statusPending
	}
}

func statusForResult(result preflight.Result) statusKind {
	if result.Passed {
		return statusOK
	}
	return statusError
}

// shouldColorize reports whether writer is an interactive terminal.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
