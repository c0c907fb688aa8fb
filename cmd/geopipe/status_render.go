package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatus(out io.Writer, report statusReport, colorize bool) {
	for _, line := range renderSectionHeader("Dataset "+report.Dataset, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Storage root", statusInfo, report.Root, colorize))
	if report.Config != "" {
		fmt.Fprintln(out, renderStatusLine("Config", statusInfo, report.Config, colorize))
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(report.Stages))
	for _, st := range report.Stages {
		state := colorText(statusKindLabel(statusOK), statusOK, colorize)
		if !st.Complete {
			state = colorText("PENDING", statusWarn, colorize)
		}
		rows = append(rows, []string{st.Kind.Label(), state, st.Artifact, st.Detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Stage", "State", "Artifact", "Detail"}, rows, nil))

	switch {
	case report.ArchiveError != "":
		fmt.Fprintln(out, renderStatusLine("Archive members", statusError, report.ArchiveError, colorize))
	case len(report.Members) > 0:
		compressed := 0
		for _, member := range report.Members {
			if member.Compressed() {
				compressed++
			}
		}
		fmt.Fprintln(out, renderStatusLine("Archive members", statusInfo,
			fmt.Sprintf("%d (%d gzip payloads)", len(report.Members), compressed), colorize))
	}

	if len(report.Checks) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Preflight", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return colorText(base, kind, colorize)
}

func colorText(text string, kind statusKind, colorize bool) string {
	if !colorize {
		return text
	}
	if color := statusKindColor(kind); color != "" {
		return color + text + ansiReset
	}
	return text
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
