// Package manpage generates a roff-formatted man page for pulsemon.
//
// The options section is built from the live flag set and the keybindings
// section from the dashboard's key map, so the page tracks the code.
//
// Usage:
//
//	pulsemon -man | man -l -
//	pulsemon -man > ~/.local/share/man/man1/pulsemon.1
package manpage

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/config"
	"gitlab.com/tinyland/lab/pulsemon/display/tui"
)

// Generate produces a complete roff-formatted man(1) page. fs supplies the
// OPTIONS section; version, commit and date come from the build-time linker
// variables.
func Generate(fs *flag.FlagSet, version, commit, date string) string {
	var b strings.Builder

	writeHeader(&b, version)
	writeName(&b)
	writeSynopsis(&b)
	writeDescription(&b)
	writeOptions(&b, fs)
	writeKeybindings(&b)
	writeConfiguration(&b)
	writeFiles(&b)
	writeEnvironment(&b)
	writeExamples(&b)
	writeExitStatus(&b)
	writeFooter(&b, version, commit, date)

	return b.String()
}

// roffEscape escapes special roff characters in a string.
func roffEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `-`, `\-`)
	s = strings.ReplaceAll(s, `.`, `\&.`)
	return s
}

func writeHeader(b *strings.Builder, version string) {
	month := time.Now().Format("January 2006")
	fmt.Fprintf(b, ".TH PULSEMON 1 \"%s\" \"pulsemon %s\" \"User Commands\"\n", month, version)
}

func writeName(b *strings.Builder) {
	b.WriteString(`.SH NAME
pulsemon \- terminal host resource monitor
`)
}

func writeSynopsis(b *strings.Builder) {
	b.WriteString(`.SH SYNOPSIS
.B pulsemon
[\fIOPTIONS\fR]
`)
}

func writeDescription(b *strings.Builder) {
	b.WriteString(`.SH DESCRIPTION
.B pulsemon
samples CPU utilization, memory utilization, disk throughput and network
throughput, keeps a rolling history of each, and raises an alert whenever a
value rises above its threshold. Throughput is reported in MB/s, where
1 MB is 1048576 bytes.
.PP
When stdout is a terminal it draws a live dashboard with a gauge and
sparkline per resource. Otherwise, or with \fB\-headless\fR, it logs every
sample and alert to stderr.
.PP
Samples can also be recorded to a SQLite file and exposed as Prometheus
metrics.
`)
}

func writeOptions(b *strings.Builder, fs *flag.FlagSet) {
	b.WriteString(".SH OPTIONS\n")
	fs.VisitAll(func(f *flag.Flag) {
		arg, usage := flag.UnquoteUsage(f)
		b.WriteString(".TP\n")
		if arg != "" {
			fmt.Fprintf(b, ".BR \\-%s \" \\fI%s\\fR\"\n", roffEscape(f.Name), arg)
		} else {
			fmt.Fprintf(b, ".B \\-%s\n", roffEscape(f.Name))
		}
		b.WriteString(roffEscape(usage) + "\n")
	})
}

func writeKeybindings(b *strings.Builder) {
	b.WriteString(".SH KEYBINDINGS\n")
	for _, k := range tui.KeyHelp() {
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", roffEscape(strings.Join(k.Keys, ", ")), k.Desc)
	}
}

func writeConfiguration(b *strings.Builder) {
	def := config.DefaultConfig()
	b.WriteString(`.SH CONFIGURATION
Configuration is read from a YAML file at
.B $XDG_CONFIG_HOME/pulsemon/config.yaml
(falling back to
.BR ~/.config/pulsemon/config.yaml ),
or from the path given with \fB\-config\fR. Missing keys keep their defaults.
.SS sampler
`)
	fmt.Fprintf(b, ".TP\n.B interval\nPause between memory/disk and network samples. Default: \"%s\".\n", def.Sampler.Interval)
	fmt.Fprintf(b, ".TP\n.B cpu_window\nCPU averaging window; the CPU loop runs back to back. Default: \"%s\".\n", def.Sampler.CPUWindow)
	fmt.Fprintf(b, ".TP\n.B history_length\nSamples kept per resource. Default: %d.\n", def.Sampler.HistoryLength)

	b.WriteString(".SS thresholds\nAn alert is raised when a value is strictly greater than its threshold.\n")
	fmt.Fprintf(b, ".TP\n.B cpu\nPercent. Default: %g.\n", def.Thresholds.CPU)
	fmt.Fprintf(b, ".TP\n.B memory\nPercent. Default: %g.\n", def.Thresholds.Memory)
	fmt.Fprintf(b, ".TP\n.B disk\nMB/s, compared with the larger of read and write. Default: %g.\n", def.Thresholds.Disk)
	fmt.Fprintf(b, ".TP\n.B network\nMB/s, compared with the larger of upload and download. Default: %g.\n", def.Thresholds.Network)

	b.WriteString(`.SS log
.TP
.B level
One of debug, info, warn, error. Default: "info".
.TP
.B file
Log destination while the dashboard is running.
.SS recorder
.TP
.B path
SQLite file to record samples into. Empty (the default) disables recording.
.SS exporter
.TP
.B listen
Address such as "127.0.0.1:9105" for the Prometheus /metrics endpoint.
Empty (the default) disables the exporter.
.SS display
.TP
.B theme
Dashboard theme: one of
`)
	b.WriteString(strings.Join(tui.ThemeNames(), ", "))
	fmt.Fprintf(b, ". Default: \"%s\".\n", def.Display.Theme)
}

func writeFiles(b *strings.Builder) {
	b.WriteString(`.SH FILES
.TP
.I ~/.config/pulsemon/config.yaml
Configuration file (YAML).
.TP
.I ~/.local/log/pulsemon.log
Default log file in dashboard mode.
`)
}

func writeEnvironment(b *strings.Builder) {
	b.WriteString(".SH ENVIRONMENT\n")
	vars := []struct {
		name string
		desc string
	}{
		{config.EnvCPUThreshold, "Overrides thresholds.cpu."},
		{config.EnvMemoryThreshold, "Overrides thresholds.memory."},
		{config.EnvLogLevel, "Overrides log.level."},
		{config.EnvRecordPath, "Overrides recorder.path."},
		{config.EnvExporterListen, "Overrides exporter.listen."},
		{"XDG_CONFIG_HOME", "Base directory for the default configuration path."},
		{"NO_COLOR", "When set to any value, the dashboard is drawn without color."},
	}
	for _, v := range vars {
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", roffEscape(v.name), v.desc)
	}
}

func writeExamples(b *strings.Builder) {
	b.WriteString(`.SH EXAMPLES
Launch the dashboard:
.PP
.nf
pulsemon
.fi
.PP
Log to stderr with debug output and record to SQLite:
.PP
.nf
PULSEMON_RECORD_PATH=/tmp/pulsemon.db pulsemon \-headless \-verbose
.fi
.PP
Write a starter configuration:
.PP
.nf
pulsemon \-write\-config
.fi
`)
}

func writeExitStatus(b *strings.Builder) {
	b.WriteString(".SH EXIT STATUS\n")
	b.WriteString(".TP\n.B 0\n")
	b.WriteString("Normal exit, including shutdown on SIGINT or SIGTERM.\n")
	b.WriteString(".TP\n.B 1\n")
	b.WriteString("A startup error: invalid configuration, unopenable log or recorder file, or an exporter address that cannot be bound.\n")
	b.WriteString(".TP\n.B 2\n")
	b.WriteString("Invalid command line.\n")
}

func writeFooter(b *strings.Builder, version, commit, date string) {
	fmt.Fprintf(b, ".SH VERSION\n%s (%s) built %s\n", version, commit, date)
}
