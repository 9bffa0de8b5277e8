package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/nicholasbl/amrex/internal/config"
	"github.com/nicholasbl/amrex/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View job logs",
	Long: `View and filter the shared log of a job.

Every rank of a job appends to the same log file in the job directory
(paths.job_dir, default .amrex). Entries from all ranks are merged in
time order.

Examples:
  # Show the last 50 entries
  amrex logs

  # Show everything rank 2 logged
  amrex logs --rank 2 -n 0

  # Filter by log level
  amrex logs --level warn

  # Show lifecycle entries from the last hour
  amrex logs --phase lifecycle --since 1h

  # Search for specific patterns
  amrex logs --grep "unused|refused"`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsDir   string
	logsTail  int
	logsLevel string
	logsRank  int
	logsPhase string
	logsSince string
	logsGrep  string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsDir, "dir", "d", "", "Job directory (default: paths.job_dir)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().IntVar(&logsRank, "rank", -1, "Filter by rank (-1 for all)")
	logsCmd.Flags().StringVar(&logsPhase, "phase", "", "Filter by phase (e.g. lifecycle, launch)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")
}

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// levelColor returns the ANSI color code for a log level
func levelColor(level string) string {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return colorGray
	case logging.LevelInfo:
		return colorBlue
	case logging.LevelWarn:
		return colorYellow
	case logging.LevelError:
		return colorRed
	default:
		return colorReset
	}
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(entry logging.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(colorGray)
	sb.WriteString("[")
	sb.WriteString(entry.Timestamp.Format("15:04:05.000"))
	sb.WriteString("]")
	sb.WriteString(colorReset)

	sb.WriteString(" ")
	sb.WriteString(levelColor(entry.Level))
	sb.WriteString("[")
	sb.WriteString(strings.ToUpper(entry.Level))
	sb.WriteString("]")
	sb.WriteString(colorReset)

	if entry.HasRank {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		fmt.Fprintf(&sb, "rank=%d", entry.Rank)
		sb.WriteString(colorReset)
	}

	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	if entry.Phase != "" {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		sb.WriteString("phase=")
		sb.WriteString(entry.Phase)
		sb.WriteString(colorReset)
	}

	keys := make([]string, 0, len(entry.Attrs))
	for key := range entry.Attrs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(colorReset)
		fmt.Fprintf(&sb, "%v", entry.Attrs[key])
	}

	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	jobDir := logsDir
	if jobDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg := config.Get()
		jobDir = cfg.Paths.ResolveJobDir(cwd)
	}

	out := cmd.OutOrStdout()
	logPath := filepath.Join(jobDir, logging.FileName)
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No logs found.")
		fmt.Fprintln(out, "Logs are stored at:", logPath)
		return nil
	}

	filter := logging.LogFilter{
		Phase: logsPhase,
	}
	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}
	if logsRank >= 0 {
		rank := logsRank
		filter.Rank = &rank
	}
	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.Since = time.Now().Add(-duration)
	}

	var grepRegex *regexp.Regexp
	if logsGrep != "" {
		var err error
		grepRegex, err = regexp.Compile(logsGrep)
		if err != nil {
			return fmt.Errorf("invalid grep pattern: %w", err)
		}
	}

	entries, err := logging.AggregateLogs(jobDir)
	if err != nil {
		return err
	}
	entries = logging.FilterLogs(entries, filter)
	if grepRegex != nil {
		entries = slices.DeleteFunc(entries, func(e logging.LogEntry) bool {
			return !matchesGrep(e, grepRegex)
		})
	}

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching log entries found.")
		return nil
	}
	return displayLogs(out, entries)
}

// displayLogs writes entries in color on a terminal and as plain text
// otherwise.
func displayLogs(w io.Writer, entries []logging.LogEntry) error {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return logging.WriteText(w, entries)
	}
	for _, entry := range entries {
		if _, err := fmt.Fprintln(w, formatLogEntry(entry)); err != nil {
			return err
		}
	}
	return nil
}

// matchesGrep reports whether the message or any attribute value matches.
func matchesGrep(entry logging.LogEntry, re *regexp.Regexp) bool {
	searchText := entry.Message
	for _, v := range entry.Attrs {
		searchText += " " + fmt.Sprintf("%v", v)
	}
	return re.MatchString(searchText)
}
