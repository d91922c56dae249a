package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// paint wraps s in code when color is on.
func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return code + s + colorReset
}

// formatSearchResult formats a SearchResult for terminal display.
//
//	⚡ 3 matches │ 4.2µs
//	  1  she
//	  2  he
//	  2  hers
func formatSearchResult(result *socket.SearchResult, color bool) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s │ %s\n",
		paint(fmt.Sprintf("⚡ %d %s", result.Count, plural(result.Count, "match", "matches")), colorBold, color),
		result.Elapsed))

	width := offsetWidth(result.Matches)
	for _, m := range result.Matches {
		sb.WriteString(formatMatch(m, width, color))
	}
	return sb.String()
}

// formatFirstResult formats a FirstResult for terminal display.
func formatFirstResult(result *socket.FirstResult, color bool) string {
	if !result.Found {
		return fmt.Sprintf("%s │ %s\n", paint("⚡ no match", colorYellow, color), result.Elapsed)
	}
	return fmt.Sprintf("%s │ %s\n%s", paint("⚡ first match", colorBold, color), result.Elapsed,
		formatMatch(result.Match, len(fmt.Sprint(result.Match.Start)), color))
}

func formatMatch(m ports.Match, width int, color bool) string {
	return fmt.Sprintf("  %s  %s\n", paint(fmt.Sprintf("%*d", width, m.Start), colorCyan, color), m.Text)
}

// offsetWidth is the column width of the largest start offset.
func offsetWidth(matches []ports.Match) int {
	w := 1
	for _, m := range matches {
		if n := len(fmt.Sprint(m.Start)); n > w {
			w = n
		}
	}
	return w
}

// formatSetLine formats one row of `acm set list`.
func formatSetLine(set *ports.KeywordSet, color bool) string {
	if set == nil {
		return ""
	}
	updated := time.Unix(set.UpdatedAt, 0).Format("2006-01-02 15:04")
	return fmt.Sprintf("  %s  %d %s  %s\n",
		paint(set.Name, colorCyan, color),
		len(set.Keywords), plural(len(set.Keywords), "keyword", "keywords"),
		paint(updated+"  "+set.Source, colorGray, color))
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ acm daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:    %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Engine:    %s\n", h.Engine))
	sb.WriteString(fmt.Sprintf("  Source:    %s\n", h.Source))
	sb.WriteString(fmt.Sprintf("  Keywords:  %d\n", h.KeywordCount))
	sb.WriteString(fmt.Sprintf("  Reloads:   %d\n", h.Reloads))
	sb.WriteString(fmt.Sprintf("  Uptime:    %s\n", h.Uptime))
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
