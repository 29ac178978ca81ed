package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driving"
)

// palette holds the summary styles. Every style is plain when the output
// is not a terminal.
type palette struct {
	head lipgloss.Style
	ok   lipgloss.Style
	warn lipgloss.Style
	fail lipgloss.Style
	dim  lipgloss.Style
}

func paletteFor(w io.Writer) palette {
	plain := lipgloss.NewStyle()
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return palette{head: plain, ok: plain, warn: plain, fail: plain, dim: plain}
	}
	return palette{
		head: lipgloss.NewStyle().Bold(true),
		ok:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		fail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		dim:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// printReport writes a one-line summary of a pass followed by its
// diagnostics and failures.
func printReport(w io.Writer, title string, r *domain.Report) {
	if r == nil {
		return
	}
	p := paletteFor(w)
	summary := fmt.Sprintf("%d written, %d unchanged", len(r.Processed), len(r.Skipped))
	if r.Placements > 0 {
		summary += fmt.Sprintf(", %d relocated", r.Placements)
	}
	state := p.ok.Render("ok")
	switch {
	case len(r.Failures) > 0:
		state = p.fail.Render(fmt.Sprintf("%d failed", len(r.Failures)))
	case len(r.Diagnostics) > 0:
		state = p.warn.Render(fmt.Sprintf("%d warnings", len(r.Diagnostics)))
	}
	fmt.Fprintf(w, "%s: %s (%s)\n", p.head.Render(title), summary, state)

	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  %s %s\n", p.warn.Render("warn"), d.String())
	}
	for _, d := range r.Failures {
		fmt.Fprintf(w, "  %s %s\n", p.fail.Render("fail"), d.String())
	}
}

var statusColumns = []domain.Status{
	domain.StatusDone,
	domain.StatusProofreading,
	domain.StatusEditing,
	domain.StatusProblematic,
	domain.StatusToDo,
}

// printStatus renders one row per document with counts per status.
func printStatus(w io.Writer, docs []driving.DocumentStatus) {
	p := paletteFor(w)
	header := []string{"Document"}
	for _, st := range statusColumns {
		header = append(header, string(st))
	}
	header = append(header, "Total", "Done %")

	rows := [][]string{header}
	totals := make(map[domain.Status]int)
	all := 0
	for _, d := range docs {
		row := []string{shortPath(d.Path)}
		for _, st := range statusColumns {
			row = append(row, fmt.Sprint(d.Counts[st]))
			totals[st] += d.Counts[st]
		}
		all += d.Total()
		row = append(row, fmt.Sprint(d.Total()), percent(d.Counts[domain.StatusDone], d.Total()))
		rows = append(rows, row)
	}
	if len(docs) > 1 {
		row := []string{"all"}
		for _, st := range statusColumns {
			row = append(row, fmt.Sprint(totals[st]))
		}
		rows = append(rows, append(row, fmt.Sprint(all), percent(totals[domain.StatusDone], all)))
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			style := lipgloss.NewStyle().Width(widths[j])
			if j > 0 {
				style = style.Align(lipgloss.Right)
			}
			cells[j] = style.Render(cell)
		}
		line := strings.Join(cells, "  ")
		if i == 0 {
			line = p.head.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

// printRuns lists ledger runs, newest first.
func printRuns(w io.Writer, runs []domain.Run) {
	p := paletteFor(w)
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		state := p.ok.Render("ok")
		if r.Errors > 0 {
			state = p.fail.Render(fmt.Sprintf("%d errors", r.Errors))
		}
		fmt.Fprintf(w, "%s  %s  %-8s %-8s %d files, %d unchanged, %s  %s\n",
			p.dim.Render(id),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind, r.Target, r.Files, r.Skipped,
			r.Duration().Round(time.Millisecond), state)
	}
}

// shortPath keeps the last directory and the file name.
func shortPath(path string) string {
	return filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", float64(n)*100/float64(total))
}
