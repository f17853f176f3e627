// Command crashview browses crash report artifacts in the terminal.
//
// It loads every crash artifact in a directory and presents them newest
// first. Selecting an entry shows the full report, including stack context
// and the environment table.
//
// # Usage
//
//	crashview [flags]
//
// # Flags
//
//	-dir string    directory containing crash artifacts (default ".")
//	-strict        fail on malformed artifacts instead of skipping them
//
// # Keys
//
//	up/k, down/j    move selection
//	enter/l         view the selected report
//	esc/h           back to the list
//	q, ctrl+c       quit
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"go.jacobcolvin.com/humane/report"
)

func main() {
	os.Exit(run0())
}

func run0() int {
	dir := flag.String("dir", ".", "directory containing crash artifacts")
	strict := flag.Bool("strict", false, "fail on malformed artifacts instead of skipping them")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: crashview [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()

		return 1
	}

	logger := log.New(os.Stderr)

	reports, err := loadReports(*dir, *strict, logger)
	if err != nil {
		logger.Error("loading artifacts", "dir", *dir, "err", err)

		return 1
	}

	if len(reports) == 0 {
		fmt.Printf("no crash artifacts in %s\n", *dir)

		return 0
	}

	p := tea.NewProgram(newModel(reports))

	_, err = p.Run()
	if err != nil {
		logger.Error("running browser", "err", err)

		return 1
	}

	return 0
}

// loadReports parses every crash artifact in dir, newest first. Malformed
// artifacts are skipped with a warning unless strict is set.
func loadReports(dir string, strict bool, logger *log.Logger) ([]*report.Report, error) {
	paths, err := filepath.Glob(filepath.Join(dir, report.ArtifactPattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}

	reports := make([]*report.Report, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("reading artifact: %w", err)
			}

			logger.Warn("skipping unreadable artifact", "path", path, "err", err)

			continue
		}

		rep, err := report.ParseArtifact(data)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}

			logger.Warn("skipping malformed artifact", "path", path, "err", err)

			continue
		}

		rep.Path = path
		reports = append(reports, rep)
	}

	slices.SortFunc(reports, func(a, b *report.Report) int {
		return b.Time.Compare(a.Time)
	})

	return reports, nil
}

// model is the bubbletea model for the crash report browser.
type model struct {
	reports []*report.Report
	buf     strings.Builder
	cursor  int
	width   int
	height  int
	viewing bool
}

func newModel(reports []*report.Report) *model {
	return &model{
		reports: reports,
	}
}

// Init returns no initial command; the browser waits for input.
func (m *model) Init() tea.Cmd {
	return nil
}

// Update handles key and resize messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if !m.viewing && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if !m.viewing && m.cursor < len(m.reports)-1 {
				m.cursor++
			}

		case "enter", "l":
			m.viewing = true

		case "esc", "h":
			m.viewing = false
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the report list or the selected report.
func (m *model) View() tea.View {
	m.buf.Reset()

	if m.viewing {
		m.renderDetail()
	} else {
		m.renderList()
	}

	v := tea.NewView(m.buf.String())
	v.AltScreen = true

	return v
}

func (m *model) renderList() {
	fmt.Fprintf(&m.buf, "crash reports (%d)\n\n", len(m.reports))

	for i, rep := range m.reports {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %s",
			marker, rep.Time.Format("2006-01-02 15:04:05"), rep.ID, firstLine(rep.Text))
		m.buf.WriteString(truncate(line, m.width))
		m.buf.WriteByte('\n')
	}

	m.buf.WriteString("\n[up/down] move  [enter] view  [q] quit\n")
}

func (m *model) renderDetail() {
	rep := m.reports[m.cursor]

	m.buf.WriteString(rep.String())
	m.buf.WriteString("\n[esc] back  [q] quit\n")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")

	return line
}

// truncate cuts s to width columns. Zero width means no limit (the terminal
// size is not known yet).
func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}

	return s[:width]
}
