package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/renoma/pkg/scan"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// browseCommand runs a check and opens the results in an interactive list.
func (c *CLI) browseCommand() *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "browse [dir]",
		Short: "Explore check results interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := c.prepare(cmd, dirArg(args), flags)
			if err != nil {
				return err
			}
			out, err := c.scan(cmd.Context(), run, flags.refresh)
			if err != nil {
				return err
			}
			if len(out.result.Reports) == 0 {
				printInfo(c.Out, "No dependencies to browse")
				return nil
			}
			p := tea.NewProgram(NewReportListModel(out.result), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// ReportListModel - Interactive result browser
// =============================================================================

// ReportListModel is the bubbletea model for browsing scan reports.
type ReportListModel struct {
	Result     *scan.Result
	Cursor     int
	Offset     int
	Height     int
	OnlyIssues bool

	// visible indexes Result.Reports under the current filter.
	visible []int
}

// NewReportListModel creates a browser over res.
func NewReportListModel(res *scan.Result) ReportListModel {
	m := ReportListModel{Result: res, Height: 15}
	m.refilter()
	return m
}

func (m *ReportListModel) refilter() {
	m.visible = nil
	for i, rep := range m.Result.Reports {
		if !m.OnlyIssues || !rep.OK() {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

// Current returns the report under the cursor.
func (m ReportListModel) Current() (scan.Report, bool) {
	if m.Cursor >= len(m.visible) {
		return scan.Report{}, false
	}
	return m.Result.Reports[m.visible[m.Cursor]], true
}

func (m ReportListModel) Init() tea.Cmd {
	return nil
}

func (m ReportListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "f":
			m.OnlyIssues = !m.OnlyIssues
			m.refilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m ReportListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("renoma results"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d packages, %d with errors", len(m.Result.Reports), m.Result.ErrorCount)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  f only errors  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	for i := m.Offset; i < end; i++ {
		rep := m.Result.Reports[m.visible[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		icon := StyleSuccess.Render("✔")
		if !rep.OK() {
			icon = StyleError.Render("✖")
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, icon, rep.Title, listDimStyle.Render(rep.Version))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to show"))
		b.WriteString("\n")
	}

	if rep, ok := m.Current(); ok {
		b.WriteString("\n")
		b.WriteString(detailBoxStyle.Render(reportDetail(rep)))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.visible)), len(m.visible))))
	return b.String()
}

func reportDetail(rep scan.Report) string {
	var lines []string
	lines = append(lines, StyleValue.Render(rep.Name+"@"+rep.Version), listDimStyle.Render(rep.Dir))
	switch {
	case rep.OK():
		lines = append(lines, StyleSuccess.Render("No linting errors"))
	case rep.SameAs != "":
		lines = append(lines, StyleError.Render("Same errors as "+rep.SameAs))
	}
	if rep.Error != "" {
		lines = append(lines, StyleError.Render(rep.Error))
	}
	for _, d := range rep.Diagnostics {
		lines = append(lines, StyleWarning.Render("warning")+"  "+d.Message)
	}
	return strings.Join(lines, "\n")
}
